// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-wasmsel/codegen"
	"github.com/ajroetker/go-wasmsel/ir"
)

func newSelectCmd(a *app) *cobra.Command {
	var (
		varSpecs []string
		showIR   bool
	)
	cmd := &cobra.Command{
		Use:     "select EXPR...",
		Short:   "Print the intrinsic selected for each expression",
		Example: "  wasmsel select --var a,b=int8x16 'sat_int8(int16(a) + int16(b))'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(varSpecs)
			if err != nil {
				return err
			}
			t, err := a.resolveTarget("")
			if err != nil {
				return err
			}
			b, err := a.backend(t, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, src := range args {
				e, err := ir.ParseExpr(src, vars)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s => %s\n", e, selectionString(b, e))
				if !showIR {
					continue
				}
				text, err := codegen.NewBuilder(b).Function(fmt.Sprintf("f%d", i), e)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&varSpecs, "var", nil, "declare variables as name[,name...]=type, e.g. a,b=int8x16")
	cmd.Flags().BoolVar(&showIR, "ir", false, "also print the lowered function")
	return cmd
}

func parseVars(specs []string) (map[string]ir.Type, error) {
	vars := make(map[string]ir.Type)
	for _, spec := range specs {
		names, typ, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("--var %q: want name[,name...]=type", spec)
		}
		t, err := ir.ParseType(strings.TrimSpace(typ))
		if err != nil {
			return nil, fmt.Errorf("--var %q: %w", spec, err)
		}
		for _, n := range strings.Split(names, ",") {
			n = strings.TrimSpace(n)
			if n == "" {
				return nil, fmt.Errorf("--var %q: empty name", spec)
			}
			vars[n] = t
		}
	}
	return vars, nil
}
