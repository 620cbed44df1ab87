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
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-wasmsel/wasm"
)

func newPatternsCmd(a *app) *cobra.Command {
	var selects bool
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the rule table in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := a.resolveTarget("")
			if err != nil {
				return err
			}
			b, err := a.backend(t, "")
			if err != nil {
				return err
			}
			rows := b.Patterns()
			if selects {
				rows = b.SelectPatterns()
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tINTRINSIC\tFEATURE\tWIDE\tMIN LANES\tENABLED\tTEMPLATE")
			for i, p := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%v\t%d\t%v\t%s\n",
					i, p.Intrinsic, p.Feature, p.WideOp, p.MinLanes, t.Has(p.Feature), p.Template)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			enabled := lo.CountBy(rows, func(p wasm.Pattern) bool { return t.Has(p.Feature) })
			fmt.Fprintf(out, "%d of %d rules enabled for %s (llvm %s)\n", enabled, len(rows), t, b.ToolchainVersion())
			return nil
		},
	}
	cmd.Flags().BoolVar(&selects, "selects", false, "list the select rules instead of the cast rules")
	return cmd
}
