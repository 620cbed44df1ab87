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

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-wasmsel/internal/cpuinfo"
	"github.com/ajroetker/go-wasmsel/target"
)

func newTargetCmd(a *app) *cobra.Command {
	var host bool
	cmd := &cobra.Command{
		Use:   "target [TARGET]",
		Short: "Describe a target and the backend configuration it yields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if host {
				cpuinfo.Detect().Print(out)
				h := target.Host()
				fmt.Fprintf(out, "\nhost target: %s\n%s\n", h, h.Describe())
				return nil
			}

			var override string
			if len(args) == 1 {
				override = args[0]
			}
			t, err := a.resolveTarget(override)
			if err != nil {
				return err
			}
			b, err := a.backend(t, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "target:             %s\n", t)
			fmt.Fprintf(out, "description:        %s\n", t.Describe())
			fmt.Fprintf(out, "mattrs:             %s\n", b.MAttrs())
			fmt.Fprintf(out, "mcpu:               %q\n", b.MCPU())
			fmt.Fprintf(out, "native vector bits: %d\n", b.NativeVectorBits())
			fmt.Fprintf(out, "soft float abi:     %v\n", b.UseSoftFloatABI())
			fmt.Fprintf(out, "pic:                %v\n", b.UsePIC())
			fmt.Fprintf(out, "llvm:               %s\n", b.ToolchainVersion())

			wasmFeatures := lo.Filter(target.AllFeatures(), func(f target.Feature, _ int) bool {
				return f.Arch() == target.WebAssembly
			})
			fmt.Fprintln(out, "features:")
			for _, f := range wasmFeatures {
				mark := " "
				if t.Has(f) {
					mark = "x"
				}
				fmt.Fprintf(out, "  [%s] %-22s %s\n", mark, f, f.Title())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&host, "host", false, "report the host CPU instead")
	return cmd
}
