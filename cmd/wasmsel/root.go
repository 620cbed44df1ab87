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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-wasmsel/internal/casefile"
	"github.com/ajroetker/go-wasmsel/ir"
	"github.com/ajroetker/go-wasmsel/target"
	"github.com/ajroetker/go-wasmsel/wasm"
)

// app holds the persistent flags shared by every subcommand.
type app struct {
	target     string
	toolchain  string
	noPeephole bool
	verbose    bool
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: slog.Default()}
	cmd := &cobra.Command{
		Use:          "wasmsel",
		Short:        "WebAssembly SIMD instruction selection",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	f := cmd.PersistentFlags()
	f.StringVarP(&a.target, "target", "t", "", "target string (default $"+target.TargetEnv+" or "+target.Default().String()+")")
	f.StringVar(&a.toolchain, "llvm-version", "", "LLVM version intrinsic names are chosen for (default $"+wasm.ToolchainEnvVar+" or "+wasm.DefaultToolchainVersion+")")
	f.BoolVar(&a.noPeephole, "no-peephole", false, "disable pattern selection")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(
		newSelectCmd(a),
		newRunCmd(a),
		newPatternsCmd(a),
		newTargetCmd(a),
	)
	return cmd
}

// resolveTarget returns override when set, then --target, then the
// environment default.
func (a *app) resolveTarget(override string) (target.Target, error) {
	switch {
	case override != "":
		return target.Parse(override)
	case a.target != "":
		return target.Parse(a.target)
	}
	return target.FromEnv()
}

// backend builds a backend for t. A non-empty toolchain takes precedence
// over --llvm-version.
func (a *app) backend(t target.Target, toolchain string) (*wasm.Backend, error) {
	opts := []wasm.Option{wasm.WithLogger(a.logger)}
	if toolchain == "" {
		toolchain = a.toolchain
	}
	if toolchain != "" {
		opts = append(opts, wasm.WithToolchainVersion(toolchain))
	}
	if a.noPeephole {
		opts = append(opts, wasm.WithPeephole(false))
	}
	return wasm.New(t, opts...)
}

func selectionString(b *wasm.Backend, e ir.Expr) string {
	if s, ok := b.Select(e); ok {
		return s.String()
	}
	return casefile.NoSelection
}
