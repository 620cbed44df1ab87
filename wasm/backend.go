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

// Package wasm implements peephole instruction selection for 32-bit
// WebAssembly with SIMD128.
//
// A Backend recognizes vector casts of common idioms (saturating add and
// subtract, rounding average) and lowers them to single LLVM wasm
// intrinsics through a codegen.Builder. Everything it does not recognize
// is lowered generically by the builder.
//
// Basic usage:
//
//	be, err := wasm.New(target.MustParse("wasm-32-wasmrt-wasm_simd128"))
//	if err != nil {
//		return err
//	}
//	b := codegen.NewBuilder(be)
//	text, err := b.Function("f", expr)
package wasm

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ajroetker/go-wasmsel/ir"
	"github.com/ajroetker/go-wasmsel/target"
)

var (
	// ErrBackendDisabled is returned when the package was built with the
	// wasmsel_nowasm tag.
	ErrBackendDisabled = errors.New("wasm: backend not configured (built with wasmsel_nowasm)")
	// ErrUnsupportedArch is returned for targets that are not WebAssembly.
	ErrUnsupportedArch = errors.New("wasm: target architecture is not WebAssembly")
	// ErrUnsupportedBits is returned for 64-bit WebAssembly targets.
	ErrUnsupportedBits = errors.New("wasm: only wasm32 is supported")
	// ErrUnsupportedOS is returned when the target OS is not wasmrt.
	ErrUnsupportedOS = errors.New("wasm: wasmrt is the only supported 'os' for WebAssembly")
	// ErrUnsupportedFeature is returned for feature combinations the
	// backend cannot honor.
	ErrUnsupportedFeature = errors.New("wasm: unsupported target feature")
	// ErrToolchain is returned for malformed or too old toolchain versions.
	ErrToolchain = errors.New("wasm: unsupported toolchain version")
)

const (
	// DefaultToolchainVersion is the LLVM version intrinsic names are
	// chosen for when none is configured.
	DefaultToolchainVersion = "12.0.0"
	// MinToolchainVersion is the oldest supported LLVM version.
	MinToolchainVersion = "10.0.0"
)

// Narrower returns e converted losslessly to t, or nil when that is not
// possible.
type Narrower func(t ir.Type, e ir.Expr) ir.Expr

type config struct {
	logger    *slog.Logger
	narrow    Narrower
	patterns  []Pattern
	toolchain string
	peephole  bool
}

// Option configures a Backend.
type Option func(*config)

// WithLogger sets the logger used for construction diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithNarrower replaces ir.LosslessCast as the narrowing analysis.
func WithNarrower(n Narrower) Option {
	return func(c *config) { c.narrow = n }
}

// WithPatterns replaces the built-in cast rule table.
func WithPatterns(ps []Pattern) Option {
	return func(c *config) { c.patterns = slices.Clone(ps) }
}

// WithToolchainVersion sets the LLVM version, overriding
// WASMSEL_LLVM_VERSION.
func WithToolchainVersion(v string) Option {
	return func(c *config) { c.toolchain = v }
}

// WithPeephole enables or disables pattern selection, overriding
// WASMSEL_NO_PEEPHOLE.
func WithPeephole(enabled bool) Option {
	return func(c *config) { c.peephole = enabled }
}

// Backend selects WebAssembly intrinsics for one target. It is immutable
// after New and safe for concurrent use.
type Backend struct {
	target    target.Target
	toolchain *semver.Version
	patterns  []Pattern
	selects   []Pattern
	narrow    Narrower
	peephole  bool
}

// New returns a backend for t. The target must be 32-bit WebAssembly on
// the wasmrt OS with only WebAssembly ISA features; anything else is
// rejected here, before any expression is seen.
func New(t target.Target, opts ...Option) (*Backend, error) {
	if !backendEnabled {
		return nil, ErrBackendDisabled
	}
	cfg := config{
		logger:    slog.Default(),
		narrow:    ir.LosslessCast,
		toolchain: toolchainEnv(),
		peephole:  !NoPeepholeEnv(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validate(t); err != nil {
		return nil, err
	}
	v, err := parseToolchain(cfg.toolchain)
	if err != nil {
		return nil, err
	}

	b := &Backend{
		target:    t,
		toolchain: v,
		patterns:  cfg.patterns,
		selects:   selectPatterns(),
		narrow:    cfg.narrow,
		peephole:  cfg.peephole,
	}
	if b.patterns == nil {
		b.patterns = castPatterns(v)
	}
	cfg.logger.Debug("wasm backend configured",
		"target", t.String(),
		"toolchain", v.String(),
		"patterns", len(b.patterns),
		"mattrs", b.MAttrs(),
		"peephole", b.peephole)
	return b, nil
}

func validate(t target.Target) error {
	if t.Arch != target.WebAssembly {
		return fmt.Errorf("%w: %s", ErrUnsupportedArch, t.Arch)
	}
	if t.Bits != 32 {
		return fmt.Errorf("%w: got %d bits", ErrUnsupportedBits, t.Bits)
	}
	if t.OS != target.WebAssemblyRuntime {
		return fmt.Errorf("%w: got %s", ErrUnsupportedOS, t.OS)
	}
	for _, f := range t.Features() {
		if a := f.Arch(); a != target.ArchUnknown && a != target.WebAssembly {
			return fmt.Errorf("%w: %s is a %s feature", ErrUnsupportedFeature, f, a)
		}
	}
	if t.Has(target.WasmBitSelect) && !t.Has(target.WasmSimd128) {
		return fmt.Errorf("%w: %s requires %s", ErrUnsupportedFeature, target.WasmBitSelect, target.WasmSimd128)
	}
	return nil
}

func parseToolchain(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrToolchain, s, err)
	}
	if v.LessThan(semver.MustParse(MinToolchainVersion)) {
		return nil, fmt.Errorf("%w: %s is older than %s", ErrToolchain, v, MinToolchainVersion)
	}
	return v, nil
}

// Target returns the target the backend was built for.
func (b *Backend) Target() target.Target { return b.target }

// ToolchainVersion returns the LLVM version intrinsic names are chosen for.
func (b *Backend) ToolchainVersion() string { return b.toolchain.String() }

// Patterns returns a copy of the cast rule table in match order.
func (b *Backend) Patterns() []Pattern { return slices.Clone(b.patterns) }

// SelectPatterns returns a copy of the select rule table in match order.
func (b *Backend) SelectPatterns() []Pattern { return slices.Clone(b.selects) }

// MCPU returns the LLVM CPU name; WebAssembly has none.
func (b *Backend) MCPU() string { return "" }

var mattrs = []struct {
	feature target.Feature
	attr    string
}{
	{target.WasmSignExt, "+sign-ext"},
	{target.WasmSimd128, "+simd128"},
	{target.WasmSatFloatToInt, "+nontrapping-fptoint"},
	{target.WasmBulkMemory, "+bulk-memory"},
	{target.WasmThreads, "+atomics"},
}

// MAttrs returns the LLVM attribute string for the enabled features, in a
// fixed order.
func (b *Backend) MAttrs() string {
	var attrs []string
	for _, m := range mattrs {
		if b.target.Has(m.feature) {
			attrs = append(attrs, m.attr)
		}
	}
	return strings.Join(attrs, ",")
}

// UseSoftFloatABI reports whether floats are passed in integer registers.
func (b *Backend) UseSoftFloatABI() bool { return false }

// UsePIC reports whether position independent code is generated.
func (b *Backend) UsePIC() bool { return false }

// NativeVectorBits returns the width of a SIMD register.
func (b *Backend) NativeVectorBits() int { return 128 }
