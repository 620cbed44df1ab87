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

package wasm

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/ajroetker/go-wasmsel/codegen"
	"github.com/ajroetker/go-wasmsel/ir"
	"github.com/ajroetker/go-wasmsel/target"
)

// Pattern is one rewrite rule: expressions matching Template are replaced
// by a call to Intrinsic.
type Pattern struct {
	// Feature must be enabled on the target for the rule to apply.
	Feature target.Feature
	// WideOp rules bind operands wider than the result. Every binding is
	// narrowed losslessly to the result type before the call is emitted,
	// and the rule is skipped when any binding cannot be.
	WideOp bool
	// Type is the element type the intrinsic produces; its lane count is
	// the native width of the intrinsic.
	Type ir.Type
	// MinLanes is the smallest result lane count the rule applies to.
	MinLanes int
	// Intrinsic is the name of the called intrinsic.
	Intrinsic string
	// Template is matched against the whole expression. Its wildcards,
	// in first-occurrence order, become the call arguments.
	Template ir.Expr
}

// Eligible reports whether p may be used for a result of lanes lanes on t.
func (p Pattern) Eligible(t target.Target, lanes int) bool {
	return t.Has(p.Feature) && lanes >= p.MinLanes
}

func (p Pattern) String() string {
	return fmt.Sprintf("%s <- %s", p.Intrinsic, p.Template)
}

// subSatRename is the first LLVM release spelling the wasm saturating
// subtract intrinsics "sub.sat".
var subSatRename = mustConstraint(">= 13.0.0")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

func subSatIntrinsic(v *semver.Version, signed bool, t ir.Type) string {
	op := "sub.saturate"
	if subSatRename.Check(v) {
		op = "sub.sat"
	}
	sign := "unsigned"
	if signed {
		sign = "signed"
	}
	return fmt.Sprintf("llvm.wasm.%s.%s.%s", op, sign, codegen.VectorSuffix(t))
}

// wild returns two distinct wildcards of element type t with any lane count.
func wild(t ir.Type) (ir.Expr, ir.Expr) {
	t = t.WithLanes(0)
	return ir.NewWild("a", t), ir.NewWild("b", t)
}

// castPatterns returns the cast rule table for toolchain version v.
func castPatterns(v *semver.Version) []Pattern {
	var rows []Pattern
	add := func(t ir.Type, name string, tmpl ir.Expr) {
		rows = append(rows, Pattern{
			Feature:   target.WasmSimd128,
			WideOp:    true,
			Type:      t,
			Intrinsic: name,
			Template:  tmpl,
		})
	}
	// Saturating add: widen, add, saturate back.
	for _, t := range []ir.Type{ir.Int(8, 16), ir.UInt(8, 16), ir.Int(16, 8), ir.UInt(16, 8)} {
		a, b := wild(t.WithBits(t.Bits * 2))
		prefix := "u"
		if t.IsInt() {
			prefix = "s"
		}
		add(t, fmt.Sprintf("llvm.%sadd.sat.%s", prefix, codegen.VectorSuffix(t)), ir.SatCast(t.WithLanes(0), ir.Add(a, b)))
	}
	// Saturating subtract widens to a signed type even for unsigned results.
	for _, t := range []ir.Type{ir.Int(8, 16), ir.UInt(8, 16), ir.Int(16, 8), ir.UInt(16, 8)} {
		a, b := wild(ir.Int(t.Bits * 2))
		add(t, subSatIntrinsic(v, t.IsInt(), t), ir.SatCast(t.WithLanes(0), ir.Sub(a, b)))
	}
	// Rounding average, written either as a division or a shift.
	for _, t := range []ir.Type{ir.UInt(8, 16), ir.UInt(16, 8)} {
		wt := t.WithBits(t.Bits * 2).WithLanes(0)
		name := "llvm.wasm.avgr.unsigned." + codegen.VectorSuffix(t)
		for _, op := range []ir.BinaryOp{ir.OpDiv, ir.OpShr} {
			a, b := wild(wt)
			divisor := int64(2)
			if op == ir.OpShr {
				divisor = 1
			}
			sum := ir.Add(ir.Add(a, b), ir.MakeConst(wt, 1))
			add(t, name, ir.NewCast(t.WithLanes(0), ir.NewBinary(op, sum, ir.MakeConst(wt, divisor))))
		}
	}
	return rows
}

// selectPatterns returns the bitmask select rules. The template binds the
// condition and both values; the condition is turned into a lane mask
// before the call is emitted (see Backend.SelectSelect).
func selectPatterns() []Pattern {
	var rows []Pattern
	for _, bits := range []int{8, 16, 32, 64} {
		lanes := 128 / bits
		for _, t := range []ir.Type{ir.Int(bits, lanes), ir.UInt(bits, lanes)} {
			vt := t.WithLanes(0)
			rows = append(rows, Pattern{
				Feature:   target.WasmBitSelect,
				Type:      t,
				Intrinsic: "llvm.wasm.bitselect." + codegen.VectorSuffix(t),
				Template:  ir.NewSelect(ir.NewWild("cond", ir.Bool(0)), ir.NewWild("t", vt), ir.NewWild("f", vt)),
			})
		}
	}
	return rows
}
