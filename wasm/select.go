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
	"strings"

	"github.com/ajroetker/go-wasmsel/codegen"
	"github.com/ajroetker/go-wasmsel/ir"
)

// Selection is the outcome of a successful rule match.
type Selection struct {
	// Pattern is the rule that matched.
	Pattern   Pattern
	Intrinsic string
	// Type is the type of the replaced expression.
	Type ir.Type
	// Lanes is the native lane count of the intrinsic. It differs from
	// Type.Lanes when the call has to be split or padded.
	Lanes int
	Args  []ir.Expr
}

func (s Selection) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", s.Intrinsic, strings.Join(args, ", "))
}

// supported reports whether t is computed natively, without first being
// converted to a wider arithmetic type.
func supported(t ir.Type) bool {
	return codegen.UpgradeTypeForArithmetic(t) == t
}

// Select dispatches e to SelectCast or SelectSelect. Other expressions
// are never selected.
func (b *Backend) Select(e ir.Expr) (Selection, bool) {
	switch e := e.(type) {
	case *ir.Cast:
		return b.SelectCast(e)
	case *ir.Select:
		return b.SelectSelect(e)
	}
	return Selection{}, false
}

// SelectCast finds the first rule that applies to op. It reports false
// for scalar casts, casts from or to types without native arithmetic, and
// when no rule matches.
func (b *Backend) SelectCast(op *ir.Cast) (Selection, bool) {
	if !b.peephole {
		return Selection{}, false
	}
	if !supported(op.Value.Type()) || !supported(op.T) {
		return Selection{}, false
	}
	if op.T.IsScalar() {
		return Selection{}, false
	}

	for _, p := range b.patterns {
		if !p.Eligible(b.target, op.T.Lanes) {
			continue
		}
		m, ok := ir.Match(p.Template, op)
		if !ok {
			continue
		}
		args := m.Exprs()
		if p.WideOp {
			if args, ok = b.narrowAll(op.T, args); !ok {
				continue
			}
		}
		return newSelection(p, op.T, args), true
	}
	return Selection{}, false
}

func (b *Backend) narrowAll(t ir.Type, args []ir.Expr) ([]ir.Expr, bool) {
	out := make([]ir.Expr, len(args))
	for i, a := range args {
		n := b.narrow(t, a)
		if n == nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func newSelection(p Pattern, t ir.Type, args []ir.Expr) Selection {
	lanes := p.Type.Lanes
	if lanes == 0 {
		lanes = t.Lanes
	}
	return Selection{Pattern: p, Intrinsic: p.Intrinsic, Type: t, Lanes: lanes, Args: args}
}

// SelectSelect lowers a vector select on integer values to a bitmask
// select when the target enables wasm_bitselect. The condition becomes a
// per-lane mask of all ones or all zeros: a scalar condition is
// broadcast, widened to the value width and negated.
func (b *Backend) SelectSelect(op *ir.Select) (Selection, bool) {
	t := op.Type()
	if !b.peephole || t.IsScalar() || !supported(t) {
		return Selection{}, false
	}
	for _, p := range b.selects {
		if !p.Eligible(b.target, t.Lanes) {
			continue
		}
		m, ok := ir.Match(p.Template, op)
		if !ok {
			continue
		}
		cond, _ := m.Get("cond")
		tv, _ := m.Get("t")
		fv, _ := m.Get("f")
		return newSelection(p, t, []ir.Expr{tv, fv, laneMask(cond, t)}), true
	}
	return Selection{}, false
}

func laneMask(cond ir.Expr, t ir.Type) ir.Expr {
	if cond.Type().IsScalar() {
		cond = ir.NewBroadcast(cond, t.Lanes)
	}
	mt := ir.Int(t.Bits, t.Lanes)
	return ir.Sub(ir.MakeConst(mt, 0), ir.NewCast(mt, cond))
}

// Emit lowers the call described by s through cg.
func (b *Backend) Emit(cg *codegen.Builder, s Selection) (codegen.Value, error) {
	v, err := cg.CallIntrinsic(s.Type, s.Lanes, s.Intrinsic, s.Args)
	if err != nil {
		return codegen.Value{}, fmt.Errorf("emit %s: %w", s.Intrinsic, err)
	}
	return v, nil
}

// VisitCast lowers op, using an intrinsic when a rule applies and the
// builder's generic conversion otherwise.
func (b *Backend) VisitCast(cg *codegen.Builder, op *ir.Cast) (codegen.Value, error) {
	if s, ok := b.SelectCast(op); ok {
		return b.Emit(cg, s)
	}
	return cg.LowerCast(op)
}

// VisitSelect lowers op, using a bitmask select when one applies and the
// builder's generic select otherwise.
func (b *Backend) VisitSelect(cg *codegen.Builder, op *ir.Select) (codegen.Value, error) {
	if s, ok := b.SelectSelect(op); ok {
		return b.Emit(cg, s)
	}
	return cg.LowerSelect(op)
}

// Lower implements codegen.Peephole.
func (b *Backend) Lower(cg *codegen.Builder, e ir.Expr) (codegen.Value, bool, error) {
	s, ok := b.Select(e)
	if !ok {
		return codegen.Value{}, false, nil
	}
	v, err := b.Emit(cg, s)
	return v, true, err
}
