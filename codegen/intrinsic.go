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

package codegen

import (
	"fmt"
	"strings"

	"github.com/ajroetker/go-wasmsel/ir"
)

// CallIntrinsic lowers args and calls the intrinsic name, which operates
// on vectors of lanes lanes, to produce a value of type t.
//
// When t has a different lane count the arguments are split into
// lanes-wide pieces (the last one padded with undef lanes), the intrinsic
// is called once per piece, and the results are concatenated and trimmed
// back to t.Lanes. Arguments whose lane count differs from t's are passed
// through unchanged.
func (b *Builder) CallIntrinsic(t ir.Type, lanes int, name string, args []ir.Expr) (Value, error) {
	vals := make([]Value, len(args))
	for i, a := range args {
		v, err := b.Codegen(a)
		if err != nil {
			return Value{}, fmt.Errorf("%s argument %d: %w", name, i, err)
		}
		vals[i] = v
	}
	return b.CallIntrinsicValues(t, lanes, name, vals)
}

// CallIntrinsicValues is CallIntrinsic for arguments that are already lowered.
func (b *Builder) CallIntrinsicValues(t ir.Type, lanes int, name string, args []Value) (Value, error) {
	if name == "" || lanes < 1 {
		return Value{}, fmt.Errorf("%w: %q with %d lanes", ErrBadIntrinsic, name, lanes)
	}
	if t.Lanes == lanes || t.Lanes == 1 {
		return b.call(t, name, args), nil
	}

	pieces := (t.Lanes + lanes - 1) / lanes
	pt := t.WithLanes(lanes)
	results := make([]Value, 0, pieces)
	for i := 0; i < pieces; i++ {
		start := i * lanes
		pargs := make([]Value, len(args))
		for j, a := range args {
			if a.Type.Lanes == t.Lanes {
				a = b.Slice(a, start, lanes)
			}
			pargs[j] = a
		}
		results = append(results, b.call(pt, name, pargs))
	}
	return b.Slice(b.Concat(results), 0, t.Lanes), nil
}

func (b *Builder) call(t ir.Type, name string, args []Value) Value {
	ops := make([]string, len(args))
	tys := make([]string, len(args))
	for i, a := range args {
		ops[i] = a.Operand()
		tys[i] = LLVMType(a.Type)
	}
	if _, ok := b.decls[name]; !ok {
		b.decls[name] = fmt.Sprintf("declare %s @%s(%s)", LLVMType(t), name, strings.Join(tys, ", "))
		b.declList = append(b.declList, name)
	}
	b.calls = append(b.calls, name)
	return b.Emit(t, "call %s @%s(%s)", LLVMType(t), name, strings.Join(ops, ", "))
}

// Slice extracts n lanes of v starting at start. Lanes past the end of v
// are undef.
func (b *Builder) Slice(v Value, start, n int) Value {
	if start == 0 && n == v.Type.Lanes {
		return v
	}
	mask := make([]string, n)
	for i := range mask {
		if idx := start + i; idx < v.Type.Lanes {
			mask[i] = fmt.Sprintf("i32 %d", idx)
		} else {
			mask[i] = "i32 undef"
		}
	}
	return b.Emit(v.Type.WithLanes(n), "shufflevector %s, %s undef, <%d x i32> <%s>",
		v.Operand(), LLVMType(v.Type), n, strings.Join(mask, ", "))
}

// Concat joins vs end to end.
func (b *Builder) Concat(vs []Value) Value {
	acc := vs[0]
	for _, next := range vs[1:] {
		al, nl := acc.Type.Lanes, next.Type.Lanes
		w := max(al, nl)
		x, y := b.Slice(acc, 0, w), b.Slice(next, 0, w)
		mask := make([]string, 0, al+nl)
		for i := 0; i < al; i++ {
			mask = append(mask, fmt.Sprintf("i32 %d", i))
		}
		for i := 0; i < nl; i++ {
			mask = append(mask, fmt.Sprintf("i32 %d", w+i))
		}
		acc = b.Emit(acc.Type.WithLanes(al+nl), "shufflevector %s, %s, <%d x i32> <%s>",
			x.Operand(), y.Operand(), al+nl, strings.Join(mask, ", "))
	}
	return acc
}
