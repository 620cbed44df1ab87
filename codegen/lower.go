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

	"github.com/ajroetker/go-wasmsel/ir"
)

func isFloating(t ir.Type) bool { return t.IsFloat() || t.IsBFloat() }

// LowerCast lowers c with the generic conversion instructions.
func (b *Builder) LowerCast(c *ir.Cast) (Value, error) {
	v, err := b.Codegen(c.Value)
	if err != nil {
		return Value{}, err
	}
	return b.Convert(v, c.T)
}

// Convert converts v to type to, element-wise.
func (b *Builder) Convert(v Value, to ir.Type) (Value, error) {
	from := v.Type
	if from.Lanes != to.Lanes {
		return Value{}, fmt.Errorf("%w: cast %s to %s changes lane count", ErrUnsupported, from, to)
	}
	if from == to {
		return v, nil
	}
	var op string
	switch {
	case !isFloating(from) && !isFloating(to):
		switch {
		case to.Bits > from.Bits && from.IsInt():
			op = "sext"
		case to.Bits > from.Bits:
			op = "zext"
		case to.Bits < from.Bits:
			op = "trunc"
		default:
			// Signedness is not part of the LLVM type.
			return Value{Ref: v.Ref, Type: to}, nil
		}
	case !isFloating(from):
		op = "uitofp"
		if from.IsInt() {
			op = "sitofp"
		}
	case !isFloating(to):
		op = "fptoui"
		if to.IsInt() {
			op = "fptosi"
		}
	case to.Bits > from.Bits:
		op = "fpext"
	case to.Bits < from.Bits:
		op = "fptrunc"
	default:
		// half <-> bfloat goes through float.
		wide, err := b.Convert(v, ir.Float(32, from.Lanes))
		if err != nil {
			return Value{}, err
		}
		return b.Convert(wide, to)
	}
	return b.Emit(to, "%s %s to %s", op, v.Operand(), LLVMType(to)), nil
}

var (
	intOps   = map[ir.BinaryOp][2]string{ir.OpAdd: {"add", "add"}, ir.OpSub: {"sub", "sub"}, ir.OpMul: {"mul", "mul"}, ir.OpDiv: {"sdiv", "udiv"}, ir.OpMod: {"srem", "urem"}, ir.OpShl: {"shl", "shl"}, ir.OpShr: {"ashr", "lshr"}, ir.OpAnd: {"and", "and"}, ir.OpOr: {"or", "or"}, ir.OpXor: {"xor", "xor"}}
	floatOps = map[ir.BinaryOp]string{ir.OpAdd: "fadd", ir.OpSub: "fsub", ir.OpMul: "fmul", ir.OpDiv: "fdiv", ir.OpMod: "frem"}
	intCmp   = map[ir.BinaryOp][2]string{ir.OpLT: {"slt", "ult"}, ir.OpLE: {"sle", "ule"}, ir.OpEQ: {"eq", "eq"}, ir.OpNE: {"ne", "ne"}, ir.OpGT: {"sgt", "ugt"}, ir.OpGE: {"sge", "uge"}}
	floatCmp = map[ir.BinaryOp]string{ir.OpLT: "olt", ir.OpLE: "ole", ir.OpEQ: "oeq", ir.OpNE: "une", ir.OpGT: "ogt", ir.OpGE: "oge"}
)

// LowerBinary lowers an arithmetic, bitwise or comparison node. min and
// max become a compare followed by a select.
func (b *Builder) LowerBinary(e *ir.Binary) (Value, error) {
	x, err := b.Codegen(e.A)
	if err != nil {
		return Value{}, err
	}
	y, err := b.Codegen(e.B)
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case ir.OpMin, ir.OpMax:
		cmp := ir.OpLT
		if e.Op == ir.OpMax {
			cmp = ir.OpGT
		}
		c, err := b.compare(cmp, x, y)
		if err != nil {
			return Value{}, err
		}
		return b.Select(c, x, y), nil
	}
	if e.Op.IsComparison() {
		return b.compare(e.Op, x, y)
	}
	t := x.Type
	var op string
	if isFloating(t) {
		op = floatOps[e.Op]
	} else {
		op = intOps[e.Op][signIndex(t)]
	}
	if op == "" {
		return Value{}, fmt.Errorf("%w: operator %s on %s", ErrUnsupported, e.Op, t)
	}
	return b.Emit(t, "%s %s, %s", op, x.Operand(), y.Ref), nil
}

func signIndex(t ir.Type) int {
	if t.IsInt() {
		return 0
	}
	return 1
}

func (b *Builder) compare(op ir.BinaryOp, x, y Value) (Value, error) {
	t := x.Type
	res := ir.Bool(t.Lanes)
	if isFloating(t) {
		return b.Emit(res, "fcmp %s %s, %s", floatCmp[op], x.Operand(), y.Ref), nil
	}
	pred := intCmp[op][signIndex(t)]
	if pred == "" {
		return Value{}, fmt.Errorf("%w: comparison %s", ErrUnsupported, op)
	}
	return b.Emit(res, "icmp %s %s, %s", pred, x.Operand(), y.Ref), nil
}

// LowerBroadcast replicates a scalar with insertelement and shufflevector.
func (b *Builder) LowerBroadcast(e *ir.Broadcast) (Value, error) {
	v, err := b.Codegen(e.Value)
	if err != nil {
		return Value{}, err
	}
	return b.Splat(v, e.Lanes), nil
}

// Splat replicates the scalar v across lanes lanes.
func (b *Builder) Splat(v Value, lanes int) Value {
	t := v.Type.WithLanes(lanes)
	ins := b.Emit(t, "insertelement %s undef, %s, i32 0", LLVMType(t), v.Operand())
	return b.Emit(t, "shufflevector %s, %s undef, <%d x i32> zeroinitializer", ins.Operand(), LLVMType(t), lanes)
}

// LowerSelect lowers a select with the generic select instruction.
func (b *Builder) LowerSelect(e *ir.Select) (Value, error) {
	c, err := b.Codegen(e.Cond)
	if err != nil {
		return Value{}, err
	}
	t, err := b.Codegen(e.True)
	if err != nil {
		return Value{}, err
	}
	f, err := b.Codegen(e.False)
	if err != nil {
		return Value{}, err
	}
	return b.Select(c, t, f), nil
}

// Select emits "select cond, t, f".
func (b *Builder) Select(cond, t, f Value) Value {
	return b.Emit(t.Type, "select %s, %s, %s", cond.Operand(), t.Operand(), f.Operand())
}
