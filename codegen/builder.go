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

// Package codegen lowers ir expressions to textual LLVM-style SSA.
//
// A Builder walks an expression bottom-up and appends one instruction per
// operation. Target backends hook in through Peephole: every node is
// offered to the peephole first and only lowered generically when the
// peephole declines it.
package codegen

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ajroetker/go-wasmsel/ir"
)

var (
	// ErrUnsupported is returned for expressions the builder cannot lower.
	ErrUnsupported = errors.New("codegen: unsupported expression")
	// ErrBadIntrinsic is returned for malformed intrinsic calls.
	ErrBadIntrinsic = errors.New("codegen: bad intrinsic call")
)

// Value is the result of lowering an expression: an SSA register, an
// argument or an immediate operand, together with its type.
type Value struct {
	Ref  string
	Type ir.Type
}

// Operand formats v as a typed instruction operand, e.g. "<16 x i8> %3".
func (v Value) Operand() string {
	return LLVMType(v.Type) + " " + v.Ref
}

// Peephole is a target specific lowering hook.
type Peephole interface {
	// Lower emits e through b and reports true, or reports false to let
	// the builder lower e generically. Lower must not emit anything when
	// it reports false.
	Lower(b *Builder, e ir.Expr) (Value, bool, error)
}

// Builder accumulates the instructions of one function. It is not safe
// for concurrent use.
type Builder struct {
	peephole Peephole

	insns    []string
	next     int
	params   []Value
	seen     map[string]Value
	decls    map[string]string
	declList []string
	calls    []string
}

// NewBuilder returns an empty builder. p may be nil.
func NewBuilder(p Peephole) *Builder {
	return &Builder{
		peephole: p,
		seen:     make(map[string]Value),
		decls:    make(map[string]string),
	}
}

// Codegen lowers e and returns the value holding its result.
func (b *Builder) Codegen(e ir.Expr) (Value, error) {
	if b.peephole != nil {
		v, ok, err := b.peephole.Lower(b, e)
		if err != nil {
			return Value{}, err
		}
		if ok {
			return v, nil
		}
	}
	return b.lower(e)
}

func (b *Builder) lower(e ir.Expr) (Value, error) {
	switch e := e.(type) {
	case *ir.Var:
		return b.param(e), nil
	case *ir.IntImm:
		return Value{Ref: fmt.Sprint(e.Value), Type: e.T}, nil
	case *ir.UIntImm:
		if e.T.IsBool() {
			return Value{Ref: fmt.Sprint(e.Value != 0), Type: e.T}, nil
		}
		return Value{Ref: fmt.Sprint(e.Value), Type: e.T}, nil
	case *ir.FloatImm:
		return Value{Ref: fmt.Sprintf("%e", e.Value), Type: e.T}, nil
	case *ir.Cast:
		return b.LowerCast(e)
	case *ir.Binary:
		return b.LowerBinary(e)
	case *ir.Broadcast:
		return b.LowerBroadcast(e)
	case *ir.Select:
		return b.LowerSelect(e)
	case *ir.Call:
		return b.CallIntrinsic(e.T, e.T.Lanes, e.Name, e.Args)
	}
	return Value{}, fmt.Errorf("%w: %s", ErrUnsupported, e)
}

func (b *Builder) param(v *ir.Var) Value {
	if p, ok := b.seen[v.Name]; ok {
		return p
	}
	p := Value{Ref: "%" + v.Name, Type: v.T}
	b.seen[v.Name] = p
	b.params = append(b.params, p)
	return p
}

// Emit appends an instruction producing a value of type t and returns it.
// format and args describe the right-hand side.
func (b *Builder) Emit(t ir.Type, format string, args ...any) Value {
	v := Value{Ref: fmt.Sprintf("%%%d", b.next), Type: t}
	b.next++
	b.insns = append(b.insns, v.Ref+" = "+fmt.Sprintf(format, args...))
	return v
}

// Instructions returns the instructions emitted so far.
func (b *Builder) Instructions() []string {
	return slices.Clone(b.insns)
}

// Calls returns the names of the intrinsics called so far, in call order.
func (b *Builder) Calls() []string {
	return slices.Clone(b.calls)
}

// Function lowers e as the body of a function called name and returns
// the complete text: intrinsic declarations followed by the definition.
func (b *Builder) Function(name string, e ir.Expr) (string, error) {
	v, err := b.Codegen(e)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	var sb strings.Builder
	for _, d := range b.declList {
		sb.WriteString(b.decls[d])
		sb.WriteByte('\n')
	}
	if len(b.declList) > 0 {
		sb.WriteByte('\n')
	}
	params := make([]string, len(b.params))
	for i, p := range b.params {
		params[i] = p.Operand()
	}
	fmt.Fprintf(&sb, "define %s @%s(%s) {\n", LLVMType(v.Type), name, strings.Join(params, ", "))
	for _, insn := range b.insns {
		sb.WriteString("  ")
		sb.WriteString(insn)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  ret %s\n}\n", v.Operand())
	return sb.String(), nil
}
