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

package ir

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
	"strings"
)

// ParseExpr parses an expression written in Go syntax:
//
//	sat_int8(int16(a) + int16(b))
//	uint8((uint16(a) + uint16(b) + 1) >> 1)
//	if_then_else(a < b, a, b)
//
// Identifiers are variables typed by vars. A call whose name is a type is a
// cast; without a lane suffix the cast keeps the operand's lane count.
// "sat_" before a type name makes a saturating cast. min, max,
// if_then_else and broadcast are built in. Untyped literals take the type
// of the other operand, defaulting to int32 and float32, and must fit it.
func ParseExpr(src string, vars map[string]Type) (Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}
	p := &exprParser{vars: vars}
	v, err := p.convert(node)
	if err != nil {
		return nil, err
	}
	return v.typed(Type{})
}

// MustParseExpr is ParseExpr for tests and tables; it panics on error.
func MustParseExpr(src string, vars map[string]Type) Expr {
	e, err := ParseExpr(src, vars)
	if err != nil {
		panic(err)
	}
	return e
}

type exprParser struct {
	vars map[string]Type
}

// value is either a typed expression or an untyped numeric literal.
type value struct {
	expr    Expr
	lit     bool
	isFloat bool
	i       int64
	f       float64
}

// typed materializes v; a zero hint picks the literal's default type. A
// literal the type cannot hold exactly is an error.
func (v value) typed(hint Type) (Expr, error) {
	if !v.lit {
		return v.expr, nil
	}
	if hint == (Type{}) {
		if v.isFloat {
			hint = Float(32)
		} else {
			hint = Int(32)
		}
	}
	elem := hint.Element()
	if v.isFloat && (hint.IsFloat() || hint.IsBFloat()) {
		if hint.Lanes > 1 {
			return NewBroadcast(&FloatImm{Value: v.f, T: elem}, hint.Lanes), nil
		}
		return &FloatImm{Value: v.f, T: hint}, nil
	}
	if v.isFloat {
		if v.f != math.Trunc(v.f) || math.Abs(v.f) >= 1<<63 || !elem.CanRepresentInt(int64(v.f)) {
			return nil, fmt.Errorf("constant %v overflows %s", v.f, elem)
		}
		return MakeConst(hint, int64(v.f)), nil
	}
	if !elem.IsFloat() && !elem.IsBFloat() && !elem.CanRepresentInt(v.i) {
		return nil, fmt.Errorf("constant %d overflows %s", v.i, elem)
	}
	return MakeConst(hint, v.i), nil
}

func (p *exprParser) convert(n ast.Expr) (value, error) {
	switch n := n.(type) {
	case *ast.ParenExpr:
		return p.convert(n.X)
	case *ast.BasicLit:
		return parseLiteral(n)
	case *ast.Ident:
		switch n.Name {
		case "true":
			return value{expr: &UIntImm{Value: 1, T: Bool()}}, nil
		case "false":
			return value{expr: &UIntImm{Value: 0, T: Bool()}}, nil
		}
		t, ok := p.vars[n.Name]
		if !ok {
			return value{}, fmt.Errorf("undefined variable %q", n.Name)
		}
		return value{expr: NewVar(n.Name, t)}, nil
	case *ast.UnaryExpr:
		return p.convertUnary(n)
	case *ast.BinaryExpr:
		return p.convertBinary(n)
	case *ast.CallExpr:
		return p.convertCall(n)
	}
	return value{}, fmt.Errorf("unsupported expression %T", n)
}

func parseLiteral(n *ast.BasicLit) (value, error) {
	switch n.Kind {
	case token.INT:
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return value{}, fmt.Errorf("integer literal %s: %w", n.Value, err)
		}
		return value{lit: true, i: i}, nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return value{}, fmt.Errorf("float literal %s: %w", n.Value, err)
		}
		return value{lit: true, isFloat: true, f: f}, nil
	}
	return value{}, fmt.Errorf("unsupported literal %s", n.Value)
}

func (p *exprParser) convertUnary(n *ast.UnaryExpr) (value, error) {
	x, err := p.convert(n.X)
	if err != nil {
		return value{}, err
	}
	switch n.Op {
	case token.ADD:
		return x, nil
	case token.SUB:
		if x.lit {
			x.i, x.f = -x.i, -x.f
			return x, nil
		}
		return value{expr: Sub(MakeConst(x.expr.Type(), 0), x.expr)}, nil
	}
	return value{}, fmt.Errorf("unsupported unary operator %s", n.Op)
}

var tokenOps = map[token.Token]BinaryOp{
	token.ADD: OpAdd, token.SUB: OpSub, token.MUL: OpMul, token.QUO: OpDiv,
	token.REM: OpMod, token.SHL: OpShl, token.SHR: OpShr, token.AND: OpAnd,
	token.OR: OpOr, token.XOR: OpXor, token.LSS: OpLT, token.LEQ: OpLE,
	token.EQL: OpEQ, token.NEQ: OpNE, token.GTR: OpGT, token.GEQ: OpGE,
}

func (p *exprParser) convertBinary(n *ast.BinaryExpr) (value, error) {
	op, ok := tokenOps[n.Op]
	if !ok {
		return value{}, fmt.Errorf("unsupported operator %s", n.Op)
	}
	x, err := p.convert(n.X)
	if err != nil {
		return value{}, err
	}
	y, err := p.convert(n.Y)
	if err != nil {
		return value{}, err
	}
	a, b, err := unify(x, y)
	if err != nil {
		return value{}, fmt.Errorf("operator %s: %w", n.Op, err)
	}
	return value{expr: NewBinary(op, a, b)}, nil
}

// unify types a pair of operands; a literal takes the other side's type.
func unify(x, y value) (Expr, Expr, error) {
	switch {
	case x.lit && !y.lit:
		a, err := x.typed(y.expr.Type())
		return a, y.expr, err
	case !x.lit && y.lit:
		b, err := y.typed(x.expr.Type())
		return x.expr, b, err
	}
	a, err := x.typed(Type{})
	if err != nil {
		return nil, nil, err
	}
	b, err := y.typed(Type{})
	if err != nil {
		return nil, nil, err
	}
	if a.Type() != b.Type() {
		return nil, nil, fmt.Errorf("mismatched types %s and %s", a.Type(), b.Type())
	}
	return a, b, nil
}

func (p *exprParser) convertCall(n *ast.CallExpr) (value, error) {
	fn, ok := n.Fun.(*ast.Ident)
	if !ok {
		return value{}, fmt.Errorf("unsupported call target %T", n.Fun)
	}
	args := make([]value, len(n.Args))
	for i, a := range n.Args {
		v, err := p.convert(a)
		if err != nil {
			return value{}, err
		}
		args[i] = v
	}

	switch fn.Name {
	case "min", "max":
		if len(args) != 2 {
			return value{}, fmt.Errorf("%s takes 2 arguments", fn.Name)
		}
		a, b, err := unify(args[0], args[1])
		if err != nil {
			return value{}, fmt.Errorf("%s: %w", fn.Name, err)
		}
		if fn.Name == "min" {
			return value{expr: Min(a, b)}, nil
		}
		return value{expr: Max(a, b)}, nil
	case "if_then_else":
		if len(args) != 3 {
			return value{}, fmt.Errorf("if_then_else takes 3 arguments")
		}
		cond, err := args[0].typed(Bool())
		if err != nil {
			return value{}, fmt.Errorf("if_then_else: %w", err)
		}
		if !cond.Type().IsBool() {
			return value{}, fmt.Errorf("if_then_else condition has type %s, want bool", cond.Type())
		}
		t, f, err := unify(args[1], args[2])
		if err != nil {
			return value{}, fmt.Errorf("if_then_else: %w", err)
		}
		if cl := cond.Type().Lanes; cl != 1 && cl != t.Type().Lanes {
			return value{}, fmt.Errorf("if_then_else condition has %d lanes, values have %d", cl, t.Type().Lanes)
		}
		return value{expr: NewSelect(cond, t, f)}, nil
	case "broadcast":
		if len(args) != 2 || !args[1].lit || args[1].isFloat || args[1].i < 2 {
			return value{}, fmt.Errorf("broadcast takes a value and a lane count > 1")
		}
		x, err := args[0].typed(Type{})
		if err != nil {
			return value{}, fmt.Errorf("broadcast: %w", err)
		}
		if !x.Type().IsScalar() {
			return value{}, fmt.Errorf("broadcast of non-scalar %s", x.Type())
		}
		return value{expr: NewBroadcast(x, int(args[1].i))}, nil
	}

	name, sat := strings.CutPrefix(fn.Name, "sat_")
	t, err := ParseType(name)
	if err != nil {
		return value{}, fmt.Errorf("unknown function %q", fn.Name)
	}
	if len(args) != 1 {
		return value{}, fmt.Errorf("conversion to %s takes 1 argument", name)
	}
	if args[0].lit {
		if sat {
			return value{}, fmt.Errorf("saturating conversion of a literal")
		}
		c, err := args[0].typed(t)
		if err != nil {
			return value{}, err
		}
		return value{expr: c}, nil
	}
	x := args[0].expr
	if !HasLanes(name) {
		t = t.WithLanes(x.Type().Lanes)
	} else if t.Lanes != x.Type().Lanes {
		return value{}, fmt.Errorf("cannot convert %s to %s", x.Type(), t)
	}
	if sat {
		return value{expr: SatCast(t, x)}, nil
	}
	return value{expr: NewCast(t, x)}, nil
}
