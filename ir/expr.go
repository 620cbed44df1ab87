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

// Package ir defines the machine-independent expression tree consumed by
// instruction selection, together with the structural matcher and the
// lossless narrowing analysis used by peephole rules.
//
// Expressions are immutable once built. Templates are ordinary expressions
// that may contain Wild leaves and wildcard types (see Type).
package ir

// Expr is a node of the expression tree.
type Expr interface {
	// Type returns the type of the value the expression produces.
	Type() Type
	String() string
	expr()
}

// Var is a named value of a known type.
type Var struct {
	Name string
	T    Type
}

// IntImm is a signed integer constant.
type IntImm struct {
	Value int64
	T     Type
}

// UIntImm is an unsigned integer (or boolean) constant.
type UIntImm struct {
	Value uint64
	T     Type
}

// FloatImm is a floating point constant.
type FloatImm struct {
	Value float64
	T     Type
}

// Cast converts Value to T, element-wise.
type Cast struct {
	T     Type
	Value Expr
}

// BinaryOp identifies the operator of a Binary node.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMin
	OpMax
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpLT
	OpLE
	OpEQ
	OpNE
	OpGT
	OpGE
)

var binaryOpNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpMin: "min", OpMax: "max", OpShl: "<<", OpShr: ">>",
	OpAnd: "&", OpOr: "|", OpXor: "^",
	OpLT: "<", OpLE: "<=", OpEQ: "==", OpNE: "!=", OpGT: ">", OpGE: ">=",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// IsComparison reports whether op produces a boolean.
func (op BinaryOp) IsComparison() bool { return op >= OpLT }

// Binary is a two-operand arithmetic, bitwise or comparison node. Both
// operands have the same type.
type Binary struct {
	Op   BinaryOp
	A, B Expr
}

// Broadcast replicates a scalar across Lanes lanes.
type Broadcast struct {
	Value Expr
	Lanes int
}

// Select picks True where Cond holds and False elsewhere. Cond is boolean
// and is either scalar or has the lane count of the values.
type Select struct {
	Cond, True, False Expr
}

// Call is a pure call to a named intrinsic.
type Call struct {
	Name string
	T    Type
	Args []Expr
}

// Wild is a template placeholder. It matches any sub-expression whose type
// matches T (with template wildcards); equal names must bind equal
// sub-expressions.
type Wild struct {
	Name string
	T    Type
}

func (e *Var) Type() Type      { return e.T }
func (e *IntImm) Type() Type   { return e.T }
func (e *UIntImm) Type() Type  { return e.T }
func (e *FloatImm) Type() Type { return e.T }
func (e *Cast) Type() Type     { return e.T }
func (e *Call) Type() Type     { return e.T }
func (e *Wild) Type() Type     { return e.T }
func (e *Select) Type() Type   { return e.True.Type() }

func (e *Binary) Type() Type {
	t := e.A.Type()
	if e.Op.IsComparison() {
		return Bool(t.Lanes)
	}
	return t
}

func (e *Broadcast) Type() Type { return e.Value.Type().WithLanes(e.Lanes) }

func (*Var) expr()       {}
func (*IntImm) expr()    {}
func (*UIntImm) expr()   {}
func (*FloatImm) expr()  {}
func (*Cast) expr()      {}
func (*Binary) expr()    {}
func (*Broadcast) expr() {}
func (*Select) expr()    {}
func (*Call) expr()      {}
func (*Wild) expr()      {}

// NewVar returns a variable reference.
func NewVar(name string, t Type) *Var { return &Var{Name: name, T: t} }

// NewWild returns a template wildcard.
func NewWild(name string, t Type) *Wild { return &Wild{Name: name, T: t} }

// NewCast returns Value converted to t.
func NewCast(t Type, value Expr) *Cast { return &Cast{T: t, Value: value} }

// NewBroadcast replicates value across lanes.
func NewBroadcast(value Expr, lanes int) *Broadcast { return &Broadcast{Value: value, Lanes: lanes} }

// NewSelect returns a select node.
func NewSelect(cond, t, f Expr) *Select { return &Select{Cond: cond, True: t, False: f} }

func bin(op BinaryOp, a, b Expr) *Binary { return &Binary{Op: op, A: a, B: b} }

func Add(a, b Expr) *Binary { return bin(OpAdd, a, b) }
func Sub(a, b Expr) *Binary { return bin(OpSub, a, b) }
func Mul(a, b Expr) *Binary { return bin(OpMul, a, b) }
func Div(a, b Expr) *Binary { return bin(OpDiv, a, b) }
func Mod(a, b Expr) *Binary { return bin(OpMod, a, b) }
func Min(a, b Expr) *Binary { return bin(OpMin, a, b) }
func Max(a, b Expr) *Binary { return bin(OpMax, a, b) }
func Shl(a, b Expr) *Binary { return bin(OpShl, a, b) }
func Shr(a, b Expr) *Binary { return bin(OpShr, a, b) }
func Lt(a, b Expr) *Binary  { return bin(OpLT, a, b) }
func Eq(a, b Expr) *Binary  { return bin(OpEQ, a, b) }

// NewBinary returns a Binary node for op.
func NewBinary(op BinaryOp, a, b Expr) *Binary { return bin(op, a, b) }

// MakeConst returns the constant v of type t. Vector types get a Broadcast
// of a scalar immediate; lane-wild template types get a bare immediate so
// that the matcher can accept either form.
func MakeConst(t Type, v int64) Expr {
	if t.Lanes > 1 {
		return NewBroadcast(MakeConst(t.Element(), v), t.Lanes)
	}
	switch {
	case t.IsInt():
		return &IntImm{Value: v, T: t}
	case t.IsUInt():
		return &UIntImm{Value: uint64(v), T: t}
	default:
		return &FloatImm{Value: float64(v), T: t}
	}
}

// MakeUintConst is MakeConst for values that may not fit in an int64.
func MakeUintConst(t Type, v uint64) Expr {
	if t.Lanes > 1 {
		return NewBroadcast(MakeUintConst(t.Element(), v), t.Lanes)
	}
	switch {
	case t.IsUInt():
		return &UIntImm{Value: v, T: t}
	case t.IsInt():
		return &IntImm{Value: int64(v), T: t}
	default:
		return &FloatImm{Value: float64(v), T: t}
	}
}

// SatCast converts e to t, clamping to the range of t first. The clamp
// bounds are expressed in e's type and only emitted when they are needed
// and representable, so SatCast(UInt(8), u16) is cast(min(e, 255)).
func SatCast(t Type, e Expr) Expr {
	src := e.Type()
	t = t.WithLanes(src.Lanes)
	if src == t {
		return e
	}
	var lo, hi Expr
	if !src.IsUInt() && src.CanRepresentInt(t.Min()) {
		lo = MakeConst(src, t.Min())
	}
	if t.IsUInt() && t.Bits >= 63 {
		if src.CanRepresentUint(t.MaxUint()) {
			hi = MakeUintConst(src, t.MaxUint())
		}
	} else if src.CanRepresentInt(t.Max()) {
		hi = MakeConst(src, t.Max())
	}
	// Bounds that cannot be exceeded are dropped.
	if t.CanRepresent(src) {
		lo, hi = nil, nil
	}
	switch {
	case lo != nil && hi != nil:
		e = Max(Min(e, hi), lo)
	case lo != nil:
		e = Max(e, lo)
	case hi != nil:
		e = Min(e, hi)
	}
	return NewCast(t, e)
}

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Name == y.Name && x.T == y.T
	case *IntImm:
		y, ok := b.(*IntImm)
		return ok && x.Value == y.Value && x.T == y.T
	case *UIntImm:
		y, ok := b.(*UIntImm)
		return ok && x.Value == y.Value && x.T == y.T
	case *FloatImm:
		y, ok := b.(*FloatImm)
		return ok && x.Value == y.Value && x.T == y.T
	case *Cast:
		y, ok := b.(*Cast)
		return ok && x.T == y.T && Equal(x.Value, y.Value)
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op && Equal(x.A, y.A) && Equal(x.B, y.B)
	case *Broadcast:
		y, ok := b.(*Broadcast)
		return ok && x.Lanes == y.Lanes && Equal(x.Value, y.Value)
	case *Select:
		y, ok := b.(*Select)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.True, y.True) && Equal(x.False, y.False)
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.Name != y.Name || x.T != y.T || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Wild:
		y, ok := b.(*Wild)
		return ok && x.Name == y.Name && x.T == y.T
	}
	return false
}
