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

import "math/bits"

// Interval is an inclusive integer range.
type Interval struct {
	Min, Max int64
}

// fits reports whether every value in iv is representable in t.
func (iv Interval) fits(t Type) bool {
	return t.CanRepresentInt(iv.Min) && t.CanRepresentInt(iv.Max)
}

// typeRange returns the full range of an integer type. 64-bit unsigned
// types do not fit an int64 interval.
func typeRange(t Type) (Interval, bool) {
	if !(t.IsInt() || t.IsUInt()) || (t.IsUInt() && t.Bits >= 64) {
		return Interval{}, false
	}
	return Interval{t.Min(), t.Max()}, true
}

// Bounds returns a conservative range of the integer values e can take.
// It reports false for float expressions and when the range cannot be
// expressed in an int64.
func Bounds(e Expr) (Interval, bool) {
	switch e := e.(type) {
	case *IntImm:
		return Interval{e.Value, e.Value}, true
	case *UIntImm:
		if e.Value > uint64(1<<63-1) {
			return Interval{}, false
		}
		return Interval{int64(e.Value), int64(e.Value)}, true
	case *Broadcast:
		return Bounds(e.Value)
	case *Cast:
		// A widening cast keeps the operand's range; anything else may wrap.
		if e.T.CanRepresent(e.Value.Type()) {
			if iv, ok := Bounds(e.Value); ok {
				return iv, true
			}
		}
		return typeRange(e.T)
	case *Binary:
		return binaryBounds(e)
	case *Select:
		t, ok1 := Bounds(e.True)
		f, ok2 := Bounds(e.False)
		if !ok1 || !ok2 {
			return typeRange(e.Type())
		}
		return Interval{min(t.Min, f.Min), max(t.Max, f.Max)}, true
	}
	return typeRange(e.Type())
}

func binaryBounds(e *Binary) (Interval, bool) {
	t := e.Type()
	full, fullOK := typeRange(t)
	a, okA := Bounds(e.A)
	b, okB := Bounds(e.B)
	if !okA || !okB {
		return full, fullOK
	}
	var iv Interval
	ok := true
	switch e.Op {
	case OpAdd:
		iv.Min, ok = addChecked(a.Min, b.Min)
		if ok {
			iv.Max, ok = addChecked(a.Max, b.Max)
		}
	case OpSub:
		iv.Min, ok = subChecked(a.Min, b.Max)
		if ok {
			iv.Max, ok = subChecked(a.Max, b.Min)
		}
	case OpMul:
		iv, ok = mulBounds(a, b)
	case OpMin:
		iv = Interval{min(a.Min, b.Min), min(a.Max, b.Max)}
	case OpMax:
		iv = Interval{max(a.Min, b.Min), max(a.Max, b.Max)}
	case OpDiv:
		// Division truncates toward zero, matching sdiv and udiv, and is
		// monotonic in the dividend for a positive constant divisor.
		if b.Min == b.Max && b.Min > 0 {
			iv = Interval{a.Min / b.Min, a.Max / b.Min}
		} else {
			return full, fullOK
		}
	case OpShr:
		if b.Min == b.Max && b.Min >= 0 && b.Min < 63 {
			iv = Interval{a.Min >> b.Min, a.Max >> b.Min}
		} else {
			return full, fullOK
		}
	default:
		return full, fullOK
	}
	if !ok {
		return full, fullOK
	}
	// The operation is carried out in t and wraps outside its range.
	if fullOK && !iv.fits(t) {
		return full, true
	}
	return iv, true
}

func addChecked(a, b int64) (int64, bool) {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		return 0, false
	}
	return s, true
}

func subChecked(a, b int64) (int64, bool) {
	d := a - b
	if (a >= 0 && b < 0 && d < 0) || (a < 0 && b > 0 && d >= 0) {
		return 0, false
	}
	return d, true
}

func mulChecked(a, b int64) (int64, bool) {
	neg := (a < 0) != (b < 0)
	ua, ub := absU(a), absU(b)
	hi, lo := bits.Mul64(ua, ub)
	if hi != 0 || lo > 1<<63 || (lo == 1<<63 && !neg) {
		return 0, false
	}
	if neg {
		return -int64(lo), true
	}
	return int64(lo), true
}

func absU(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

func mulBounds(a, b Interval) (Interval, bool) {
	out := Interval{Min: 1<<63 - 1, Max: -1 << 63}
	for _, x := range [2]int64{a.Min, a.Max} {
		for _, y := range [2]int64{b.Min, b.Max} {
			p, ok := mulChecked(x, y)
			if !ok {
				return Interval{}, false
			}
			out.Min = min(out.Min, p)
			out.Max = max(out.Max, p)
		}
	}
	return out, true
}

// LosslessCast returns an expression of type t that computes exactly the
// same values as e, or nil when that cannot be proven. The lane count of t
// must equal that of e.
func LosslessCast(t Type, e Expr) Expr {
	if e == nil {
		return nil
	}
	et := e.Type()
	if et == t {
		return e
	}
	if t.Lanes != et.Lanes {
		return nil
	}
	if t.CanRepresent(et) {
		return NewCast(t, e)
	}

	switch e := e.(type) {
	case *Cast:
		if e.T.CanRepresent(e.Value.Type()) {
			return LosslessCast(t, e.Value)
		}
	case *Broadcast:
		if v := LosslessCast(t.Element(), e.Value); v != nil {
			return NewBroadcast(v, e.Lanes)
		}
	case *IntImm:
		if t.CanRepresentInt(e.Value) && (t.IsInt() || t.IsUInt()) {
			return MakeConst(t, e.Value)
		}
	case *UIntImm:
		if t.CanRepresentUint(e.Value) && (t.IsInt() || t.IsUInt()) {
			return MakeUintConst(t, e.Value)
		}
	case *Binary:
		return losslessBinary(t, e)
	}
	return nil
}

func losslessBinary(t Type, e *Binary) Expr {
	switch e.Op {
	case OpAdd, OpSub, OpMul, OpMin, OpMax:
	default:
		return nil
	}
	if !(t.IsInt() || t.IsUInt()) || !(e.Type().IsInt() || e.Type().IsUInt()) {
		return nil
	}
	iv, ok := Bounds(e)
	if !ok || !iv.fits(t) {
		return nil
	}
	a := LosslessCast(t, e.A)
	if a == nil {
		return nil
	}
	b := LosslessCast(t, e.B)
	if b == nil {
		return nil
	}
	return NewBinary(e.Op, a, b)
}
