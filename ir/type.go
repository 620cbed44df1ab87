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
	"math"
	"strconv"
	"strings"
)

// TypeCode is the numeric class of an element type.
type TypeCode uint8

const (
	IntCode TypeCode = iota
	UIntCode
	FloatCode
	BFloatCode
)

// Type is an element type plus a lane count.
//
// Lanes == 1 is a scalar. Templates use Lanes == 0 to mean "any lane count"
// and Bits == 0 to mean "any bit width"; concrete expressions never do.
type Type struct {
	Code  TypeCode
	Bits  int
	Lanes int
}

// Int returns a signed integer type. Lanes defaults to 1.
func Int(bits int, lanes ...int) Type { return Type{IntCode, bits, lanesOf(lanes)} }

// UInt returns an unsigned integer type. Lanes defaults to 1.
func UInt(bits int, lanes ...int) Type { return Type{UIntCode, bits, lanesOf(lanes)} }

// Float returns an IEEE float type. Lanes defaults to 1.
func Float(bits int, lanes ...int) Type { return Type{FloatCode, bits, lanesOf(lanes)} }

// BFloat returns a brain-float type. Lanes defaults to 1.
func BFloat(bits int, lanes ...int) Type { return Type{BFloatCode, bits, lanesOf(lanes)} }

// Bool returns the boolean type, a one bit unsigned integer.
func Bool(lanes ...int) Type { return Type{UIntCode, 1, lanesOf(lanes)} }

func lanesOf(lanes []int) int {
	if len(lanes) == 0 {
		return 1
	}
	return lanes[0]
}

func (t Type) IsInt() bool    { return t.Code == IntCode }
func (t Type) IsUInt() bool   { return t.Code == UIntCode }
func (t Type) IsFloat() bool  { return t.Code == FloatCode }
func (t Type) IsBFloat() bool { return t.Code == BFloatCode }
func (t Type) IsBool() bool   { return t.Code == UIntCode && t.Bits == 1 }

// IsScalar reports whether t has exactly one lane.
func (t Type) IsScalar() bool { return t.Lanes == 1 }

// IsVector reports whether t has more than one lane, or is lane-wild.
func (t Type) IsVector() bool { return t.Lanes != 1 }

// WithLanes returns t with a different lane count.
func (t Type) WithLanes(lanes int) Type {
	t.Lanes = lanes
	return t
}

// WithBits returns t with a different bit width.
func (t Type) WithBits(bits int) Type {
	t.Bits = bits
	return t
}

// Element returns the scalar type of one lane.
func (t Type) Element() Type { return t.WithLanes(1) }

// Max returns the largest value of an integer type as int64. For uint64 the
// result saturates at math.MaxInt64; use MaxUint for the exact value.
func (t Type) Max() int64 {
	switch {
	case t.IsInt():
		if t.Bits >= 64 {
			return math.MaxInt64
		}
		return int64(1)<<(t.Bits-1) - 1
	case t.IsUInt():
		if t.Bits >= 63 {
			return math.MaxInt64
		}
		return int64(1)<<t.Bits - 1
	}
	return 0
}

// MaxUint returns the largest value of an unsigned type.
func (t Type) MaxUint() uint64 {
	if t.Bits >= 64 {
		return math.MaxUint64
	}
	return uint64(1)<<t.Bits - 1
}

// Min returns the smallest value of an integer type.
func (t Type) Min() int64 {
	if t.IsInt() {
		if t.Bits >= 64 {
			return math.MinInt64
		}
		return -(int64(1) << (t.Bits - 1))
	}
	return 0
}

// CanRepresentInt reports whether v is exactly representable in t.
func (t Type) CanRepresentInt(v int64) bool {
	switch {
	case t.IsInt(), t.IsUInt():
		return v >= t.Min() && (v <= t.Max() || (t.IsUInt() && t.Bits >= 63 && v >= 0))
	case t.IsFloat(), t.IsBFloat():
		m := int64(1) << t.mantissaBits()
		return v >= -m && v <= m
	}
	return false
}

// CanRepresentUint reports whether v is exactly representable in t.
func (t Type) CanRepresentUint(v uint64) bool {
	switch {
	case t.IsUInt():
		return v <= t.MaxUint()
	case t.IsInt():
		return v <= uint64(t.Max())
	case t.IsFloat(), t.IsBFloat():
		return v <= uint64(1)<<t.mantissaBits()
	}
	return false
}

func (t Type) mantissaBits() int {
	if t.IsBFloat() {
		return 8
	}
	switch t.Bits {
	case 16:
		return 11
	case 32:
		return 24
	}
	return 53
}

// CanRepresent reports whether every value of other is exactly
// representable in t. Lane counts must agree.
func (t Type) CanRepresent(other Type) bool {
	if t.Lanes != other.Lanes {
		return false
	}
	switch {
	case t.IsInt():
		return (other.IsInt() && other.Bits <= t.Bits) ||
			(other.IsUInt() && other.Bits < t.Bits)
	case t.IsUInt():
		return other.IsUInt() && other.Bits <= t.Bits
	case t.IsBFloat():
		return other.IsBFloat() && other.Bits <= t.Bits
	case t.IsFloat():
		if other.IsBFloat() {
			return t.Bits > other.Bits
		}
		return (other.IsFloat() && other.Bits <= t.Bits) ||
			(t.Bits == 64 && other.Bits <= 32) ||
			(t.Bits == 32 && other.Bits <= 16)
	}
	return false
}

// String formats t as element name plus an "xN" lane suffix, e.g.
// "int8x16", "float32", "bool", "uint16xN" for a lane-wild template type.
func (t Type) String() string {
	var b strings.Builder
	switch {
	case t.IsBool():
		b.WriteString("bool")
	case t.IsInt():
		b.WriteString("int")
	case t.IsUInt():
		b.WriteString("uint")
	case t.IsFloat():
		b.WriteString("float")
	case t.IsBFloat():
		b.WriteString("bfloat")
	}
	if !t.IsBool() {
		if t.Bits == 0 {
			b.WriteString("N")
		} else {
			b.WriteString(strconv.Itoa(t.Bits))
		}
	}
	switch t.Lanes {
	case 1:
	case 0:
		b.WriteString("xN")
	default:
		fmt.Fprintf(&b, "x%d", t.Lanes)
	}
	return b.String()
}

// ParseType parses the form produced by Type.String for concrete types.
// A missing lane suffix yields a scalar; callers that want "inherit lanes"
// semantics check HasLanes.
func ParseType(s string) (Type, error) {
	name, lanesStr, hasLanes := strings.Cut(s, "x")
	lanes := 1
	if hasLanes {
		n, err := strconv.Atoi(lanesStr)
		if err != nil || n < 1 {
			return Type{}, fmt.Errorf("invalid lane count in type %q", s)
		}
		lanes = n
	}
	if name == "bool" {
		return Bool(lanes), nil
	}
	var code TypeCode
	var rest string
	switch {
	case strings.HasPrefix(name, "uint"):
		code, rest = UIntCode, name[len("uint"):]
	case strings.HasPrefix(name, "int"):
		code, rest = IntCode, name[len("int"):]
	case strings.HasPrefix(name, "bfloat"):
		code, rest = BFloatCode, name[len("bfloat"):]
	case strings.HasPrefix(name, "float"):
		code, rest = FloatCode, name[len("float"):]
	default:
		return Type{}, fmt.Errorf("unknown type %q", s)
	}
	bits, err := strconv.Atoi(rest)
	if err != nil {
		return Type{}, fmt.Errorf("invalid bit width in type %q", s)
	}
	if !validBits(code, bits) {
		return Type{}, fmt.Errorf("unsupported bit width in type %q", s)
	}
	return Type{code, bits, lanes}, nil
}

// HasLanes reports whether a type name carries an explicit lane suffix.
func HasLanes(s string) bool { return strings.Contains(s, "x") }

func validBits(code TypeCode, bits int) bool {
	switch code {
	case IntCode, UIntCode:
		return bits == 8 || bits == 16 || bits == 32 || bits == 64
	case FloatCode:
		return bits == 16 || bits == 32 || bits == 64
	case BFloatCode:
		return bits == 16
	}
	return false
}

// typesMatch compares a template type against a concrete type, honoring the
// Bits == 0 and Lanes == 0 wildcards of the template.
func typesMatch(pattern, t Type) bool {
	return pattern.Code == t.Code &&
		(pattern.Bits == 0 || pattern.Bits == t.Bits) &&
		(pattern.Lanes == 0 || pattern.Lanes == t.Lanes)
}
