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

// UpgradeTypeForArithmetic returns the type arithmetic on t is carried out
// in. Half precision and bfloat values are computed as float32; every
// other type is returned unchanged.
func UpgradeTypeForArithmetic(t ir.Type) ir.Type {
	if t.IsBFloat() || (t.IsFloat() && t.Bits < 32) {
		return ir.Float(32, t.Lanes)
	}
	return t
}

// ElementType returns the LLVM name of t's element type, e.g. "i8".
func ElementType(t ir.Type) string {
	switch {
	case t.IsFloat():
		switch t.Bits {
		case 16:
			return "half"
		case 32:
			return "float"
		}
		return "double"
	case t.IsBFloat():
		return "bfloat"
	}
	return fmt.Sprintf("i%d", t.Bits)
}

// LLVMType returns the LLVM name of t, e.g. "<16 x i8>".
func LLVMType(t ir.Type) string {
	if t.Lanes == 1 {
		return ElementType(t)
	}
	return fmt.Sprintf("<%d x %s>", t.Lanes, ElementType(t))
}

// VectorSuffix returns the overload suffix used in intrinsic names, e.g.
// "v16i8" for int8x16 or "v4f32" for float32x4.
func VectorSuffix(t ir.Type) string {
	elem := fmt.Sprintf("i%d", t.Bits)
	if t.IsFloat() || t.IsBFloat() {
		elem = fmt.Sprintf("f%d", t.Bits)
	}
	if t.Lanes == 1 {
		return elem
	}
	return fmt.Sprintf("v%d%s", t.Lanes, elem)
}
