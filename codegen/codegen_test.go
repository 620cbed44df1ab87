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
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ajroetker/go-wasmsel/ir"
)

var testVars = map[string]ir.Type{
	"a": ir.Int(8, 16), "b": ir.Int(8, 16),
	"u": ir.UInt(8, 16), "w": ir.Int(16, 16),
	"s": ir.Int(32, 4), "f": ir.Float(32, 4),
	"h": ir.Float(16, 8), "c": ir.Bool(16),
	"x": ir.Int(8, 32), "y": ir.Int(8, 32),
}

func TestGenericLowering(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"int16(a)", []string{"%0 = sext <16 x i8> %a to <16 x i16>"}},
		{"uint16(u)", []string{"%0 = zext <16 x i8> %u to <16 x i16>"}},
		{"int8(w)", []string{"%0 = trunc <16 x i16> %w to <16 x i8>"}},
		{"uint8(a)", nil},
		{"float32(s)", []string{"%0 = sitofp <4 x i32> %s to <4 x float>"}},
		{"int32(f)", []string{"%0 = fptosi <4 x float> %f to <4 x i32>"}},
		{"float32(h)", []string{"%0 = fpext <8 x half> %h to <8 x float>"}},
		{"a - b", []string{"%0 = sub <16 x i8> %a, %b"}},
		{"u >> u", []string{"%0 = lshr <16 x i8> %u, %u"}},
		{"a / b", []string{"%0 = sdiv <16 x i8> %a, %b"}},
		{"f * f", []string{"%0 = fmul <4 x float> %f, %f"}},
		{"a < b", []string{"%0 = icmp slt <16 x i8> %a, %b"}},
		{"u >= u", []string{"%0 = icmp uge <16 x i8> %u, %u"}},
		{"min(a, b)", []string{
			"%0 = icmp slt <16 x i8> %a, %b",
			"%1 = select <16 x i1> %0, <16 x i8> %a, <16 x i8> %b",
		}},
		{"max(u, u)", []string{
			"%0 = icmp ugt <16 x i8> %u, %u",
			"%1 = select <16 x i1> %0, <16 x i8> %u, <16 x i8> %u",
		}},
		{"a + 1", []string{
			"%0 = insertelement <16 x i8> undef, i8 1, i32 0",
			"%1 = shufflevector <16 x i8> %0, <16 x i8> undef, <16 x i32> zeroinitializer",
			"%2 = add <16 x i8> %a, %1",
		}},
		{"if_then_else(c, a, b)", []string{"%0 = select <16 x i1> %c, <16 x i8> %a, <16 x i8> %b"}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			b := NewBuilder(nil)
			if _, err := b.Codegen(ir.MustParseExpr(tt.src, testVars)); err != nil {
				t.Fatalf("Codegen: %v", err)
			}
			if diff := cmp.Diff(tt.want, b.Instructions()); diff != "" {
				t.Errorf("instructions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodegenResultType(t *testing.T) {
	b := NewBuilder(nil)
	v, err := b.Codegen(ir.MustParseExpr("int16(a) + int16(b)", testVars))
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != ir.Int(16, 16) {
		t.Errorf("type = %v", v.Type)
	}
	if v.Operand() != "<16 x i16> %2" {
		t.Errorf("operand = %q", v.Operand())
	}
}

func TestCallIntrinsicNative(t *testing.T) {
	b := NewBuilder(nil)
	args := []ir.Expr{ir.NewVar("a", ir.Int(8, 16)), ir.NewVar("b", ir.Int(8, 16))}
	v, err := b.CallIntrinsic(ir.Int(8, 16), 16, "llvm.sadd.sat.v16i8", args)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"%0 = call <16 x i8> @llvm.sadd.sat.v16i8(<16 x i8> %a, <16 x i8> %b)"}
	if diff := cmp.Diff(want, b.Instructions()); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
	if v.Type != ir.Int(8, 16) {
		t.Errorf("type = %v", v.Type)
	}
}

func TestCallIntrinsicSplit(t *testing.T) {
	b := NewBuilder(nil)
	args := []ir.Expr{ir.NewVar("x", ir.Int(8, 32)), ir.NewVar("y", ir.Int(8, 32))}
	v, err := b.CallIntrinsic(ir.Int(8, 32), 16, "llvm.sadd.sat.v16i8", args)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != ir.Int(8, 32) {
		t.Errorf("result type = %v, want int8x32", v.Type)
	}
	if diff := cmp.Diff([]string{"llvm.sadd.sat.v16i8", "llvm.sadd.sat.v16i8"}, b.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	insns := b.Instructions()
	// Two slices and a call per half, then one concatenation.
	if len(insns) != 7 {
		t.Fatalf("got %d instructions:\n%s", len(insns), strings.Join(insns, "\n"))
	}
	if !strings.Contains(insns[3], "i32 16, i32 17") {
		t.Errorf("second half slice = %q", insns[3])
	}
	if !strings.HasPrefix(insns[6], "%6 = shufflevector <16 x i8> %2, <16 x i8> %5, <32 x i32>") {
		t.Errorf("concat = %q", insns[6])
	}
}

func TestCallIntrinsicPad(t *testing.T) {
	b := NewBuilder(nil)
	a := ir.NewVar("n", ir.Int(8, 8))
	v, err := b.CallIntrinsic(ir.Int(8, 8), 16, "llvm.sadd.sat.v16i8", []ir.Expr{a, a})
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != ir.Int(8, 8) {
		t.Errorf("result type = %v, want int8x8", v.Type)
	}
	insns := b.Instructions()
	if len(insns) != 4 {
		t.Fatalf("got %d instructions:\n%s", len(insns), strings.Join(insns, "\n"))
	}
	if !strings.Contains(insns[0], "i32 7, i32 undef") {
		t.Errorf("padding slice = %q", insns[0])
	}
	if !strings.Contains(insns[2], "call <16 x i8> @llvm.sadd.sat.v16i8") {
		t.Errorf("call = %q", insns[2])
	}
	if !strings.HasPrefix(insns[3], "%3 = shufflevector <16 x i8> %2, <16 x i8> undef, <8 x i32>") {
		t.Errorf("trim = %q", insns[3])
	}
}

func TestCallIntrinsicErrors(t *testing.T) {
	b := NewBuilder(nil)
	if _, err := b.CallIntrinsic(ir.Int(8, 16), 0, "llvm.x", nil); !errors.Is(err, ErrBadIntrinsic) {
		t.Errorf("zero lanes: err = %v", err)
	}
	if _, err := b.CallIntrinsic(ir.Int(8, 16), 16, "", nil); !errors.Is(err, ErrBadIntrinsic) {
		t.Errorf("empty name: err = %v", err)
	}
	wild := []ir.Expr{ir.NewWild("x", ir.Int(8, 16))}
	if _, err := b.CallIntrinsic(ir.Int(8, 16), 16, "llvm.x", wild); !errors.Is(err, ErrUnsupported) {
		t.Errorf("wildcard argument: err = %v", err)
	}
}

// addHook lowers every int16 addition to a fake intrinsic.
type addHook struct{ seen int }

func (h *addHook) Lower(b *Builder, e ir.Expr) (Value, bool, error) {
	h.seen++
	add, ok := e.(*ir.Binary)
	if !ok || add.Op != ir.OpAdd || add.Type().Bits != 16 {
		return Value{}, false, nil
	}
	v, err := b.CallIntrinsic(add.Type(), add.Type().Lanes, "test.add16", []ir.Expr{add.A, add.B})
	return v, true, err
}

func TestPeepholeHook(t *testing.T) {
	hook := &addHook{}
	b := NewBuilder(hook)
	if _, err := b.Codegen(ir.MustParseExpr("int32(int16(a) + int16(b)) + int32(a)", testVars)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"test.add16"}, b.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if hook.seen == 0 {
		t.Error("hook never consulted")
	}
	insns := b.Instructions()
	if last := insns[len(insns)-1]; !strings.HasPrefix(last, "%5 = add <16 x i32>") {
		t.Errorf("outer add lowered as %q", last)
	}
}

func TestFunction(t *testing.T) {
	b := NewBuilder(&addHook{})
	text, err := b.Function("f", ir.MustParseExpr("int16(a) + int16(b)", testVars))
	if err != nil {
		t.Fatal(err)
	}
	want := `declare <16 x i16> @test.add16(<16 x i16>, <16 x i16>)

define <16 x i16> @f(<16 x i8> %a, <16 x i8> %b) {
  %0 = sext <16 x i8> %a to <16 x i16>
  %1 = sext <16 x i8> %b to <16 x i16>
  %2 = call <16 x i16> @test.add16(<16 x i16> %0, <16 x i16> %1)
  ret <16 x i16> %2
}
`
	if diff := cmp.Diff(want, text); diff != "" {
		t.Errorf("Function mismatch (-want +got):\n%s", diff)
	}
}

func TestUpgradeTypeForArithmetic(t *testing.T) {
	tests := []struct {
		in, want ir.Type
	}{
		{ir.Float(16, 8), ir.Float(32, 8)},
		{ir.BFloat(16, 8), ir.Float(32, 8)},
		{ir.Float(64, 2), ir.Float(64, 2)},
		{ir.Int(16, 8), ir.Int(16, 8)},
		{ir.UInt(8), ir.UInt(8)},
	}
	for _, tt := range tests {
		if got := UpgradeTypeForArithmetic(tt.in); got != tt.want {
			t.Errorf("UpgradeTypeForArithmetic(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTypeNames(t *testing.T) {
	tests := []struct {
		t            ir.Type
		llvm, suffix string
	}{
		{ir.Int(8, 16), "<16 x i8>", "v16i8"},
		{ir.UInt(16, 8), "<8 x i16>", "v8i16"},
		{ir.Float(32, 4), "<4 x float>", "v4f32"},
		{ir.Float(64), "double", "f64"},
		{ir.Bool(16), "<16 x i1>", "v16i1"},
		{ir.BFloat(16, 8), "<8 x bfloat>", "v8f16"},
	}
	for _, tt := range tests {
		if got := LLVMType(tt.t); got != tt.llvm {
			t.Errorf("LLVMType(%v) = %q, want %q", tt.t, got, tt.llvm)
		}
		if got := VectorSuffix(tt.t); got != tt.suffix {
			t.Errorf("VectorSuffix(%v) = %q, want %q", tt.t, got, tt.suffix)
		}
	}
}
