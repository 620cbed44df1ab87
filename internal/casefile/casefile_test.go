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

package casefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ajroetker/go-wasmsel/ir"
	"github.com/ajroetker/go-wasmsel/target"
)

const sample = `Saturating add on 16 lanes.
-- target --
wasm-32-wasmrt-wasm_simd128
-- toolchain --
13.0.0
-- vars --
# inputs
a b int8x16
c boolx16
-- exprs --
sat_int8(int16(a) + int16(b))

int8(int16(a) + int16(b))
-- want --
llvm.sadd.sat.v16i8(a, b)
none
`

func TestParse(t *testing.T) {
	c, err := Parse("sample", []byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	want := &Case{
		Name:      "sample",
		Comment:   "Saturating add on 16 lanes.",
		Target:    "wasm-32-wasmrt-wasm_simd128",
		Toolchain: "13.0.0",
		Vars:      map[string]ir.Type{"a": ir.Int(8, 16), "b": ir.Int(8, 16), "c": ir.Bool(16)},
		VarOrder:  []string{"a", "b", "c"},
		Exprs:     []string{"sat_int8(int16(a) + int16(b))", "int8(int16(a) + int16(b))"},
		Want:      []string{"llvm.sadd.sat.v16i8(a, b)", NoSelection},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}

	tgt, err := c.ParseTarget()
	if err != nil {
		t.Fatal(err)
	}
	if tgt != target.New(target.WebAssemblyRuntime, target.WebAssembly, 32, target.WasmSimd128) {
		t.Errorf("ParseTarget() = %s", tgt)
	}
	exprs, err := c.ParseExprs()
	if err != nil {
		t.Fatal(err)
	}
	if len(exprs) != 2 || exprs[0].Type() != ir.Int(8, 16) {
		t.Errorf("ParseExprs() = %v", exprs)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	c, err := Parse("sample", []byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse("sample", c.Format())
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, c.Format())
	}
	if diff := cmp.Diff(c, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	c.Want = nil
	c.Toolchain = ""
	again, err = Parse("sample", c.Format())
	if err != nil {
		t.Fatal(err)
	}
	if again.Want != nil || again.Toolchain != "" {
		t.Errorf("optional sections reappeared: %+v", again)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"no_target", "-- vars --\na int8x16\n-- exprs --\na\n", ErrMissingSection},
		{"no_exprs", "-- target --\nwasm-32-wasmrt\n-- vars --\na int8x16\n", ErrMissingSection},
		{"empty_exprs", "-- target --\nwasm-32-wasmrt\n-- vars --\na int8x16\n-- exprs --\n# none\n", ErrMalformed},
		{"two_targets", "-- target --\nwasm-32-wasmrt\nwasm-32-wasmrt\n-- vars --\na int8x16\n-- exprs --\na\n", ErrMalformed},
		{"bad_type", "-- target --\nwasm-32-wasmrt\n-- vars --\na int7x16\n-- exprs --\na\n", ErrMalformed},
		{"untyped_var", "-- target --\nwasm-32-wasmrt\n-- vars --\nint8x16\n-- exprs --\na\n", ErrMalformed},
		{"dup_var", "-- target --\nwasm-32-wasmrt\n-- vars --\na int8x16\na int16x8\n-- exprs --\na\n", ErrMalformed},
		{"want_count", "-- target --\nwasm-32-wasmrt\n-- vars --\na int8x16\n-- exprs --\na\n-- want --\nnone\nnone\n", ErrMalformed},
		{"dup_section", "-- target --\nwasm-32-wasmrt\n-- target --\nwasm-32-wasmrt\n-- vars --\na int8x16\n-- exprs --\na\n", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.name, []byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Parse error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sat_add.txtar")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "sat_add" {
		t.Errorf("Name = %q, want sat_add", c.Name)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txtar")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestBadExpr(t *testing.T) {
	c, err := Parse("bad", []byte("-- target --\nwasm-32-wasmrt\n-- vars --\na int8x16\n-- exprs --\na + z\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ParseExprs(); err == nil {
		t.Error("ParseExprs accepted an undefined variable")
	}
}
