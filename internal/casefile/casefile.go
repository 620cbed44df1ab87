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

// Package casefile reads and writes selection cases stored as txtar
// archives. A case names a target, declares typed variables and lists
// expressions with the intrinsic call each one is expected to select:
//
//	Optional free-form comment.
//	-- target --
//	wasm-32-wasmrt-wasm_simd128
//	-- toolchain --
//	13.0.0
//	-- vars --
//	a b int8x16
//	-- exprs --
//	sat_int8(int16(a) + int16(b))
//	int8(int16(a) + int16(b))
//	-- want --
//	llvm.sadd.sat.v16i8(a, b)
//	none
//
// The toolchain and want sections are optional. Blank lines and lines
// starting with '#' are ignored in every section.
package casefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"

	"github.com/ajroetker/go-wasmsel/ir"
	"github.com/ajroetker/go-wasmsel/target"
)

// NoSelection is the want line for an expression that must be lowered
// generically.
const NoSelection = "none"

var (
	// ErrMissingSection is returned when a required section is absent.
	ErrMissingSection = errors.New("casefile: missing section")
	// ErrMalformed is returned for sections that cannot be interpreted.
	ErrMalformed = errors.New("casefile: malformed case")
)

// Case is one parsed case file.
type Case struct {
	Name      string
	Comment   string
	Target    string
	Toolchain string
	// Vars maps variable names to types; VarOrder keeps the file order.
	Vars     map[string]ir.Type
	VarOrder []string
	Exprs    []string
	// Want is either empty or has one line per expression.
	Want []string
}

// Load reads the case file at path. The case is named after the file.
func Load(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(name, data)
}

// Parse parses the txtar archive data.
func Parse(name string, data []byte) (*Case, error) {
	ar := txtar.Parse(data)
	c := &Case{
		Name:    name,
		Comment: strings.TrimSpace(string(ar.Comment)),
		Vars:    make(map[string]ir.Type),
	}
	sections := make(map[string][]string)
	for _, f := range ar.Files {
		if _, dup := sections[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s: section %q repeated", ErrMalformed, name, f.Name)
		}
		sections[f.Name] = lines(f.Data)
	}
	for _, req := range []string{"target", "vars", "exprs"} {
		if _, ok := sections[req]; !ok {
			return nil, fmt.Errorf("%w: %s: %q", ErrMissingSection, name, req)
		}
	}

	tgt := sections["target"]
	if len(tgt) != 1 {
		return nil, fmt.Errorf("%w: %s: target section needs exactly one line", ErrMalformed, name)
	}
	c.Target = tgt[0]
	if tc := sections["toolchain"]; len(tc) > 0 {
		c.Toolchain = tc[0]
	}

	for _, line := range sections["vars"] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: %s: var line %q needs names and a type", ErrMalformed, name, line)
		}
		t, err := ir.ParseType(fields[len(fields)-1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
		}
		for _, v := range fields[:len(fields)-1] {
			if _, dup := c.Vars[v]; dup {
				return nil, fmt.Errorf("%w: %s: variable %q declared twice", ErrMalformed, name, v)
			}
			c.Vars[v] = t
			c.VarOrder = append(c.VarOrder, v)
		}
	}

	c.Exprs = sections["exprs"]
	if len(c.Exprs) == 0 {
		return nil, fmt.Errorf("%w: %s: no expressions", ErrMalformed, name)
	}
	c.Want = sections["want"]
	if len(c.Want) > 0 && len(c.Want) != len(c.Exprs) {
		return nil, fmt.Errorf("%w: %s: %d want lines for %d expressions", ErrMalformed, name, len(c.Want), len(c.Exprs))
	}
	return c, nil
}

func lines(data []byte) []string {
	var out []string
	for _, l := range strings.Split(string(data), "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ParseTarget parses the case's target string.
func (c *Case) ParseTarget() (target.Target, error) {
	t, err := target.Parse(c.Target)
	if err != nil {
		return target.Target{}, fmt.Errorf("%s: %w", c.Name, err)
	}
	return t, nil
}

// ParseExprs parses every expression of the case.
func (c *Case) ParseExprs() ([]ir.Expr, error) {
	out := make([]ir.Expr, len(c.Exprs))
	for i, src := range c.Exprs {
		e, err := ir.ParseExpr(src, c.Vars)
		if err != nil {
			return nil, fmt.Errorf("%s: expr %d: %w", c.Name, i+1, err)
		}
		out[i] = e
	}
	return out, nil
}

// Format returns c as a txtar archive that Parse reads back.
func (c *Case) Format() []byte {
	ar := &txtar.Archive{}
	if c.Comment != "" {
		ar.Comment = []byte(c.Comment + "\n")
	}
	section := func(name string, ls []string) {
		var buf bytes.Buffer
		for _, l := range ls {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
		ar.Files = append(ar.Files, txtar.File{Name: name, Data: buf.Bytes()})
	}
	section("target", []string{c.Target})
	if c.Toolchain != "" {
		section("toolchain", []string{c.Toolchain})
	}
	section("vars", c.varLines())
	section("exprs", c.Exprs)
	if len(c.Want) > 0 {
		section("want", c.Want)
	}
	return txtar.Format(ar)
}

// varLines groups consecutive variables of the same type onto one line.
func (c *Case) varLines() []string {
	var out []string
	var names []string
	var cur ir.Type
	flush := func() {
		if len(names) > 0 {
			out = append(out, strings.Join(names, " ")+" "+cur.String())
		}
		names = names[:0]
	}
	for _, v := range c.VarOrder {
		if t := c.Vars[v]; t != cur {
			flush()
			cur = t
		}
		names = append(names, v)
	}
	flush()
	return out
}
