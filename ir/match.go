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

// Bindings maps wildcard names to the sub-expressions they matched, in the
// order the wildcards were first encountered in the template.
type Bindings struct {
	names []string
	exprs map[string]Expr
}

// Len returns the number of distinct wildcards bound.
func (b Bindings) Len() int { return len(b.names) }

// Get returns the expression bound to name.
func (b Bindings) Get(name string) (Expr, bool) {
	e, ok := b.exprs[name]
	return e, ok
}

// Names returns the bound wildcard names in template order.
func (b Bindings) Names() []string { return append([]string(nil), b.names...) }

// Exprs returns the bound expressions in template order.
func (b Bindings) Exprs() []Expr {
	out := make([]Expr, len(b.names))
	for i, n := range b.names {
		out[i] = b.exprs[n]
	}
	return out
}

func (b *Bindings) bind(name string, e Expr) bool {
	if prev, ok := b.exprs[name]; ok {
		return Equal(prev, e)
	}
	if b.exprs == nil {
		b.exprs = make(map[string]Expr)
	}
	b.names = append(b.names, name)
	b.exprs[name] = e
	return true
}

// Match unifies template against e. Internal nodes must agree in kind,
// operator and type (template types may use the Bits/Lanes wildcards);
// Wild leaves bind whatever sub-expression sits at their position.
//
// A mismatch is an ordinary outcome: Match returns false and an empty
// Bindings, and nothing bound before the failure point escapes.
func Match(template, e Expr) (Bindings, bool) {
	var b Bindings
	if !match(template, e, &b) {
		return Bindings{}, false
	}
	return b, true
}

func match(p, e Expr, b *Bindings) bool {
	switch p := p.(type) {
	case *Wild:
		return typesMatch(p.T, e.Type()) && b.bind(p.Name, e)
	case *Var:
		x, ok := e.(*Var)
		return ok && x.Name == p.Name && typesMatch(p.T, x.T)
	case *IntImm:
		x, ok := scalarConst(p.T, e).(*IntImm)
		return ok && x.Value == p.Value && typesMatch(p.T.Element(), x.T)
	case *UIntImm:
		x, ok := scalarConst(p.T, e).(*UIntImm)
		return ok && x.Value == p.Value && typesMatch(p.T.Element(), x.T)
	case *FloatImm:
		x, ok := scalarConst(p.T, e).(*FloatImm)
		return ok && x.Value == p.Value && typesMatch(p.T.Element(), x.T)
	case *Cast:
		x, ok := e.(*Cast)
		return ok && typesMatch(p.T, x.T) && match(p.Value, x.Value, b)
	case *Binary:
		x, ok := e.(*Binary)
		return ok && x.Op == p.Op && match(p.A, x.A, b) && match(p.B, x.B, b)
	case *Broadcast:
		x, ok := e.(*Broadcast)
		return ok && (p.Lanes == 0 || p.Lanes == x.Lanes) && match(p.Value, x.Value, b)
	case *Select:
		x, ok := e.(*Select)
		return ok && match(p.Cond, x.Cond, b) && match(p.True, x.True, b) && match(p.False, x.False, b)
	case *Call:
		x, ok := e.(*Call)
		if !ok || x.Name != p.Name || len(x.Args) != len(p.Args) || !typesMatch(p.T, x.T) {
			return false
		}
		for i := range p.Args {
			if !match(p.Args[i], x.Args[i], b) {
				return false
			}
		}
		return true
	}
	return false
}

// scalarConst lets a template immediate with a lane-wild or vector type
// accept a concrete Broadcast of a scalar immediate. For a scalar template
// type e is returned as-is.
func scalarConst(pt Type, e Expr) Expr {
	if bc, ok := e.(*Broadcast); ok && pt.Lanes != 1 {
		if pt.Lanes == 0 || pt.Lanes == bc.Lanes {
			return bc.Value
		}
		return nil
	}
	if pt.Lanes > 1 {
		return nil
	}
	return e
}
