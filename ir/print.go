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
	"strconv"
	"strings"
)

// The printed form is the syntax accepted by ParseExpr, so that case files
// and diagnostics can be pasted back into the CLI.

func (e *Var) String() string { return e.Name }

func (e *IntImm) String() string {
	if e.T == Int(32) {
		return strconv.FormatInt(e.Value, 10)
	}
	return fmt.Sprintf("%s(%d)", e.T, e.Value)
}

func (e *UIntImm) String() string {
	if e.T.IsBool() && e.T.Lanes == 1 {
		return strconv.FormatBool(e.Value != 0)
	}
	return fmt.Sprintf("%s(%d)", e.T, e.Value)
}

func (e *FloatImm) String() string {
	return fmt.Sprintf("%s(%s)", e.T, strconv.FormatFloat(e.Value, 'g', -1, 64))
}

func (e *Cast) String() string {
	t := e.T
	if t.Lanes == e.Value.Type().Lanes {
		// Lane count is inherited from the operand when parsing.
		t = t.Element()
	}
	return fmt.Sprintf("%s(%s)", t, e.Value)
}

func (e *Binary) String() string {
	if e.Op == OpMin || e.Op == OpMax {
		return fmt.Sprintf("%s(%s, %s)", e.Op, e.A, e.B)
	}
	return fmt.Sprintf("(%s %s %s)", e.A, e.Op, e.B)
}

func (e *Broadcast) String() string {
	return fmt.Sprintf("broadcast(%s, %d)", e.Value, e.Lanes)
}

func (e *Select) String() string {
	return fmt.Sprintf("if_then_else(%s, %s, %s)", e.Cond, e.True, e.False)
}

func (e *Call) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}

func (e *Wild) String() string { return "?" + e.Name }
