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

package wasm

import (
	"os"
	"strconv"
)

const (
	// NoPeepholeEnvVar disables pattern selection when set to a true value.
	NoPeepholeEnvVar = "WASMSEL_NO_PEEPHOLE"
	// ToolchainEnvVar overrides the default LLVM toolchain version.
	ToolchainEnvVar = "WASMSEL_LLVM_VERSION"
)

// NoPeepholeEnv reports whether WASMSEL_NO_PEEPHOLE is set. Backends
// built while it is set always fall back to generic lowering, which is
// useful for comparing the peephole output against the plain expansion.
func NoPeepholeEnv() bool {
	val := os.Getenv(NoPeepholeEnvVar)
	if val == "" {
		return false
	}
	// Any non-empty value is considered true, but also parse as bool
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

func toolchainEnv() string {
	if v := os.Getenv(ToolchainEnvVar); v != "" {
		return v
	}
	return DefaultToolchainVersion
}
