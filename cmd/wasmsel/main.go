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

// Command wasmsel runs WebAssembly SIMD instruction selection on
// expressions and case files.
//
// Usage:
//
//	wasmsel select --var a,b=int8x16 'sat_int8(int16(a) + int16(b))'
//	wasmsel run [-j N] [--update | --watch] PATH...
//	wasmsel patterns [--selects]
//	wasmsel target [--host]
//
// The target defaults to $WASMSEL_TARGET, the LLVM version to
// $WASMSEL_LLVM_VERSION, and $WASMSEL_NO_PEEPHOLE disables selection.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
