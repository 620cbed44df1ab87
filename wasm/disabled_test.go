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

//go:build wasmsel_nowasm

package wasm

import (
	"errors"
	"testing"

	"github.com/ajroetker/go-wasmsel/target"
)

func TestBackendDisabled(t *testing.T) {
	b, err := New(target.Default())
	if !errors.Is(err, ErrBackendDisabled) {
		t.Fatalf("New() error = %v, want ErrBackendDisabled", err)
	}
	if b != nil {
		t.Error("New() returned a backend")
	}
}
