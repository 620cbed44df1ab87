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

package cpuinfo

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	info := Detect()
	if info.GOOS != runtime.GOOS || info.GOARCH != runtime.GOARCH {
		t.Errorf("Detect() = %s/%s, want %s/%s", info.GOOS, info.GOARCH, runtime.GOOS, runtime.GOARCH)
	}
	if info.NumCPU < 1 {
		t.Errorf("NumCPU = %d", info.NumCPU)
	}
	if runtime.GOARCH == "amd64" && !info.X86.SSE2 {
		t.Error("amd64 host without SSE2")
	}
	if runtime.GOARCH == "arm64" && !info.ARM64.ASIMD {
		t.Error("arm64 host without ASIMD")
	}
}

func TestPrint(t *testing.T) {
	info := Info{GOOS: "linux", GOARCH: "amd64", NumCPU: 8, X86: X86{SSE2: true, AVX2: true, AVX512CD: true}}
	var buf bytes.Buffer
	info.Print(&buf)
	out := buf.String()
	for _, want := range []string{"GOARCH: amd64", "NumCPU: 8", "cpu.X86", "HasAVX2:     true", "HasAVX512F:  false", "HasAVX512CD: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ARM64") {
		t.Error("x86 report mentions ARM64")
	}
}
