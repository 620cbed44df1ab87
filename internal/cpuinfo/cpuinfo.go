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

// Package cpuinfo reports the CPU features detected by golang.org/x/sys/cpu.
package cpuinfo

import (
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sys/cpu"
)

// X86 holds the x86 features relevant to target selection.
type X86 struct {
	SSE2, SSE41, SSE42 bool
	AVX, AVX2, FMA     bool
	AVX512F            bool
	AVX512BW           bool
	AVX512VL           bool
	AVX512DQ           bool
	AVX512CD           bool
}

// ARM64 holds the arm64 features relevant to target selection.
type ARM64 struct {
	ASIMD    bool // NEON baseline
	FP       bool
	FPHP     bool // FP16 scalar, ARMv8.2-A
	ASIMDHP  bool // FP16 NEON, ARMv8.2-A
	ASIMDDP  bool // dot product
	ASIMDFHM bool // FP16 FMA, ARMv8.4-A
	SVE      bool
	SVE2     bool
}

// Info is a snapshot of the host.
type Info struct {
	GOOS   string
	GOARCH string
	NumCPU int
	X86    X86
	ARM64  ARM64
}

// Detect reads the host's CPU features.
func Detect() Info {
	info := Info{
		GOOS:   runtime.GOOS,
		GOARCH: runtime.GOARCH,
		NumCPU: runtime.NumCPU(),
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		info.X86 = X86{
			SSE2:     cpu.X86.HasSSE2,
			SSE41:    cpu.X86.HasSSE41,
			SSE42:    cpu.X86.HasSSE42,
			AVX:      cpu.X86.HasAVX,
			AVX2:     cpu.X86.HasAVX2,
			FMA:      cpu.X86.HasFMA,
			AVX512F:  cpu.X86.HasAVX512F,
			AVX512BW: cpu.X86.HasAVX512BW,
			AVX512VL: cpu.X86.HasAVX512VL,
			AVX512DQ: cpu.X86.HasAVX512DQ,
			AVX512CD: cpu.X86.HasAVX512CD,
		}
	case "arm64":
		info.ARM64 = ARM64{
			ASIMD:    cpu.ARM64.HasASIMD,
			FP:       cpu.ARM64.HasFP,
			FPHP:     cpu.ARM64.HasFPHP,
			ASIMDHP:  cpu.ARM64.HasASIMDHP,
			ASIMDDP:  cpu.ARM64.HasASIMDDP,
			ASIMDFHM: cpu.ARM64.HasASIMDFHM,
			SVE:      cpu.ARM64.HasSVE,
			SVE2:     cpu.ARM64.HasSVE2,
		}
	}
	return info
}

// Print writes a human readable report of info to w.
func (info Info) Print(w io.Writer) {
	fmt.Fprintf(w, "GOOS: %s\n", info.GOOS)
	fmt.Fprintf(w, "GOARCH: %s\n", info.GOARCH)
	fmt.Fprintf(w, "NumCPU: %d\n", info.NumCPU)

	switch info.GOARCH {
	case "arm64":
		a := info.ARM64
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== golang.org/x/sys/cpu.ARM64 ===")
		fmt.Fprintf(w, "  HasASIMD:    %v (NEON baseline)\n", a.ASIMD)
		fmt.Fprintf(w, "  HasFP:       %v (Floating point)\n", a.FP)
		fmt.Fprintf(w, "  HasFPHP:     %v (FP16 scalar, ARMv8.2-A)\n", a.FPHP)
		fmt.Fprintf(w, "  HasASIMDHP:  %v (FP16 NEON, ARMv8.2-A)\n", a.ASIMDHP)
		fmt.Fprintf(w, "  HasASIMDDP:  %v (Dot product)\n", a.ASIMDDP)
		fmt.Fprintf(w, "  HasASIMDFHM: %v (FP16 FMA, ARMv8.4-A)\n", a.ASIMDFHM)
		fmt.Fprintf(w, "  HasSVE:      %v (Scalable Vector Extension)\n", a.SVE)
		fmt.Fprintf(w, "  HasSVE2:     %v (SVE2)\n", a.SVE2)
	case "amd64", "386":
		x := info.X86
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== golang.org/x/sys/cpu.X86 ===")
		fmt.Fprintf(w, "  HasSSE2:     %v\n", x.SSE2)
		fmt.Fprintf(w, "  HasSSE41:    %v\n", x.SSE41)
		fmt.Fprintf(w, "  HasSSE42:    %v\n", x.SSE42)
		fmt.Fprintf(w, "  HasAVX:      %v\n", x.AVX)
		fmt.Fprintf(w, "  HasAVX2:     %v\n", x.AVX2)
		fmt.Fprintf(w, "  HasFMA:      %v\n", x.FMA)
		fmt.Fprintf(w, "  HasAVX512F:  %v\n", x.AVX512F)
		fmt.Fprintf(w, "  HasAVX512BW: %v\n", x.AVX512BW)
		fmt.Fprintf(w, "  HasAVX512VL: %v\n", x.AVX512VL)
		fmt.Fprintf(w, "  HasAVX512DQ: %v\n", x.AVX512DQ)
		fmt.Fprintf(w, "  HasAVX512CD: %v\n", x.AVX512CD)
	}
}
