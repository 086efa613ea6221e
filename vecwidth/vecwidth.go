// Copyright 2026 go-interleave Authors
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

// Package vecwidth selects a vectorization width from the host CPU's vector
// extensions. Consumers of the interleave analysis use it to pick the lane
// count they hand to the mask builders.
//
// Detection runs once at startup. Setting the GOINTERLEAVE_NO_SIMD
// environment variable forces the scalar baseline, useful for debugging
// widened code against a known-good narrow configuration.
package vecwidth

import (
	"os"
	"runtime"

	"golang.org/x/sys/cpu"
)

// NoSimdEnv is the environment variable that disables CPU feature
// detection and forces the 16-byte baseline.
const NoSimdEnv = "GOINTERLEAVE_NO_SIMD"

var (
	currentWidth int
	currentName  string
)

func init() {
	detect()
}

func detect() {
	if os.Getenv(NoSimdEnv) != "" {
		// 16-byte vectors even in scalar mode for consistency.
		currentWidth, currentName = 16, "scalar"
		return
	}

	switch runtime.GOARCH {
	case "amd64":
		switch {
		case cpu.X86.HasAVX512F:
			currentWidth, currentName = 64, "avx512"
		case cpu.X86.HasAVX2:
			currentWidth, currentName = 32, "avx2"
		default:
			// SSE2 is baseline for all amd64 CPUs.
			currentWidth, currentName = 16, "sse2"
		}
	case "arm64":
		// NEON baseline. SVE would allow wider registers, but 16 bytes is
		// the portable floor and what Go's arm64 ABI guarantees.
		currentWidth, currentName = 16, "neon"
	default:
		currentWidth, currentName = 16, "scalar"
	}
}

// Width returns the preferred vector register width in bytes.
func Width() int { return currentWidth }

// Name returns the name of the detected vector extension, e.g. "avx2".
func Name() string { return currentName }

// Lanes returns the vectorization width in lanes for elements of the given
// byte size: the number of elements one vector register holds, at least 1.
func Lanes(elemSize int) int {
	if elemSize <= 0 {
		panic("vecwidth: non-positive element size")
	}
	n := currentWidth / elemSize
	if n < 1 {
		return 1
	}
	return n
}

// GroupLanes returns the vectorization width to use for an interleave group
// of the given factor and element size, so that the widened access of
// factor*lanes elements still fits a whole number of vector registers.
func GroupLanes(factor, elemSize int) int {
	n := Lanes(elemSize) / factor
	if n < 1 {
		return 1
	}
	return n
}
