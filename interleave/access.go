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

package interleave

// Access describes one memory instruction of a loop body. The analysis only
// reads it; it never owns or mutates the underlying instruction. Program
// order is the order of the slice handed to AccessInfo.Analyze.
type Access interface {
	// String identifies the access in diagnostics and panics.
	String() string

	// ReadsMemory reports whether the access may read from memory.
	ReadsMemory() bool

	// WritesMemory reports whether the access may write to memory.
	WritesMemory() bool

	// Alignment returns the access alignment in bytes. Must be non-zero.
	Alignment() uint32

	// Block returns an opaque identifier of the basic block containing the
	// access. Accesses in the same block execute under the same predicate.
	Block() int

	// Predicated reports whether the containing block is conditionally
	// executed within the loop.
	Predicated() bool
}

// StrideFacts supplies the scalar-evolution facts the analysis consumes. It
// stands in for the symbolic stride computation, which is an external
// collaborator: this package never derives strides or distances itself.
type StrideFacts interface {
	// TryConstantStride returns the constant stride of the access in units
	// of its element size, negative for a reverse access. The second result
	// is false if the stride is unknown or not constant.
	TryConstantStride(a Access) (int64, bool)

	// TryAccessSize returns the size in bytes of the accessed memory
	// object. The second result is false if the size is unknown.
	TryAccessSize(a Access) (uint64, bool)

	// Distance returns the constant byte offset of a's address relative to
	// b's address within one iteration, or false if it is not a known
	// constant.
	Distance(a, b Access) (int64, bool)
}

// DependenceOracle answers memory dependence queries for the loop body.
//
// DependenceExists may only be consulted after DependencesAreValid has
// reported true; calling it without valid dependence data is a programming
// error on the caller's side. The analysis treats an invalid oracle as
// "unknown" and conservatively refuses to reorder accesses.
type DependenceOracle interface {
	// DependencesAreValid reports whether dependence information was
	// successfully computed for the loop.
	DependencesAreValid() bool

	// DependenceExists reports whether a memory dependence from src to sink
	// is known, where src precedes sink in program order.
	DependenceExists(src, sink Access) bool
}

// MaxGroupFactor is the largest interleave factor the analysis will form a
// group for. Wider strides are treated as non-strided.
const MaxGroupFactor = 8

// isStrided reports whether a stride is allowed in an interleaved group.
// Unit and unknown (zero) strides do not qualify.
func isStrided(stride int64) bool {
	factor := stride
	if factor < 0 {
		factor = -factor
	}
	return factor > 1 && factor <= MaxGroupFactor
}

// strideDescriptor caches the external facts for one access during a single
// analysis run. A zero stride marks a non-candidate that still participates
// as a reordering barrier.
type strideDescriptor struct {
	stride int64
	size   uint64
	align  uint32
}
