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

// Package interleave groups the strided memory accesses of a loop body into
// interleave groups and builds the shuffle masks a vectorizing code generator
// needs to widen them.
//
// An interleave group collects accesses that hit regularly spaced slots of
// the same stride pattern. For example, with a stride-4 load loop
//
//	for i := 0; i < n; i += 4 {
//	    a := A[i]   // member of index 0
//	    b := A[i+1] // member of index 1
//	    d := A[i+3] // member of index 3
//	}
//
// the three loads form one group of factor 4 with a gap at index 2. Load
// groups may have gaps; store groups must be dense.
//
// # Analysis
//
// AccessInfo owns the groups of one loop body. Analyze consumes the loop's
// memory accesses in program order together with stride facts and a
// dependence oracle, attempts pairwise merges, and keeps only groups that
// are legal to reorder and profitable to widen:
//
//	info := interleave.NewAccessInfo(facts, deps)
//	info.Analyze(accesses, false)
//	for _, g := range info.Groups() {
//	    // widen g with masks built below
//	}
//
// The analysis is conservative: when the oracle has no dependence
// information, a potentially reordering merge is rejected rather than
// assumed safe.
//
// # Masks
//
// The mask builders are pure functions over (factor, width, layout):
//
//   - GapMask: keep flags silencing slots a group does not fill
//   - ReplicatedMask: each input lane repeated contiguously
//   - InterleaveMask: element-wise fan-in of several vectors
//   - StrideMask: strided lane selection, used to de-interleave
//   - SequentialMask: a sequential run padded with UndefLane
//
// All stride, size and distance arithmetic is supplied externally through
// the StrideFacts and DependenceOracle interfaces; no intermediate
// representation leaks into this package. See the llvmir subpackage for an
// adapter over real LLVM IR.
package interleave
