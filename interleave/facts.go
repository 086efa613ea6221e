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

// FactTable is a StrideFacts backed by explicitly registered facts. Callers
// that already ran their own stride analysis record, per access, a constant
// stride, an element size, and a byte offset within the iteration's access
// pattern; distances are derived from the offsets.
//
// The zero value is not usable; call NewFactTable.
type FactTable struct {
	strides map[Access]int64
	sizes   map[Access]uint64
	offsets map[Access]int64
}

// NewFactTable returns an empty fact table.
func NewFactTable() *FactTable {
	return &FactTable{
		strides: make(map[Access]int64),
		sizes:   make(map[Access]uint64),
		offsets: make(map[Access]int64),
	}
}

// SetStride records the constant stride of an access in units of its
// element size, negative for a reverse access.
func (t *FactTable) SetStride(a Access, stride int64) { t.strides[a] = stride }

// SetSize records the byte size of the memory object an access touches.
func (t *FactTable) SetSize(a Access, size uint64) { t.sizes[a] = size }

// SetOffset records the byte offset of an access's address within one
// iteration. Distances between two accesses are offset differences.
func (t *FactTable) SetOffset(a Access, offset int64) { t.offsets[a] = offset }

// TryConstantStride implements StrideFacts.
func (t *FactTable) TryConstantStride(a Access) (int64, bool) {
	s, ok := t.strides[a]
	return s, ok
}

// TryAccessSize implements StrideFacts.
func (t *FactTable) TryAccessSize(a Access) (uint64, bool) {
	s, ok := t.sizes[a]
	return s, ok
}

// Distance implements StrideFacts. It is known only when both accesses
// have a registered offset.
func (t *FactTable) Distance(a, b Access) (int64, bool) {
	offA, okA := t.offsets[a]
	offB, okB := t.offsets[b]
	if !okA || !okB {
		return 0, false
	}
	return offA - offB, true
}

// DependenceTable is a DependenceOracle over an explicit list of dependence
// edges. A nil table, like an invalid one, makes the analysis refuse all
// potentially reordering merges.
type DependenceTable struct {
	edges   map[Access]map[Access]bool
	invalid bool
}

// NewDependenceTable returns an empty, valid dependence table: it
// affirmatively knows of no dependences until edges are added.
func NewDependenceTable() *DependenceTable {
	return &DependenceTable{edges: make(map[Access]map[Access]bool)}
}

// Add records a memory dependence from src to sink.
func (t *DependenceTable) Add(src, sink Access) {
	sinks := t.edges[src]
	if sinks == nil {
		sinks = make(map[Access]bool)
		t.edges[src] = sinks
	}
	sinks[sink] = true
}

// SetInvalid marks the table's dependence information as unavailable, as
// when the dependence checker gave up on the loop.
func (t *DependenceTable) SetInvalid() { t.invalid = true }

// DependencesAreValid implements DependenceOracle.
func (t *DependenceTable) DependencesAreValid() bool { return !t.invalid }

// DependenceExists implements DependenceOracle.
func (t *DependenceTable) DependenceExists(src, sink Access) bool {
	return t.edges[src][sink]
}
