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

import (
	"math"
	"testing"
)

// memOp is a minimal Access for tests.
type memOp struct {
	name       string
	write      bool
	align      uint32
	block      int
	predicated bool
}

func (m *memOp) String() string     { return m.name }
func (m *memOp) ReadsMemory() bool  { return !m.write }
func (m *memOp) WritesMemory() bool { return m.write }
func (m *memOp) Alignment() uint32  { return m.align }
func (m *memOp) Block() int         { return m.block }
func (m *memOp) Predicated() bool   { return m.predicated }

func load(name string) *memOp  { return &memOp{name: name, align: 4} }
func store(name string) *memOp { return &memOp{name: name, write: true, align: 4} }

func checkSpread(t *testing.T, g *Group) {
	t.Helper()
	if spread := g.largestKey - g.smallestKey; int(spread) >= g.Factor() {
		t.Fatalf("largestKey-smallestKey = %d, want < factor %d", spread, g.Factor())
	}
}

func TestInsertMember(t *testing.T) {
	leader := load("a0")
	g := newGroup(leader, 4, 8)
	if g.Factor() != 4 {
		t.Fatalf("Factor() = %d, want 4", g.Factor())
	}
	if g.IsReverse() {
		t.Fatal("IsReverse() = true for positive stride")
	}
	checkSpread(t, g)

	if !g.InsertMember(load("a1"), 1, 8) {
		t.Fatal("InsertMember(a1, 1) = false, want true")
	}
	checkSpread(t, g)

	// A new leader at a negative index.
	if !g.InsertMember(load("am1"), -1, 8) {
		t.Fatal("InsertMember(am1, -1) = false, want true")
	}
	checkSpread(t, g)

	// Occupied slot.
	if g.InsertMember(load("dup"), 1, 8) {
		t.Fatal("InsertMember(dup, 1) = true, want false for occupied slot")
	}

	// Spread of factor slots or more.
	if g.InsertMember(load("far"), 4, 8) {
		t.Fatal("InsertMember(far, 4) = true, want false for spread >= factor")
	}
	checkSpread(t, g)

	// Fill the remaining slot: keys now span -1..2.
	if !g.InsertMember(load("a3"), 3, 8) {
		t.Fatal("InsertMember(a3, 3) = false, want true")
	}
	if g.NumMembers() != 4 {
		t.Fatalf("NumMembers() = %d, want 4", g.NumMembers())
	}
	checkSpread(t, g)
}

func TestInsertMemberOverflow(t *testing.T) {
	g := newGroup(load("a0"), 4, 8)
	if !g.InsertMember(load("am1"), -1, 8) {
		t.Fatal("InsertMember(am1, -1) = false, want true")
	}

	// Key computation overflows int32: MinInt32 + (-1).
	if g.InsertMember(load("low"), math.MinInt32, 8) {
		t.Fatal("InsertMember overflowed int32 but reported success")
	}

	// Key fits but largestKey-key overflows int32.
	if g.InsertMember(load("low2"), math.MinInt32+1, 8) {
		t.Fatal("InsertMember accepted a key with an unrepresentable spread")
	}
	checkSpread(t, g)
}

func TestIndexRoundtrip(t *testing.T) {
	g := newGroup(load("a1"), 4, 8)
	g.InsertMember(load("a0"), -1, 8)
	g.InsertMember(load("a3"), 3, 8)

	for i := 0; i < g.Factor(); i++ {
		m := g.Member(i)
		if m == nil {
			continue
		}
		if got := g.Index(m); got != i {
			t.Errorf("Index(Member(%d)) = %d, want %d", i, got, i)
		}
	}
	if g.Member(2) != nil {
		t.Errorf("Member(2) = %v, want nil gap", g.Member(2))
	}
}

func TestIndexOfNonMemberPanics(t *testing.T) {
	g := newGroup(load("a0"), 2, 4)
	defer func() {
		if recover() == nil {
			t.Fatal("Index of a non-member did not panic")
		}
	}()
	g.Index(load("other"))
}

func TestAlignmentIsMinimum(t *testing.T) {
	g := newGroup(load("a0"), 2, 16)
	if g.Alignment() != 16 {
		t.Fatalf("Alignment() = %d, want 16", g.Alignment())
	}
	g.InsertMember(&memOp{name: "a1", align: 4}, 1, 4)
	if g.Alignment() != 4 {
		t.Errorf("Alignment() = %d, want 4 after lower-aligned member", g.Alignment())
	}
}

func TestRequiresScalarEpilogue(t *testing.T) {
	g := newGroup(load("a0"), 3, 4)
	g.InsertMember(load("a1"), 1, 4)
	if !g.RequiresScalarEpilogue() {
		t.Error("RequiresScalarEpilogue() = false with a trailing gap")
	}

	g.InsertMember(load("a2"), 2, 4)
	if g.RequiresScalarEpilogue() {
		t.Error("RequiresScalarEpilogue() = true for a full group")
	}
}

func TestRequiresScalarEpiloguePanicsOnStores(t *testing.T) {
	g := newGroup(store("s0"), 3, 4)
	g.InsertMember(store("s1"), 1, 4)
	defer func() {
		if recover() == nil {
			t.Fatal("store group with trailing gap did not panic")
		}
	}()
	g.RequiresScalarEpilogue()
}

func TestInsertPosTracksLastStore(t *testing.T) {
	first := store("s0")
	g := newGroup(first, 2, 4)
	if g.InsertPos() != first {
		t.Fatalf("InsertPos() = %v, want founding member", g.InsertPos())
	}
	last := store("s1")
	g.InsertMember(last, 1, 4)
	g.setInsertPos(last)
	if g.InsertPos() != last {
		t.Errorf("InsertPos() = %v, want %v", g.InsertPos(), last)
	}
}
