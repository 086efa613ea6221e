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

import "math"

// Group is an interleave group: loads or stores sharing the same stride and
// close to each other in memory.
//
// Each member has an index starting from 0, and the largest index is always
// less than the interleave factor, which equals the absolute value of the
// members' stride. Internally members are keyed by a signed offset from the
// founding member; smallestKey and largestKey normalize those keys so that
// Index(Member(i)) == i for every filled slot.
type Group struct {
	factor  int
	reverse bool
	align   uint32

	members     map[int32]Access
	smallestKey int32
	largestKey  int32

	// Vector code for the group must be anchored at either the first load
	// or the last store in program order, so generated code cannot cross a
	// dependence into or out of the group.
	insertPos Access
}

// newGroup creates a group seeded with its founding member. The factor is
// the absolute stride, which must have magnitude greater than one.
func newGroup(a Access, stride int64, align uint32) *Group {
	if align == 0 {
		panic("interleave: zero alignment for " + a.String())
	}
	factor := stride
	if factor < 0 {
		factor = -factor
	}
	if factor <= 1 {
		panic("interleave: invalid interleave factor")
	}
	return &Group{
		factor:    int(factor),
		reverse:   stride < 0,
		align:     align,
		members:   map[int32]Access{0: a},
		insertPos: a,
	}
}

// Factor returns the interleave factor, the number of slots in the group.
func (g *Group) Factor() int { return g.factor }

// IsReverse reports whether the members access memory with negative stride.
func (g *Group) IsReverse() bool { return g.reverse }

// Alignment returns the minimum alignment over all members, in bytes.
func (g *Group) Alignment() uint32 { return g.align }

// NumMembers returns the number of filled slots.
func (g *Group) NumMembers() int { return len(g.members) }

// InsertMember tries to add a member at the given index relative to the
// group's leader. The index may be negative if the new member becomes the
// leader. It reports false, without mutating the group, if the slot key
// would overflow a 32-bit signed integer, the slot is already occupied, or
// accepting the member would spread the keys across at least factor slots.
func (g *Group) InsertMember(a Access, index int32, align uint32) bool {
	if align == 0 {
		panic("interleave: zero alignment for " + a.String())
	}

	// Make sure the key fits in an int32.
	key, ok := checkedAdd32(index, g.smallestKey)
	if !ok {
		return false
	}

	// Skip if there is already a member with the same index.
	if _, taken := g.members[key]; taken {
		return false
	}

	switch {
	case key > g.largestKey:
		// The largest index is always less than the interleave factor.
		if index >= int32(g.factor) {
			return false
		}
		g.largestKey = key
	case key < g.smallestKey:
		largestIndex, ok := checkedSub32(g.largestKey, key)
		if !ok || largestIndex >= int32(g.factor) {
			return false
		}
		g.smallestKey = key
	}

	// It's always safe to select the minimum alignment.
	if align < g.align {
		g.align = align
	}
	g.members[key] = a
	return true
}

// Member returns the member at the given index, counted from 0, or nil if
// the slot is a gap.
func (g *Group) Member(index int) Access {
	return g.members[g.smallestKey+int32(index)]
}

// Index returns the index of the given member, counted from 0. Unlike the
// key in the member map, the index always starts at 0. The access must
// belong to the group; querying a non-member is an internal bug and panics.
func (g *Group) Index(a Access) int {
	for key, m := range g.members {
		if m == a {
			return int(key - g.smallestKey)
		}
	}
	panic("interleave: group contains no member " + a.String())
}

// InsertPos returns the access at which generated vector code for the group
// must be anchored: the first load or the last store in program order.
func (g *Group) InsertPos() Access { return g.insertPos }

func (g *Group) setInsertPos(a Access) { g.insertPos = a }

// RequiresScalarEpilogue reports whether widening the group needs a scalar
// loop iteration to avoid speculative out-of-bounds traffic. That is the
// case exactly when the slot at factor-1 is a gap.
//
// A retained group with a trailing gap is by construction a non-reversed
// group of loads; store and reversed groups with gaps are invalidated by
// the analysis. A violation here means the filtering is broken and panics.
func (g *Group) RequiresScalarEpilogue() bool {
	// If the last slot is filled, no scalar epilogue is needed.
	if g.Member(g.factor-1) != nil {
		return false
	}
	if g.Member(0).WritesMemory() {
		panic("interleave: store group with a trailing gap should have been invalidated")
	}
	if g.reverse {
		panic("interleave: reversed group with a trailing gap should have been invalidated")
	}
	return true
}

// checkedAdd32 adds two int32 values, reporting false on overflow.
func checkedAdd32(a, b int32) (int32, bool) {
	sum := int64(a) + int64(b)
	if sum < math.MinInt32 || sum > math.MaxInt32 {
		return 0, false
	}
	return int32(sum), true
}

// checkedSub32 subtracts b from a, reporting false on overflow.
func checkedSub32(a, b int32) (int32, bool) {
	diff := int64(a) - int64(b)
	if diff < math.MinInt32 || diff > math.MaxInt32 {
		return 0, false
	}
	return int32(diff), true
}
