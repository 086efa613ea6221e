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
	"slices"
)

// AccessInfo drives the analysis of interleaved memory accesses in one loop
// body and owns the resulting groups.
//
// Use it only when the loop is otherwise vectorizable; the grouping is
// meaningless without a downstream widening transform. A single AccessInfo
// must not be shared across concurrent analyses, and Reset must be called
// before re-analyzing a changed loop.
type AccessInfo struct {
	facts StrideFacts
	deps  DependenceOracle

	// groupMap holds the relationship between each member and its group.
	groupMap map[Access]*Group

	// groups holds the live groups in creation order.
	groups []*Group

	// True if the loop contains non-reversed interleaved load groups with
	// gaps: widened code would speculatively access memory out-of-bounds
	// unless at least one scalar epilogue iteration runs.
	requiresScalarEpilogue bool

	// dependences maps a source access to the sinks it is known to depend
	// on, collected once per analysis so legality queries are constant
	// time. Absence of an entry means the dependence is unknown.
	dependences    map[Access]map[Access]bool
	dependencesOK  bool
	depsCollected  bool
}

// NewAccessInfo returns an empty repository drawing stride facts and
// dependence answers from the given collaborators. deps may be nil, in
// which case every potentially reordering merge is rejected.
func NewAccessInfo(facts StrideFacts, deps DependenceOracle) *AccessInfo {
	return &AccessInfo{
		facts:    facts,
		deps:     deps,
		groupMap: make(map[Access]*Group),
	}
}

// IsInterleaved reports whether the access belongs to any group.
func (ai *AccessInfo) IsInterleaved(a Access) bool {
	_, ok := ai.groupMap[a]
	return ok
}

// GroupFor returns the group the access belongs to, or nil.
func (ai *AccessInfo) GroupFor(a Access) *Group { return ai.groupMap[a] }

// Groups returns the retained groups in creation order. The returned slice
// is owned by the repository and valid until the next Analyze or Reset.
func (ai *AccessInfo) Groups() []*Group { return ai.groups }

// RequiresScalarEpilogue reports whether any retained group needs a scalar
// epilogue iteration for correctness.
func (ai *AccessInfo) RequiresScalarEpilogue() bool {
	return ai.requiresScalarEpilogue
}

// Reset releases all groups and clears the access associations and the
// epilogue flag, e.g. when the loop changed and prior grouping no longer
// holds. The repository can then analyze the loop again from scratch.
func (ai *AccessInfo) Reset() {
	ai.groupMap = make(map[Access]*Group)
	ai.groups = nil
	ai.requiresScalarEpilogue = false
	ai.dependences = nil
	ai.dependencesOK = false
	ai.depsCollected = false
}

// createGroup starts a new group seeded with the given access.
func (ai *AccessInfo) createGroup(a Access, stride int64, align uint32) *Group {
	if _, ok := ai.groupMap[a]; ok {
		panic("interleave: " + a.String() + " is already in a group")
	}
	g := newGroup(a, stride, align)
	ai.groupMap[a] = g
	ai.groups = append(ai.groups, g)
	return g
}

// releaseGroup destroys a group and returns its members to ungrouped
// status.
func (ai *AccessInfo) releaseGroup(g *Group) {
	for i := 0; i < g.Factor(); i++ {
		if m := g.Member(i); m != nil {
			delete(ai.groupMap, m)
		}
	}
	if i := slices.Index(ai.groups, g); i >= 0 {
		ai.groups = slices.Delete(ai.groups, i, i+1)
	}
}

// collectDependences caches the oracle's answers for all ordered pairs so
// the legality check never repeats a query.
func (ai *AccessInfo) collectDependences(accesses []Access) {
	if ai.depsCollected {
		return
	}
	ai.depsCollected = true
	ai.dependencesOK = ai.deps != nil && ai.deps.DependencesAreValid()
	if !ai.dependencesOK {
		return
	}
	ai.dependences = make(map[Access]map[Access]bool)
	for i, src := range accesses {
		for _, sink := range accesses[i+1:] {
			if ai.deps.DependenceExists(src, sink) {
				sinks := ai.dependences[src]
				if sinks == nil {
					sinks = make(map[Access]bool)
					ai.dependences[src] = sinks
				}
				sinks[sink] = true
			}
		}
	}
}

// canReorder reports whether accesses a and b may be reordered, if
// necessary, while forming groups. a must precede b in program order.
//
// Grouping can hoist strided loads and sink strided stores, so it must not
// move a potential dependence sink above its source. Reordering is legal if
// a never writes, if neither access is strided (no motion happens), or if
// the dependence information affirmatively shows no dependence from a to b.
// Unknown dependence information is conservatively treated as a dependence.
func (ai *AccessInfo) canReorder(a, b Access, desA, desB *strideDescriptor) bool {
	// Reordering can't violate a dependence whose source never writes.
	if !a.WritesMemory() {
		return true
	}

	// At least one of the accesses must be strided for any motion to occur.
	if !isStrided(desA.stride) && !isStrided(desB.stride) {
		return true
	}

	// Without valid dependence information, conservatively assume the
	// accesses can't be reordered.
	if !ai.dependencesOK {
		return false
	}

	return !ai.dependences[a][b]
}

// Analyze partitions the loop's memory accesses, given in program order,
// into interleave groups. Conditionally executed accesses only participate
// when allowPredicated is set.
//
// Analyze runs a single ascending pass: each access B is tested against
// every earlier access A for a legal merge into A's group, walking
// backwards so a dependence that forbids reordering also stops B from
// joining any group anchored before it. Afterwards, groups that are too
// small, store groups with gaps, and reversed load groups with a trailing
// gap are discarded, and the scalar-epilogue flag is recomputed over what
// remains.
func (ai *AccessInfo) Analyze(accesses []Access, allowPredicated bool) {
	if len(accesses) == 0 {
		return
	}

	// Cache the external facts per access. Accesses with unknown or
	// unit strides are not group candidates but stay in the list: they
	// still constrain reordering.
	descs := make([]strideDescriptor, len(accesses))
	for i, a := range accesses {
		d := &descs[i]
		if stride, ok := ai.facts.TryConstantStride(a); ok {
			d.stride = stride
		}
		if size, ok := ai.facts.TryAccessSize(a); ok {
			d.size = size
		}
		d.align = a.Alignment()
	}

	ai.collectDependences(accesses)

	for i := 1; i < len(accesses); i++ {
		b := accesses[i]
		desB := &descs[i]

		for j := i - 1; j >= 0; j-- {
			a := accesses[j]
			desA := &descs[j]

			// A group must not grow past an access it can't be reordered
			// with: the widened code would be hoisted or sunk across a
			// dependence. If A conflicts with B and A already sits in a
			// group, that group is a store group (WAR sources are always
			// reorderable) whose members would be sunk below B, so the
			// group is released; A stays free to regroup with accesses
			// that precede it. Either way B can't join anything anchored
			// at or before A.
			if !ai.canReorder(a, b, desA, desB) {
				if g := ai.groupMap[a]; g != nil {
					ai.releaseGroup(g)
				}
				break
			}

			// Mixed load/store groups are not allowed, and B joins at
			// most one group.
			if ai.IsInterleaved(b) ||
				a.ReadsMemory() != b.ReadsMemory() ||
				a.WritesMemory() != b.WritesMemory() {
				continue
			}

			// Both accesses must follow the same stride pattern with the
			// same element size.
			if !isStrided(desA.stride) || desA.stride != desB.stride ||
				desA.size == 0 || desA.size != desB.size {
				continue
			}

			// All members of a predicated group must execute under the
			// same predicate, and predicated grouping must be enabled.
			if (a.Predicated() || b.Predicated()) &&
				(!allowPredicated || a.Block() != b.Block()) {
				continue
			}

			// B belongs in A's group only if its distance from A lands on
			// the stride lattice.
			dist, ok := ai.facts.Distance(b, a)
			if !ok || dist%int64(desA.size) != 0 {
				continue
			}

			group := ai.groupMap[a]
			if group == nil {
				group = ai.createGroup(a, desA.stride, desA.align)
			}

			// The index of B is the index of A plus B's distance to A in
			// multiples of the element size.
			index := int64(group.Index(a)) + dist/int64(desA.size)
			if index < math.MinInt32 || index > math.MaxInt32 {
				continue
			}
			if group.InsertMember(b, int32(index), desB.align) {
				ai.groupMap[b] = group

				// Members join in program order, so updating on every
				// store leaves the last store as the anchor. Load groups
				// stay anchored at their first load, the founder.
				if b.WritesMemory() {
					group.setInsertPos(b)
				}
			}
		}
	}

	ai.pruneInvalidGroups()
}

// pruneInvalidGroups discards groups the downstream transform cannot or
// should not widen and recomputes the repository-wide epilogue flag.
func (ai *AccessInfo) pruneInvalidGroups() {
	for _, g := range slices.Clone(ai.groups) {
		// A group of fewer than two accesses gains nothing from
		// interleaved widening.
		if g.NumMembers() < 2 {
			ai.releaseGroup(g)
			continue
		}
		full := g.NumMembers() == g.Factor()
		if full {
			continue
		}
		// Interleaved store groups don't allow gaps.
		if g.Member(0).WritesMemory() {
			ai.releaseGroup(g)
			continue
		}
		// A reversed load group with a trailing gap would speculatively
		// read below the accessed region; a scalar epilogue can't cover
		// that, so the group is invalid.
		if g.Member(g.Factor()-1) == nil && g.IsReverse() {
			ai.releaseGroup(g)
		}
	}

	ai.requiresScalarEpilogue = false
	for _, g := range ai.groups {
		if g.RequiresScalarEpilogue() {
			ai.requiresScalarEpilogue = true
		}
	}
}

// InvalidateGroupsRequiringScalarEpilogue releases all groups that need a
// scalar epilogue iteration. Use it when the optimization mode forbids a
// trailing scalar iteration (e.g. when optimizing for size) and the gaps
// cannot be filtered by masking. Panics if the epilogue flag was set but no
// group required one: that means the flag's bookkeeping is broken.
func (ai *AccessInfo) InvalidateGroupsRequiringScalarEpilogue() {
	if !ai.requiresScalarEpilogue {
		return
	}
	released := false
	for _, g := range slices.Clone(ai.groups) {
		if !g.RequiresScalarEpilogue() {
			continue
		}
		ai.releaseGroup(g)
		released = true
	}
	if !released {
		panic("interleave: scalar epilogue was required but no group was invalidated")
	}
	ai.requiresScalarEpilogue = false
}
