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

// UndefLane marks a don't-care lane in a shuffle mask. It is distinct from
// every valid source-lane index.
const UndefLane = -1

// GapMask builds the keep flags that silence memory traffic for the slots a
// group does not fill. The mask has vf*factor entries; entry factor*lane+slot
// is true iff the group has a member at that slot.
//
// For example, a factor-3 group with only its first member present yields,
// for vf 4:
//
//	<1,0,0, 1,0,0, 1,0,0, 1,0,0>
//
// Unlike the other builders, which produce shuffle masks of lane indices,
// the result is a mask of keep flags.
func GapMask(vf int, g *Group) []bool {
	mask := make([]bool, 0, vf*g.Factor())
	for lane := 0; lane < vf; lane++ {
		for slot := 0; slot < g.Factor(); slot++ {
			mask = append(mask, g.Member(slot) != nil)
		}
	}
	return mask
}

// ReplicatedMask builds a shuffle mask replicating each of vf input lanes
// replicationFactor times, contiguously. It turns a mask of vf elements
// into one of vf*replicationFactor elements for a predicated interleaved
// group whose factor equals replicationFactor.
//
// For example, replicationFactor 3 and vf 4 yield:
//
//	<0,0,0,1,1,1,2,2,2,3,3,3>
func ReplicatedMask(replicationFactor, vf int) []int {
	mask := make([]int, 0, vf*replicationFactor)
	for i := 0; i < vf*replicationFactor; i++ {
		mask = append(mask, i/replicationFactor)
	}
	return mask
}

// InterleaveMask builds a shuffle mask interleaving numVecs vectors of vf
// lanes each into one wide vector, fanning the sources in element-wise.
//
// For example, vf 4 and numVecs 2 yield:
//
//	<0,4,1,5,2,6,3,7>
func InterleaveMask(vf, numVecs int) []int {
	mask := make([]int, 0, vf*numVecs)
	for lane := 0; lane < vf; lane++ {
		for v := 0; v < numVecs; v++ {
			mask = append(mask, v*vf+lane)
		}
	}
	return mask
}

// StrideMask builds a shuffle mask of vf lanes beginning at start and
// incremented by stride. It de-interleaves one member's lanes out of a wide
// interleaved vector.
//
// For example, start 0, stride 2 and vf 4 yield:
//
//	<0,2,4,6>
func StrideMask(start, stride, vf int) []int {
	mask := make([]int, 0, vf)
	for i := 0; i < vf; i++ {
		mask = append(mask, start+i*stride)
	}
	return mask
}

// SequentialMask builds a shuffle mask of numInts sequential lanes starting
// at start, padded with numUndefs UndefLane entries.
//
// For example, start 0, numInts 4 and numUndefs 4 yield:
//
//	<0,1,2,3,undef,undef,undef,undef>
func SequentialMask(start, numInts, numUndefs int) []int {
	mask := make([]int, 0, numInts+numUndefs)
	for i := 0; i < numInts; i++ {
		mask = append(mask, start+i)
	}
	for i := 0; i < numUndefs; i++ {
		mask = append(mask, UndefLane)
	}
	return mask
}

// DeinterleaveMasks builds the factor stride masks that split a wide
// interleaved vector of factor*vf lanes back into its members: mask i
// selects the lanes of slot i.
func DeinterleaveMasks(factor, vf int) [][]int {
	masks := make([][]int, factor)
	for i := range masks {
		masks[i] = StrideMask(i, factor, vf)
	}
	return masks
}
