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

// Package llvmir adapts LLVM IR loads and stores to the interleave
// analysis's Access interface.
//
// A Collector walks the basic blocks of a loop body in program order and
// wraps every load and store with its kind, element size and alignment.
// Strides, distances and dependences are still the caller's to supply
// (e.g. through an interleave.FactTable): this package performs no scalar
// evolution, it only bridges the instruction representation.
package llvmir

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/ajroetker/go-interleave/interleave"
)

// Access is one load or store instruction wrapped for the analysis. It
// implements interleave.Access.
type Access struct {
	inst       ir.Instruction
	name       string
	write      bool
	align      uint32
	elem       types.Type
	elemSize   uint64
	block      int
	predicated bool
}

// String implements interleave.Access.
func (a *Access) String() string { return a.name }

// ReadsMemory implements interleave.Access.
func (a *Access) ReadsMemory() bool { return !a.write }

// WritesMemory implements interleave.Access.
func (a *Access) WritesMemory() bool { return a.write }

// Alignment implements interleave.Access.
func (a *Access) Alignment() uint32 { return a.align }

// Block implements interleave.Access.
func (a *Access) Block() int { return a.block }

// Predicated implements interleave.Access.
func (a *Access) Predicated() bool { return a.predicated }

// Inst returns the wrapped instruction, a *ir.InstLoad or *ir.InstStore.
func (a *Access) Inst() ir.Instruction { return a.inst }

// ElemType returns the accessed element type.
func (a *Access) ElemType() types.Type { return a.elem }

// ElemSize returns the store size of the accessed element in bytes, as
// registered with the analysis's fact table.
func (a *Access) ElemSize() uint64 { return a.elemSize }

// Collector gathers the memory accesses of a loop body. Blocks must be
// added in reverse-postorder so the collected accesses come out in program
// order.
type Collector struct {
	accesses []*Access
	blocks   int
}

// NewCollector returns an empty collector.
func NewCollector() *Collector { return &Collector{} }

// AddBlock wraps the loads and stores of the block, marking each as
// conditionally executed if predicated is set. It fails if an accessed
// element type has no known store size.
func (c *Collector) AddBlock(b *ir.Block, predicated bool) error {
	block := c.blocks
	c.blocks++
	for _, inst := range b.Insts {
		switch inst := inst.(type) {
		case *ir.InstLoad:
			size, err := SizeOf(inst.ElemType)
			if err != nil {
				return fmt.Errorf("load in block %q: %w", b.Name(), err)
			}
			c.accesses = append(c.accesses, &Access{
				inst:       inst,
				name:       fmt.Sprintf("load.%d", len(c.accesses)),
				align:      alignOrABI(int64(inst.Align), size),
				elem:       inst.ElemType,
				elemSize:   size,
				block:      block,
				predicated: predicated,
			})
		case *ir.InstStore:
			elem := inst.Src.Type()
			size, err := SizeOf(elem)
			if err != nil {
				return fmt.Errorf("store in block %q: %w", b.Name(), err)
			}
			c.accesses = append(c.accesses, &Access{
				inst:       inst,
				name:       fmt.Sprintf("store.%d", len(c.accesses)),
				write:      true,
				align:      alignOrABI(int64(inst.Align), size),
				elem:       elem,
				elemSize:   size,
				block:      block,
				predicated: predicated,
			})
		}
	}
	return nil
}

// Accesses returns the collected accesses in program order, ready to hand
// to interleave.AccessInfo.Analyze.
func (c *Collector) Accesses() []interleave.Access {
	out := make([]interleave.Access, len(c.accesses))
	for i, a := range c.accesses {
		out[i] = a
	}
	return out
}

// alignOrABI resolves an instruction's alignment: an alignment of 0 means
// the ABI alignment of the element type, which for the types supported
// here equals the store size.
func alignOrABI(align int64, size uint64) uint32 {
	if align > 0 {
		return uint32(align)
	}
	return uint32(size)
}

// SizeOf returns the store size in bytes of a first-class type. It fails
// for types without a fixed size, such as scalable vectors or opaque
// structs.
func SizeOf(t types.Type) (uint64, error) {
	switch t := t.(type) {
	case *types.IntType:
		return (t.BitSize + 7) / 8, nil
	case *types.FloatType:
		switch t.Kind {
		case types.FloatKindHalf:
			return 2, nil
		case types.FloatKindFloat:
			return 4, nil
		case types.FloatKindDouble:
			return 8, nil
		default:
			return 16, nil
		}
	case *types.PointerType:
		return 8, nil
	case *types.VectorType:
		if t.Scalable {
			return 0, fmt.Errorf("scalable vector %v has no fixed size", t)
		}
		elem, err := SizeOf(t.ElemType)
		if err != nil {
			return 0, err
		}
		return elem * t.Len, nil
	case *types.ArrayType:
		elem, err := SizeOf(t.ElemType)
		if err != nil {
			return 0, err
		}
		return elem * t.Len, nil
	default:
		return 0, fmt.Errorf("unsupported element type %v", t)
	}
}
