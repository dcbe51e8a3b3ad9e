package hier

import (
	"fmt"
)

// LocalId numbers boxes owned by one rank
type LocalId int

// GlobalId identifies a box across ranks
type GlobalId struct {
	LocalId   LocalId
	OwnerRank int
}

func (g GlobalId) String() string {
	return fmt.Sprintf("%d:%d", g.OwnerRank, g.LocalId)
}

// Less orders GlobalIds by owner, then local id
func (g GlobalId) Less(o GlobalId) bool {
	if g.OwnerRank != o.OwnerRank {
		return g.OwnerRank < o.OwnerRank
	}
	return g.LocalId < o.LocalId
}

// PeriodicId indexes the periodic shift applied to a box image. Zero is the
// unshifted box.
type PeriodicId int

// BoxId is a GlobalId plus the periodic image it refers to
type BoxId struct {
	GlobalId
	PeriodicId PeriodicId
}

func (b BoxId) String() string {
	if b.PeriodicId == 0 {
		return b.GlobalId.String()
	}
	return fmt.Sprintf("%s+p%d", b.GlobalId, b.PeriodicId)
}

// Less orders BoxIds by GlobalId then PeriodicId
func (b BoxId) Less(o BoxId) bool {
	if b.GlobalId != o.GlobalId {
		return b.GlobalId.Less(o.GlobalId)
	}
	return b.PeriodicId < o.PeriodicId
}

// IsPeriodicImage reports whether the id refers to a shifted copy
func (b BoxId) IsPeriodicImage() bool {
	return b.PeriodicId != 0
}

// BlockId identifies a block of a multi-block mesh
type BlockId int

// BlockZero is the block of single-block meshes
const BlockZero BlockId = 0

// Box is an axis-aligned region of cell-centered index space. The region is
// empty when Upper[d] < Lower[d] in any direction d < Dim.
type Box struct {
	Dim   Dimension
	Lower IntVector
	Upper IntVector
	ID    BoxId
	Block BlockId
}

// NewBox returns an anonymous box in block zero
func NewBox(dim Dimension, lower, upper IntVector) Box {
	return Box{Dim: dim, Lower: lower, Upper: upper}
}

// EmptyBox returns a box of the given dimension with no cells
func EmptyBox(dim Dimension) Box {
	return Box{Dim: dim, Lower: Zero, Upper: Uniform(-1)}
}

// Empty reports whether the box has no cells
func (b Box) Empty() bool {
	for d := 0; d < int(b.Dim); d++ {
		if b.Upper[d] < b.Lower[d] {
			return true
		}
	}
	return false
}

// NumberCells returns the extent in each direction
func (b Box) NumberCells() IntVector {
	var n IntVector
	if b.Empty() {
		return n
	}
	for d := 0; d < int(b.Dim); d++ {
		n[d] = b.Upper[d] - b.Lower[d] + 1
	}
	return n
}

// Size returns the number of cells
func (b Box) Size() int {
	if b.Empty() {
		return 0
	}
	size := 1
	n := b.NumberCells()
	for d := 0; d < int(b.Dim); d++ {
		size *= n[d]
	}
	return size
}

// Contains reports whether the cell p lies in the box
func (b Box) Contains(p IntVector) bool {
	for d := 0; d < int(b.Dim); d++ {
		if p[d] < b.Lower[d] || p[d] > b.Upper[d] {
			return false
		}
	}
	return true
}

// ContainsBox reports whether every cell of o lies in b. An empty o is
// contained in every box.
func (b Box) ContainsBox(o Box) bool {
	if o.Empty() {
		return true
	}
	return b.Contains(o.Lower) && b.Contains(o.Upper)
}

// Intersect returns the common cells of b and o with b's identity
func (b Box) Intersect(o Box) Box {
	r := b
	for d := 0; d < int(b.Dim); d++ {
		if o.Lower[d] > r.Lower[d] {
			r.Lower[d] = o.Lower[d]
		}
		if o.Upper[d] < r.Upper[d] {
			r.Upper[d] = o.Upper[d]
		}
	}
	return r
}

// Intersects reports whether b and o share at least one cell
func (b Box) Intersects(o Box) bool {
	return !b.Intersect(o).Empty()
}

// Grow extends the box by g cells on both sides
func (b Box) Grow(g IntVector) Box {
	if b.Empty() {
		return b
	}
	r := b
	for d := 0; d < int(b.Dim); d++ {
		r.Lower[d] -= g[d]
		r.Upper[d] += g[d]
	}
	return r
}

// Shift translates the box by s
func (b Box) Shift(s IntVector) Box {
	r := b
	for d := 0; d < int(b.Dim); d++ {
		r.Lower[d] += s[d]
		r.Upper[d] += s[d]
	}
	return r
}

// Refine maps the box to a finer index space
func (b Box) Refine(ratio IntVector) Box {
	if b.Empty() {
		return b
	}
	r := b
	for d := 0; d < int(b.Dim); d++ {
		r.Lower[d] = b.Lower[d] * ratio[d]
		r.Upper[d] = (b.Upper[d]+1)*ratio[d] - 1
	}
	return r
}

// Coarsen maps the box to a coarser index space
func (b Box) Coarsen(ratio IntVector) Box {
	if b.Empty() {
		return b
	}
	r := b
	for d := 0; d < int(b.Dim); d++ {
		r.Lower[d] = floorDiv(b.Lower[d], ratio[d])
		r.Upper[d] = floorDiv(b.Upper[d], ratio[d])
	}
	return r
}

// IsSpatiallyEqual compares corners only, ignoring identity. Two empty boxes
// are spatially equal.
func (b Box) IsSpatiallyEqual(o Box) bool {
	if b.Empty() || o.Empty() {
		return b.Empty() && o.Empty()
	}
	for d := 0; d < int(b.Dim); d++ {
		if b.Lower[d] != o.Lower[d] || b.Upper[d] != o.Upper[d] {
			return false
		}
	}
	return true
}

// lessCorners orders boxes by block, then lower corner, then upper corner
func (b Box) lessCorners(o Box) bool {
	if b.Block != o.Block {
		return b.Block < o.Block
	}
	for d := 0; d < int(b.Dim); d++ {
		if b.Lower[d] != o.Lower[d] {
			return b.Lower[d] < o.Lower[d]
		}
	}
	for d := 0; d < int(b.Dim); d++ {
		if b.Upper[d] != o.Upper[d] {
			return b.Upper[d] < o.Upper[d]
		}
	}
	return false
}

func (b Box) String() string {
	return fmt.Sprintf("[%s,%s]", b.Lower.Format(b.Dim), b.Upper.Format(b.Dim))
}
