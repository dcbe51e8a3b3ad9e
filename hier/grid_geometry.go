package hier

import (
	"fmt"
)

// GridGeometry describes the physical domain in level-zero index space, one
// list of boxes per block, and which directions are periodic
type GridGeometry struct {
	dim      Dimension
	domain   []BoxContainer // [block] → domain boxes
	periodic [MaxDim]bool
}

// NewGridGeometry builds a geometry from domain boxes; each box's Block field
// selects its block. Periodic directions are only supported on single-block
// domains, where the period is the extent of the domain's bounding box.
func NewGridGeometry(dim Dimension, domain []Box, periodic [MaxDim]bool) (*GridGeometry, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("invalid dimension %d", dim)
	}
	if len(domain) == 0 {
		return nil, fmt.Errorf("physical domain has no boxes")
	}

	numBlocks := 0
	for _, b := range domain {
		if b.Block < 0 {
			return nil, fmt.Errorf("domain box %s has negative block %d", b, b.Block)
		}
		if int(b.Block)+1 > numBlocks {
			numBlocks = int(b.Block) + 1
		}
	}

	gg := &GridGeometry{
		dim:      dim,
		domain:   make([]BoxContainer, numBlocks),
		periodic: periodic,
	}
	for i, b := range domain {
		if b.Empty() {
			return nil, fmt.Errorf("domain box %d is empty", i)
		}
		b.Dim = dim
		b.ID = BoxId{GlobalId: GlobalId{LocalId: LocalId(i)}}
		for _, o := range gg.domain[b.Block] {
			if o.Intersects(b) {
				return nil, fmt.Errorf("domain boxes %s and %s overlap in block %d", o, b, b.Block)
			}
		}
		gg.domain[b.Block] = append(gg.domain[b.Block], b)
	}
	for blk, boxes := range gg.domain {
		if len(boxes) == 0 {
			return nil, fmt.Errorf("block %d has no domain boxes", blk)
		}
	}
	if gg.IsPeriodic() && numBlocks > 1 {
		return nil, fmt.Errorf("periodic directions require a single-block domain, got %d blocks", numBlocks)
	}
	return gg, nil
}

func (gg *GridGeometry) Dim() Dimension { return gg.dim }

// NumberBlocks returns the number of blocks of the domain
func (gg *GridGeometry) NumberBlocks() int { return len(gg.domain) }

// PhysicalDomain returns the level-zero domain boxes of a block
func (gg *GridGeometry) PhysicalDomain(block BlockId) BoxContainer {
	if block < 0 || int(block) >= len(gg.domain) {
		return nil
	}
	return gg.domain[block]
}

// IsPeriodicDirection reports whether direction d is periodic
func (gg *GridGeometry) IsPeriodicDirection(d int) bool {
	return d < int(gg.dim) && gg.periodic[d]
}

// IsPeriodic reports whether any direction is periodic
func (gg *GridGeometry) IsPeriodic() bool {
	for d := 0; d < int(gg.dim); d++ {
		if gg.periodic[d] {
			return true
		}
	}
	return false
}

// PeriodicShift returns the period in each direction in the index space
// refined by ratio from level zero; zero in non-periodic directions
func (gg *GridGeometry) PeriodicShift(ratio IntVector) IntVector {
	var shift IntVector
	if !gg.IsPeriodic() {
		return shift
	}
	bb := BoxContainer(gg.domain[0]).boundingBox(gg.dim)
	n := bb.NumberCells()
	for d := 0; d < int(gg.dim); d++ {
		if gg.periodic[d] {
			shift[d] = n[d] * ratio[d]
		}
	}
	return shift
}

// PeriodicShifts enumerates the shifts that map a box to its periodic images.
// Index 0 is the zero shift, so a shift's index is the PeriodicId of the
// images it produces.
func (gg *GridGeometry) PeriodicShifts(ratio IntVector) []IntVector {
	shifts := []IntVector{Zero}
	period := gg.PeriodicShift(ratio)
	if period.IsZero(gg.dim) {
		return shifts
	}

	n := 1
	for d := 0; d < int(gg.dim); d++ {
		n *= 3
	}
	for code := 0; code < n; code++ {
		var s IntVector
		valid := true
		c := code
		for d := 0; d < int(gg.dim); d++ {
			m := c%3 - 1
			c /= 3
			if m != 0 && period[d] == 0 {
				valid = false
				break
			}
			s[d] = m * period[d]
		}
		if valid && !s.IsZero(gg.dim) {
			shifts = append(shifts, s)
		}
	}
	return shifts
}

// DomainBoxLevel returns the physical domain refined by ratio as a BoxLevel
func (gg *GridGeometry) DomainBoxLevel(ratio IntVector) *BoxLevel {
	level := NewBoxLevel(gg.dim, ratio)
	for _, boxes := range gg.domain {
		for _, b := range boxes {
			// Domain ids are unique by construction
			if err := level.AddBox(b.Refine(ratio)); err != nil {
				panic(err)
			}
		}
	}
	return level
}

// extendedDomain returns the refined domain of a block together with its
// periodic images, clipped to region
func (gg *GridGeometry) extendedDomain(block BlockId, ratio IntVector, region Box) BoxContainer {
	var out BoxContainer
	for k, s := range gg.PeriodicShifts(ratio) {
		for _, b := range gg.domain[block] {
			img := b.Refine(ratio).Shift(s)
			img.ID.PeriodicId = PeriodicId(k)
			if x := img.Intersect(region); !x.Empty() {
				out = append(out, x)
			}
		}
	}
	return out.Unionize()
}

// ComputePatchGeometry builds the geometry of a box on a level refined by
// ratio. Physical boundary boxes cover the cells outside the domain that are
// not periodic images of it.
func (gg *GridGeometry) ComputePatchGeometry(box Box, ratio, ghost IntVector) (*PatchGeometry, error) {
	if box.Dim != gg.dim {
		return nil, fmt.Errorf("box %s has dimension %d, geometry has %d", box, box.Dim, gg.dim)
	}
	if box.Block < 0 || int(box.Block) >= len(gg.domain) {
		return nil, fmt.Errorf("box %s: block %d out of range", box.ID, box.Block)
	}

	grown := box.Grow(ghost.Max(One))
	inside := gg.extendedDomain(box.Block, ratio, grown)
	open := BoxContainer{grown}.RemoveAll(inside).RemoveIntersections(box)

	pg := &PatchGeometry{
		ratio:      ratio,
		boundaries: computeBoundaryBoxes(box, ghost, open),
	}

	var plain BoxContainer
	for _, b := range gg.domain[box.Block] {
		plain = append(plain, b.Refine(ratio))
	}
	for d := 0; d < int(gg.dim); d++ {
		for s := 0; s < 2; s++ {
			var loc location
			loc[d] = 2*s - 1
			face := slabBox(box, Zero, loc)
			outside := BoxContainer{face}.RemoveAll(plain)
			if len(outside) == 0 {
				continue
			}
			if gg.periodic[d] {
				pg.touchesPeriodic[d][s] = true
			} else {
				pg.touchesRegular[d][s] = true
			}
		}
	}
	return pg, nil
}

// boundingBox returns the smallest box covering every box in bc
func (bc BoxContainer) boundingBox(dim Dimension) Box {
	bb := EmptyBox(dim)
	for _, b := range bc {
		if b.Empty() {
			continue
		}
		if bb.Empty() {
			bb = b
			continue
		}
		for d := 0; d < int(dim); d++ {
			bb.Lower[d] = min(bb.Lower[d], b.Lower[d])
			bb.Upper[d] = max(bb.Upper[d], b.Upper[d])
		}
	}
	return bb
}
