package hier

import (
	"sort"
)

// BoxContainer is a list of boxes used for index-space set algebra. The set
// operations below keep the boxes pairwise disjoint when their inputs are.
type BoxContainer []Box

// TotalSize returns the summed cell count of the boxes
func (bc BoxContainer) TotalSize() int {
	n := 0
	for _, b := range bc {
		n += b.Size()
	}
	return n
}

// Contains reports whether any box holds cell p
func (bc BoxContainer) Contains(p IntVector) bool {
	for _, b := range bc {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

// removeIntersections returns the pieces of b not covered by takeaway.
// At most 2*Dim disjoint pieces are produced.
func removeIntersections(b, takeaway Box) []Box {
	overlap := b.Intersect(takeaway)
	if overlap.Empty() {
		return []Box{b}
	}
	pieces := make([]Box, 0, 2*int(b.Dim))
	rest := b
	for d := 0; d < int(b.Dim); d++ {
		// Slab below the overlap
		if rest.Lower[d] < overlap.Lower[d] {
			lo := rest
			lo.Upper[d] = overlap.Lower[d] - 1
			pieces = append(pieces, lo)
			rest.Lower[d] = overlap.Lower[d]
		}
		// Slab above the overlap
		if rest.Upper[d] > overlap.Upper[d] {
			hi := rest
			hi.Lower[d] = overlap.Upper[d] + 1
			pieces = append(pieces, hi)
			rest.Upper[d] = overlap.Upper[d]
		}
	}
	return pieces
}

// RemoveIntersections returns the cells of bc not in takeaway
func (bc BoxContainer) RemoveIntersections(takeaway Box) BoxContainer {
	if takeaway.Empty() {
		return bc
	}
	out := make(BoxContainer, 0, len(bc))
	for _, b := range bc {
		out = append(out, removeIntersections(b, takeaway)...)
	}
	return out
}

// RemoveAll returns the cells of bc not in any box of takeaway
func (bc BoxContainer) RemoveAll(takeaway BoxContainer) BoxContainer {
	out := bc
	for _, t := range takeaway {
		if len(out) == 0 {
			break
		}
		out = out.RemoveIntersections(t)
	}
	return out
}

// IntersectBox returns the cells of bc inside b
func (bc BoxContainer) IntersectBox(b Box) BoxContainer {
	out := make(BoxContainer, 0, len(bc))
	for _, c := range bc {
		if x := c.Intersect(b); !x.Empty() {
			out = append(out, x)
		}
	}
	return out
}

// IntersectAll returns the cells of bc inside any box of other. other must
// be pairwise disjoint for the result to be.
func (bc BoxContainer) IntersectAll(other BoxContainer) BoxContainer {
	out := make(BoxContainer, 0, len(bc))
	for _, c := range bc {
		for _, o := range other {
			if x := c.Intersect(o); !x.Empty() {
				out = append(out, x)
			}
		}
	}
	return out
}

// Unionize returns a disjoint cover of the union of bc. Boxes are added in
// order, each trimmed by those already present.
func (bc BoxContainer) Unionize() BoxContainer {
	out := make(BoxContainer, 0, len(bc))
	for _, b := range bc {
		if b.Empty() {
			continue
		}
		out = append(out, BoxContainer{b}.RemoveAll(out)...)
	}
	return out
}

// canMerge reports whether a and b differ in exactly one direction where
// they abut, so their union is a box.
func canMerge(a, b Box) (int, bool) {
	dir := -1
	for d := 0; d < int(a.Dim); d++ {
		if a.Lower[d] == b.Lower[d] && a.Upper[d] == b.Upper[d] {
			continue
		}
		if dir >= 0 {
			return -1, false
		}
		if a.Upper[d]+1 != b.Lower[d] && b.Upper[d]+1 != a.Lower[d] {
			return -1, false
		}
		dir = d
	}
	return dir, dir >= 0
}

// Coalesce merges boxes whose union is a box until no pair can be merged
func (bc BoxContainer) Coalesce() BoxContainer {
	out := make(BoxContainer, 0, len(bc))
	for _, b := range bc {
		if !b.Empty() {
			out = append(out, b)
		}
	}
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(out) && !merged; i++ {
			for j := i + 1; j < len(out); j++ {
				if out[i].Block != out[j].Block {
					continue
				}
				d, ok := canMerge(out[i], out[j])
				if !ok {
					continue
				}
				if out[j].Lower[d] < out[i].Lower[d] {
					out[i].Lower[d] = out[j].Lower[d]
				}
				if out[j].Upper[d] > out[i].Upper[d] {
					out[i].Upper[d] = out[j].Upper[d]
				}
				out = append(out[:j], out[j+1:]...)
				merged = true
				break
			}
		}
	}
	return out
}

// Sort orders the boxes by block and corners, in place
func (bc BoxContainer) Sort() {
	sort.SliceStable(bc, func(i, j int) bool {
		return bc[i].lessCorners(bc[j])
	})
}
