package hier

import (
	"fmt"
)

// NodeType returns the boundary type of node pieces in dimension d: the
// pieces touching every direction at once.
func (d Dimension) NodeType() int { return int(d) }

// EdgeType returns the boundary type of edge pieces. Below one there are
// none.
func (d Dimension) EdgeType() int { return int(d) - 1 }

// FaceType returns the boundary type of face pieces. Below one there are
// none.
func (d Dimension) FaceType() int { return int(d) - 2 }

// BoundaryBox is one piece of a box boundary: a box one cell thick in every
// direction normal to the boundary, the location of the piece around the
// patch, and its codimension.
type BoundaryBox struct {
	Box           Box
	LocationIndex int
	BoundaryType  int
}

func (bb BoundaryBox) String() string {
	return fmt.Sprintf("type %d loc %d %s", bb.BoundaryType, bb.LocationIndex, bb.Box)
}

// PatchBoundaries holds the boundary boxes of one box, grouped by type
type PatchBoundaries struct {
	byType [MaxDim][]BoundaryBox
}

// Boxes returns the boundary boxes of the given type
func (pb *PatchBoundaries) Boxes(boundaryType int) []BoundaryBox {
	if boundaryType < 1 || boundaryType > MaxDim {
		return nil
	}
	return pb.byType[boundaryType-1]
}

func (pb *PatchBoundaries) add(bb BoundaryBox) {
	pb.byType[bb.BoundaryType-1] = append(pb.byType[bb.BoundaryType-1], bb)
}

// Len returns the number of boundary boxes of every type
func (pb *PatchBoundaries) Len() int {
	n := 0
	for _, boxes := range pb.byType {
		n += len(boxes)
	}
	return n
}

// Empty reports whether there are no boundary boxes
func (pb *PatchBoundaries) Empty() bool {
	return pb.Len() == 0
}

func (pb *PatchBoundaries) clone() *PatchBoundaries {
	out := &PatchBoundaries{}
	for i, boxes := range pb.byType {
		if boxes != nil {
			out.byType[i] = append([]BoundaryBox(nil), boxes...)
		}
	}
	return out
}

// location is a side vector around a box: -1 lower, 0 interior, +1 upper
type location [MaxDim]int

// codim counts the non-interior directions
func (l location) codim(dim Dimension) int {
	k := 0
	for d := 0; d < int(dim); d++ {
		if l[d] != 0 {
			k++
		}
	}
	return k
}

func side(s int) int {
	if s > 0 {
		return 1
	}
	return 0
}

// index numbers the location within its codimension. Faces are 2d+side,
// codimension-dim corners are the bit pattern of upper sides, and 3D edges
// are 4*tangent + side(n0) + 2*side(n1).
func (l location) index(dim Dimension) int {
	k := l.codim(dim)
	switch {
	case k == 1:
		for d := 0; d < int(dim); d++ {
			if l[d] != 0 {
				return 2*d + side(l[d])
			}
		}
	case k == int(dim):
		idx := 0
		for d := 0; d < int(dim); d++ {
			idx |= side(l[d]) << d
		}
		return idx
	default:
		// Only 3D edges remain
		tangent := 0
		var normals []int
		for d := 0; d < int(dim); d++ {
			if l[d] == 0 {
				tangent = d
			} else {
				normals = append(normals, d)
			}
		}
		return 4*tangent + side(l[normals[0]]) + 2*side(l[normals[1]])
	}
	return -1
}

// locations enumerates every non-interior side vector ordered by codimension
// then location index
func locations(dim Dimension) []location {
	n := 1
	for d := 0; d < int(dim); d++ {
		n *= 3
	}
	byCodim := make([][]location, int(dim)+1)
	for code := 0; code < n; code++ {
		var l location
		c := code
		for d := 0; d < int(dim); d++ {
			l[d] = c%3 - 1
			c /= 3
		}
		k := l.codim(dim)
		if k == 0 {
			continue
		}
		byCodim[k] = append(byCodim[k], l)
	}
	out := make([]location, 0, n-1)
	for k := 1; k <= int(dim); k++ {
		locs := byCodim[k]
		// Insertion sort on location index; at most 12 entries
		for i := 1; i < len(locs); i++ {
			for j := i; j > 0 && locs[j].index(dim) < locs[j-1].index(dim); j-- {
				locs[j], locs[j-1] = locs[j-1], locs[j]
			}
		}
		out = append(out, locs...)
	}
	return out
}
