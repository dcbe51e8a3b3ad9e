// Package pdat provides float64 patch data stored over cell-centered and
// face-centered index boxes.
package pdat

import (
	"fmt"

	"github.com/notargets/amrgeom/hier"
	"gonum.org/v1/gonum/floats"
)

// sizeOfDouble is the storage size in bytes of one value
const sizeOfDouble = 8

// ArrayData is a depth-component float64 array over a box. Components are
// stored one after another; within a component the first direction varies
// fastest.
type ArrayData struct {
	box   hier.Box
	depth int
	data  []float64
}

// NewArrayData allocates zeroed storage for box
func NewArrayData(box hier.Box, depth int) *ArrayData {
	if depth < 1 {
		panic(fmt.Errorf("array depth %d < 1", depth))
	}
	return &ArrayData{
		box:   box,
		depth: depth,
		data:  make([]float64, depth*box.Size()),
	}
}

func (a *ArrayData) Box() hier.Box { return a.box }
func (a *ArrayData) Depth() int    { return a.depth }

// Values returns the backing slice
func (a *ArrayData) Values() []float64 { return a.data }

func (a *ArrayData) offset(p hier.IntVector, c int) int {
	n := a.box.NumberCells()
	off := 0
	stride := 1
	for d := 0; d < int(a.box.Dim); d++ {
		off += (p[d] - a.box.Lower[d]) * stride
		stride *= n[d]
	}
	return c*a.box.Size() + off
}

// At returns component c at index p, which must lie in the box
func (a *ArrayData) At(p hier.IntVector, c int) float64 {
	return a.data[a.offset(p, c)]
}

// Set stores v as component c at index p
func (a *ArrayData) Set(p hier.IntVector, c int, v float64) {
	a.data[a.offset(p, c)] = v
}

// row returns the n contiguous values of component c starting at lo
func (a *ArrayData) row(lo hier.IntVector, n, c int) []float64 {
	off := a.offset(lo, c)
	return a.data[off : off+n]
}

// Fill sets every component over where ∩ box to v
func (a *ArrayData) Fill(v float64, where hier.Box) {
	forEachRow(a.box.Intersect(where), func(lo hier.IntVector, n int) {
		for c := 0; c < a.depth; c++ {
			r := a.row(lo, n, c)
			for i := range r {
				r[i] = v
			}
		}
	})
}

// LinearSum sets a = wOld*older + wNew*newer over where, clipped to all three
// boxes. The depths must match.
func (a *ArrayData) LinearSum(where hier.Box, wOld float64, older *ArrayData, wNew float64, newer *ArrayData) error {
	if older.depth != a.depth || newer.depth != a.depth {
		return fmt.Errorf("depth mismatch: dst %d, old %d, new %d", a.depth, older.depth, newer.depth)
	}
	region := where.Intersect(a.box).Intersect(older.box).Intersect(newer.box)
	forEachRow(region, func(lo hier.IntVector, n int) {
		for c := 0; c < a.depth; c++ {
			dst := a.row(lo, n, c)
			floats.ScaleTo(dst, wOld, older.row(lo, n, c))
			floats.AddScaled(dst, wNew, newer.row(lo, n, c))
		}
	})
	return nil
}

// CopyFrom copies src over where, clipped to both boxes
func (a *ArrayData) CopyFrom(src *ArrayData, where hier.Box) error {
	if src.depth != a.depth {
		return fmt.Errorf("depth mismatch: dst %d, src %d", a.depth, src.depth)
	}
	forEachRow(where.Intersect(a.box).Intersect(src.box), func(lo hier.IntVector, n int) {
		for c := 0; c < a.depth; c++ {
			copy(a.row(lo, n, c), src.row(lo, n, c))
		}
	})
	return nil
}

// forEachRow calls fn with the start and length of every row of box along
// the first direction
func forEachRow(box hier.Box, fn func(lo hier.IntVector, n int)) {
	if box.Empty() {
		return
	}
	n := box.NumberCells()[0]
	p := box.Lower
	for {
		fn(p, n)
		d := 1
		for ; d < int(box.Dim); d++ {
			p[d]++
			if p[d] <= box.Upper[d] {
				break
			}
			p[d] = box.Lower[d]
		}
		if d >= int(box.Dim) {
			return
		}
	}
}
