package pdat

import (
	"fmt"

	"github.com/notargets/amrgeom/hier"
	"github.com/notargets/amrgeom/tbox"
)

// FaceData holds depth float64 values per face of a patch box and its ghost
// cells. Faces normal to direction d are indexed by the cell on their upper
// side, so the face box of direction d has one more index along d than the
// ghost box.
type FaceData struct {
	box    hier.Box
	ghosts hier.IntVector
	time   float64
	arrays [hier.MaxDim]*ArrayData
}

// FaceBox returns the face index box normal to direction d for cells box
func FaceBox(box hier.Box, d int) hier.Box {
	if box.Empty() {
		return box
	}
	f := box
	f.Upper[d]++
	return f
}

// NewFaceData allocates zeroed face data over box grown by ghosts
func NewFaceData(box hier.Box, depth int, ghosts hier.IntVector) *FaceData {
	fd := &FaceData{box: box, ghosts: ghosts}
	g := box.Grow(ghosts)
	for d := 0; d < int(box.Dim); d++ {
		fd.arrays[d] = NewArrayData(FaceBox(g, d), depth)
	}
	return fd
}

func (fd *FaceData) Box() hier.Box                  { return fd.box }
func (fd *FaceData) GhostBox() hier.Box             { return fd.box.Grow(fd.ghosts) }
func (fd *FaceData) GhostCellWidth() hier.IntVector { return fd.ghosts }
func (fd *FaceData) Time() float64                  { return fd.time }
func (fd *FaceData) SetTime(t float64)              { fd.time = t }
func (fd *FaceData) Depth() int                     { return fd.arrays[0].Depth() }

// Array returns the storage of faces normal to direction d
func (fd *FaceData) Array(d int) *ArrayData { return fd.arrays[d] }

// Fill sets every face value of the cells in where to v
func (fd *FaceData) Fill(v float64, where hier.Box) {
	for d := 0; d < int(fd.box.Dim); d++ {
		fd.arrays[d].Fill(v, FaceBox(where, d))
	}
}

// PutToDatabase writes the time, layout and one value array per direction
func (fd *FaceData) PutToDatabase(db tbox.Database) error {
	if err := putHeader(db, fd.time, fd.ghosts, fd.box.Dim, fd.Depth()); err != nil {
		return err
	}
	for d := 0; d < int(fd.box.Dim); d++ {
		if err := db.PutDoubleArray(fmt.Sprintf("d_array%d", d), fd.arrays[d].Values()); err != nil {
			return err
		}
	}
	return nil
}

// GetFromDatabase restores data written by PutToDatabase
func (fd *FaceData) GetFromDatabase(db tbox.Database) error {
	t, err := getHeader(db, fd.ghosts, fd.box.Dim, fd.Depth())
	if err != nil {
		return err
	}
	for d := 0; d < int(fd.box.Dim); d++ {
		key := fmt.Sprintf("d_array%d", d)
		vals, err := db.GetDoubleArray(key)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if len(vals) != len(fd.arrays[d].Values()) {
			return fmt.Errorf("face data direction %d has %d values, restart file has %d",
				d, len(fd.arrays[d].Values()), len(vals))
		}
		copy(fd.arrays[d].Values(), vals)
	}
	fd.time = t
	return nil
}
