package pdat

import (
	"fmt"

	"github.com/notargets/amrgeom/hier"
	"github.com/notargets/amrgeom/tbox"
)

// Version is the persisted format version of cell and face data
const Version = 1

// CellData holds depth float64 values per cell of a patch box and its
// ghost cells
type CellData struct {
	box    hier.Box
	ghosts hier.IntVector
	time   float64
	array  *ArrayData
}

// NewCellData allocates zeroed cell data over box grown by ghosts
func NewCellData(box hier.Box, depth int, ghosts hier.IntVector) *CellData {
	return &CellData{
		box:    box,
		ghosts: ghosts,
		array:  NewArrayData(box.Grow(ghosts), depth),
	}
}

func (cd *CellData) Box() hier.Box                  { return cd.box }
func (cd *CellData) GhostBox() hier.Box             { return cd.array.Box() }
func (cd *CellData) GhostCellWidth() hier.IntVector { return cd.ghosts }
func (cd *CellData) Time() float64                  { return cd.time }
func (cd *CellData) SetTime(t float64)              { cd.time = t }
func (cd *CellData) Depth() int                     { return cd.array.Depth() }

// Array returns the storage over the ghost box
func (cd *CellData) Array() *ArrayData { return cd.array }

// Fill sets every value over where to v
func (cd *CellData) Fill(v float64, where hier.Box) { cd.array.Fill(v, where) }

// PutToDatabase writes the time, layout and values
func (cd *CellData) PutToDatabase(db tbox.Database) error {
	if err := putHeader(db, cd.time, cd.ghosts, cd.box.Dim, cd.Depth()); err != nil {
		return err
	}
	return db.PutDoubleArray("d_array", cd.array.Values())
}

// GetFromDatabase restores data written by PutToDatabase. The layout must
// match the data's own.
func (cd *CellData) GetFromDatabase(db tbox.Database) error {
	t, err := getHeader(db, cd.ghosts, cd.box.Dim, cd.Depth())
	if err != nil {
		return err
	}
	vals, err := db.GetDoubleArray("d_array")
	if err != nil {
		return err
	}
	if len(vals) != len(cd.array.Values()) {
		return fmt.Errorf("cell data has %d values, restart file has %d", len(cd.array.Values()), len(vals))
	}
	copy(cd.array.Values(), vals)
	cd.time = t
	return nil
}

func putHeader(db tbox.Database, time float64, ghosts hier.IntVector, dim hier.Dimension, depth int) error {
	if err := db.PutInteger("PDAT_VERSION", Version); err != nil {
		return err
	}
	if err := db.PutDouble("d_time", time); err != nil {
		return err
	}
	if err := db.PutIntegerArray("d_ghosts", ghosts[:dim]); err != nil {
		return err
	}
	return db.PutInteger("d_depth", depth)
}

func getHeader(db tbox.Database, ghosts hier.IntVector, dim hier.Dimension, depth int) (float64, error) {
	ver, err := db.GetInteger("PDAT_VERSION")
	if err != nil {
		return 0, err
	}
	if ver != Version {
		return 0, fmt.Errorf("%w: patch data version %d, expected %d", hier.ErrVersionMismatch, ver, Version)
	}
	g, err := db.GetIntegerArray("d_ghosts")
	if err != nil {
		return 0, err
	}
	if len(g) != int(dim) {
		return 0, fmt.Errorf("restart ghost width has %d components, data has dimension %d", len(g), dim)
	}
	for d := range g {
		if g[d] != ghosts[d] {
			return 0, fmt.Errorf("restart ghost width %v != %s", g, ghosts.Format(dim))
		}
	}
	dep, err := db.GetInteger("d_depth")
	if err != nil {
		return 0, err
	}
	if dep != depth {
		return 0, fmt.Errorf("restart depth %d != %d", dep, depth)
	}
	return db.GetDouble("d_time")
}
