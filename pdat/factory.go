package pdat

import (
	"github.com/notargets/amrgeom/hier"
)

// Kinds matched by the time interpolation operators
const (
	CellDoubleKind = "CellDouble"
	FaceDoubleKind = "FaceDouble"
)

// CellDataFactory allocates CellData of one depth and ghost width
type CellDataFactory struct {
	Depth  int
	Ghosts hier.IntVector
}

func NewCellDataFactory(depth int, ghosts hier.IntVector) *CellDataFactory {
	return &CellDataFactory{Depth: depth, Ghosts: ghosts}
}

func (f *CellDataFactory) Allocate(box hier.Box) hier.PatchData {
	return NewCellData(box, f.Depth, f.Ghosts)
}

// SizeOfMemory returns the bytes of the value storage for box
func (f *CellDataFactory) SizeOfMemory(box hier.Box) int {
	return sizeOfDouble * f.Depth * box.Grow(f.Ghosts).Size()
}

func (f *CellDataFactory) GhostCellWidth() hier.IntVector { return f.Ghosts }

// FaceDataFactory allocates FaceData of one depth and ghost width
type FaceDataFactory struct {
	Depth  int
	Ghosts hier.IntVector
}

func NewFaceDataFactory(depth int, ghosts hier.IntVector) *FaceDataFactory {
	return &FaceDataFactory{Depth: depth, Ghosts: ghosts}
}

func (f *FaceDataFactory) Allocate(box hier.Box) hier.PatchData {
	return NewFaceData(box, f.Depth, f.Ghosts)
}

// SizeOfMemory returns the bytes of the value storage for box, summed over
// face directions
func (f *FaceDataFactory) SizeOfMemory(box hier.Box) int {
	g := box.Grow(f.Ghosts)
	n := 0
	for d := 0; d < int(box.Dim); d++ {
		n += FaceBox(g, d).Size()
	}
	return sizeOfDouble * f.Depth * n
}

func (f *FaceDataFactory) GhostCellWidth() hier.IntVector { return f.Ghosts }

// NewCellVariable returns a variable stored as cell-centered doubles
func NewCellVariable(name string, depth int, ghosts hier.IntVector) *hier.Variable {
	return &hier.Variable{Name: name, Kind: CellDoubleKind, Factory: NewCellDataFactory(depth, ghosts)}
}

// NewFaceVariable returns a variable stored as face-centered doubles
func NewFaceVariable(name string, depth int, ghosts hier.IntVector) *hier.Variable {
	return &hier.Variable{Name: name, Kind: FaceDoubleKind, Factory: NewFaceDataFactory(depth, ghosts)}
}
