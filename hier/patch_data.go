package hier

import (
	"github.com/notargets/amrgeom/tbox"
)

// PatchData is one component of field data living on a patch. Concrete
// storage is provided by the pdat package.
type PatchData interface {
	// Box returns the patch box the data was allocated for
	Box() Box
	// GhostBox returns the box grown by the ghost cell width
	GhostBox() Box
	GhostCellWidth() IntVector

	Time() float64
	SetTime(t float64)

	// GetFromDatabase restores the data written by PutToDatabase
	GetFromDatabase(db tbox.Database) error
	PutToDatabase(db tbox.Database) error
}

// PatchDataFactory creates PatchData of one kind, sized for a box
type PatchDataFactory interface {
	Allocate(box Box) PatchData
	// SizeOfMemory returns the bytes Allocate would use for box
	SizeOfMemory(box Box) int
	GhostCellWidth() IntVector
}

// Variable names a field and the kind of data that stores it. Kind is matched
// by time interpolation operators.
type Variable struct {
	Name    string
	Kind    string
	Factory PatchDataFactory
}

// VariableContext distinguishes several instances of the same variable, such
// as "CURRENT" and "NEW"
type VariableContext struct {
	Name string
}
