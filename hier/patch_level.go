package hier

import (
	"fmt"

	"github.com/notargets/amrgeom/tbox"
)

// PatchLevel is the set of patches over one BoxLevel. Each patch gets the
// level's descriptor and its own geometry.
type PatchLevel struct {
	levelNumber int
	boxLevel    *BoxLevel
	geometry    *GridGeometry
	descriptor  *PatchDescriptor

	patches []*Patch         // Ordered as boxLevel.Boxes()
	byId    map[GlobalId]int // GlobalId → position in patches
}

// NewPatchLevel creates one patch per box of boxLevel. Physical boundary
// boxes are computed with the descriptor's largest ghost width. The level is
// not part of a hierarchy until SetLevelNumber is called.
func NewPatchLevel(boxLevel *BoxLevel, geometry *GridGeometry, descriptor *PatchDescriptor) (*PatchLevel, error) {
	if boxLevel.Dim() != geometry.Dim() {
		return nil, fmt.Errorf("box level dimension %d != geometry dimension %d", boxLevel.Dim(), geometry.Dim())
	}
	pl := &PatchLevel{
		levelNumber: -1,
		boxLevel:    boxLevel,
		geometry:    geometry,
		descriptor:  descriptor,
		patches:     make([]*Patch, 0, boxLevel.Len()),
		byId:        make(map[GlobalId]int, boxLevel.Len()),
	}

	ghost := descriptor.MaxGhostWidth()
	for _, b := range boxLevel.Boxes() {
		pg, err := geometry.ComputePatchGeometry(b, boxLevel.RatioToLevelZero(), ghost)
		if err != nil {
			return nil, fmt.Errorf("patch %s: %w", b.ID, err)
		}
		p := NewPatch(b, descriptor)
		p.SetPatchGeometry(pg)
		pl.byId[b.ID.GlobalId] = len(pl.patches)
		pl.patches = append(pl.patches, p)
	}
	return pl, nil
}

func (pl *PatchLevel) LevelNumber() int { return pl.levelNumber }

// SetLevelNumber places the level in a hierarchy and tells every patch
func (pl *PatchLevel) SetLevelNumber(n int) {
	pl.levelNumber = n
	for _, p := range pl.patches {
		p.SetPatchLevelNumber(n)
		p.SetPatchInHierarchy(n >= 0)
	}
}

func (pl *PatchLevel) BoxLevel() *BoxLevel               { return pl.boxLevel }
func (pl *PatchLevel) GridGeometry() *GridGeometry       { return pl.geometry }
func (pl *PatchLevel) PatchDescriptor() *PatchDescriptor { return pl.descriptor }
func (pl *PatchLevel) Dim() Dimension                    { return pl.boxLevel.Dim() }
func (pl *PatchLevel) RatioToLevelZero() IntVector       { return pl.boxLevel.RatioToLevelZero() }

// NumberPatches returns the number of patches
func (pl *PatchLevel) NumberPatches() int { return len(pl.patches) }

// Patch returns the patch over box id
func (pl *PatchLevel) Patch(id GlobalId) (*Patch, error) {
	i, ok := pl.byId[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s on level %d", ErrUnknownBox, id, pl.levelNumber)
	}
	return pl.patches[i], nil
}

// Patches returns the patches ordered by box id. The slice must not be
// modified.
func (pl *PatchLevel) Patches() []*Patch { return pl.patches }

// AllocatePatchData allocates component id on every patch
func (pl *PatchLevel) AllocatePatchData(id int, time float64) error {
	for _, p := range pl.patches {
		if err := p.AllocatePatchData(id, time); err != nil {
			return err
		}
	}
	return nil
}

// AllocatePatchDataSelection allocates the selected components on every
// patch
func (pl *PatchLevel) AllocatePatchDataSelection(sel *ComponentSelector, time float64) error {
	for _, p := range pl.patches {
		if err := p.AllocatePatchDataSelection(sel, time); err != nil {
			return err
		}
	}
	return nil
}

// DeallocatePatchData releases component id on every patch
func (pl *PatchLevel) DeallocatePatchData(id int) {
	for _, p := range pl.patches {
		p.DeallocatePatchData(id)
	}
}

// SetTime stamps the selected components on every patch
func (pl *PatchLevel) SetTime(t float64, sel *ComponentSelector) {
	for _, p := range pl.patches {
		p.SetTimeSelection(t, sel)
	}
}

// patchKey names the sub-database of a patch in a level database
func patchKey(id GlobalId) string {
	return fmt.Sprintf("patch_%d_%d", id.LocalId, id.OwnerRank)
}

// PutToDatabase writes the level number and every patch with the selected
// components
func (pl *PatchLevel) PutToDatabase(db tbox.Database, sel *ComponentSelector) error {
	if db == nil {
		return ErrNilDatabase
	}
	if err := db.PutInteger("d_level_number", pl.levelNumber); err != nil {
		return err
	}
	if err := db.PutInteger("d_number_patches", len(pl.patches)); err != nil {
		return err
	}
	for _, p := range pl.patches {
		sub, err := db.PutDatabase(patchKey(p.GlobalId()))
		if err != nil {
			return err
		}
		if err := p.PutToDatabase(sub, sel); err != nil {
			return fmt.Errorf("level %d: %w", pl.levelNumber, err)
		}
	}
	return nil
}

// GetFromDatabase restores every patch of the level from db. The level
// must have been rebuilt over the same boxes.
func (pl *PatchLevel) GetFromDatabase(db tbox.Database, sel *ComponentSelector) error {
	if db == nil {
		return ErrNilDatabase
	}
	n, err := db.GetInteger("d_number_patches")
	if err != nil {
		return err
	}
	if n != len(pl.patches) {
		return fmt.Errorf("%w: restart level has %d patches, level has %d", ErrIdentityMismatch, n, len(pl.patches))
	}
	for _, p := range pl.patches {
		sub, err := db.GetDatabase(patchKey(p.GlobalId()))
		if err != nil {
			return fmt.Errorf("patch %s: %w", p.GlobalId(), err)
		}
		if err := p.GetFromDatabase(sub, sel); err != nil {
			return err
		}
	}
	return nil
}
