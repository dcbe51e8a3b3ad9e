package hier

import (
	"fmt"
	"io"
	"strings"

	"github.com/notargets/amrgeom/tbox"
	"github.com/sirupsen/logrus"
)

// PatchVersion is the persisted format version of a patch. Restart requires
// an exact match.
const PatchVersion = 3

// patchKeys are the keys of a persisted patch. Component names share the
// key space and may not use them.
var patchKeys = []string{
	"HIER_PATCH_VERSION",
	"d_global_id",
	"d_block_id",
	"d_box_lower",
	"d_box_upper",
	"d_patch_level_number",
	"d_patch_in_hierarchy",
	"patch_data_namelist",
}

// noCopy makes go vet's copylocks check reject copies of a Patch
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Patch holds the data components living on one box. It exclusively owns its
// allocated components and its geometry; the descriptor is shared with the
// other patches of the level. A Patch must not be copied.
type Patch struct {
	_ noCopy

	box        Box
	descriptor *PatchDescriptor
	geometry   *PatchGeometry

	data []PatchData // [component id] → data, nil when unallocated

	levelNumber int
	inHierarchy bool
}

// NewPatch creates a patch over box with no allocated components
func NewPatch(box Box, descriptor *PatchDescriptor) *Patch {
	return &Patch{
		box:         box,
		descriptor:  descriptor,
		data:        make([]PatchData, descriptor.MaxNumberRegisteredComponents()),
		levelNumber: -1,
	}
}

func (p *Patch) Box() Box                          { return p.box }
func (p *Patch) GlobalId() GlobalId                { return p.box.ID.GlobalId }
func (p *Patch) LocalId() LocalId                  { return p.box.ID.LocalId }
func (p *Patch) Dim() Dimension                    { return p.box.Dim }
func (p *Patch) PatchDescriptor() *PatchDescriptor { return p.descriptor }

// slot returns a pointer to the storage of component id, growing the table
// for components defined after the patch was created
func (p *Patch) slot(id int) (*PatchData, error) {
	if id < 0 || id >= p.descriptor.MaxNumberRegisteredComponents() {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownComponent, id)
	}
	for len(p.data) <= id {
		p.data = append(p.data, nil)
	}
	return &p.data[id], nil
}

// PatchData returns component id, or nil if it is not allocated
func (p *Patch) PatchData(id int) PatchData {
	if id < 0 || id >= len(p.data) {
		return nil
	}
	return p.data[id]
}

// PatchDataForVariable resolves (v, ctx) through the descriptor and returns
// that component, or nil
func (p *Patch) PatchDataForVariable(v *Variable, ctx *VariableContext) PatchData {
	id, ok := p.descriptor.MapVariableAndContextToIndex(v, ctx)
	if !ok {
		return nil
	}
	return p.PatchData(id)
}

// SetPatchData stores data as component id, replacing whatever was there.
//
// This is unsafe: no check is made that data has the type the descriptor's
// factory would create or that it is sized for this patch's box. The caller
// is responsible for both.
func (p *Patch) SetPatchData(id int, data PatchData) error {
	s, err := p.slot(id)
	if err != nil {
		return err
	}
	*s = data
	return nil
}

// CheckAllocated reports whether component id holds data
func (p *Patch) CheckAllocated(id int) bool {
	return p.PatchData(id) != nil
}

// SizeOfPatchData returns the bytes the factory of component id needs for
// this patch's box. Unknown ids have size zero.
func (p *Patch) SizeOfPatchData(id int) int {
	f, err := p.descriptor.PatchDataFactory(id)
	if err != nil {
		return 0
	}
	return f.SizeOfMemory(p.box)
}

// SizeOfPatchDataSelection sums SizeOfPatchData over the selected ids
func (p *Patch) SizeOfPatchDataSelection(sel *ComponentSelector) int {
	size := 0
	for _, id := range sel.Ids() {
		size += p.SizeOfPatchData(id)
	}
	return size
}

// AllocatePatchData creates component id sized for this patch and stamps it
// with time. Allocating an allocated component is an error; deallocate first.
func (p *Patch) AllocatePatchData(id int, time float64) error {
	s, err := p.slot(id)
	if err != nil {
		return err
	}
	if *s != nil {
		return fmt.Errorf("%w: %q on patch %s", ErrAlreadyAllocated, p.descriptor.MapIndexToName(id), p.GlobalId())
	}
	f, err := p.descriptor.PatchDataFactory(id)
	if err != nil {
		return err
	}
	d := f.Allocate(p.box)
	d.SetTime(time)
	*s = d
	return nil
}

// AllocatePatchDataSelection allocates every selected component. Nothing is
// allocated if any of them already is.
func (p *Patch) AllocatePatchDataSelection(sel *ComponentSelector, time float64) error {
	ids := sel.Ids()
	for _, id := range ids {
		if _, err := p.slot(id); err != nil {
			return err
		}
		if p.CheckAllocated(id) {
			return fmt.Errorf("%w: %q on patch %s", ErrAlreadyAllocated, p.descriptor.MapIndexToName(id), p.GlobalId())
		}
	}
	for _, id := range ids {
		if err := p.AllocatePatchData(id, time); err != nil {
			return err
		}
	}
	return nil
}

// DeallocatePatchData releases component id. It must be allocated again
// before its next use.
func (p *Patch) DeallocatePatchData(id int) {
	if id >= 0 && id < len(p.data) {
		p.data[id] = nil
	}
}

// DeallocatePatchDataSelection releases every selected component
func (p *Patch) DeallocatePatchDataSelection(sel *ComponentSelector) {
	for _, id := range sel.Ids() {
		p.DeallocatePatchData(id)
	}
}

// SetPatchGeometry hands geometry to the patch, dropping any previous one
func (p *Patch) SetPatchGeometry(geometry *PatchGeometry) {
	p.geometry = geometry
}

func (p *Patch) PatchGeometry() *PatchGeometry { return p.geometry }

// SetTime stamps component id, which must be allocated
func (p *Patch) SetTime(t float64, id int) error {
	d := p.PatchData(id)
	if d == nil {
		return fmt.Errorf("%w: id %d on patch %s", ErrNotAllocated, id, p.GlobalId())
	}
	d.SetTime(t)
	return nil
}

// SetTimeSelection stamps the selected components that are allocated
func (p *Patch) SetTimeSelection(t float64, sel *ComponentSelector) {
	for _, id := range sel.Ids() {
		if d := p.PatchData(id); d != nil {
			d.SetTime(t)
		}
	}
}

// SetTimeAll stamps every allocated component
func (p *Patch) SetTimeAll(t float64) {
	for _, d := range p.data {
		if d != nil {
			d.SetTime(t)
		}
	}
}

// PatchLevelNumber returns the hierarchy level of the patch, or -1 if it was
// never aligned to one
func (p *Patch) PatchLevelNumber() int       { return p.levelNumber }
func (p *Patch) SetPatchLevelNumber(n int)   { p.levelNumber = n }
func (p *Patch) InHierarchy() bool           { return p.inHierarchy }
func (p *Patch) SetPatchInHierarchy(in bool) { p.inHierarchy = in }

// PutToDatabase writes the format version, the patch identity and state, and
// every selected component that is allocated
func (p *Patch) PutToDatabase(db tbox.Database, sel *ComponentSelector) error {
	if db == nil {
		return ErrNilDatabase
	}
	if err := db.PutInteger("HIER_PATCH_VERSION", PatchVersion); err != nil {
		return err
	}
	if err := p.putIdentity(db); err != nil {
		return err
	}
	if err := db.PutInteger("d_patch_level_number", p.levelNumber); err != nil {
		return err
	}
	if err := db.PutBool("d_patch_in_hierarchy", p.inHierarchy); err != nil {
		return err
	}

	var names []string
	for _, id := range sel.Ids() {
		d := p.PatchData(id)
		if d == nil {
			continue
		}
		name := p.descriptor.MapIndexToName(id)
		sub, err := db.PutDatabase(name)
		if err != nil {
			return err
		}
		if err := d.PutToDatabase(sub); err != nil {
			return fmt.Errorf("patch %s component %q: %w", p.GlobalId(), name, err)
		}
		names = append(names, name)
	}
	return db.PutStringArray("patch_data_namelist", names)
}

func (p *Patch) putIdentity(db tbox.Database) error {
	id := p.GlobalId()
	if err := db.PutIntegerArray("d_global_id", []int{int(id.LocalId), id.OwnerRank}); err != nil {
		return err
	}
	if err := db.PutInteger("d_block_id", int(p.box.Block)); err != nil {
		return err
	}
	lo, hi := make([]int, p.box.Dim), make([]int, p.box.Dim)
	for d := range lo {
		lo[d], hi[d] = p.box.Lower[d], p.box.Upper[d]
	}
	if err := db.PutIntegerArray("d_box_lower", lo); err != nil {
		return err
	}
	return db.PutIntegerArray("d_box_upper", hi)
}

// GetFromDatabase restores patch state and the selected components written
// by PutToDatabase. Selected components missing from the restart namelist are
// logged and left unallocated.
func (p *Patch) GetFromDatabase(db tbox.Database, sel *ComponentSelector) error {
	if db == nil {
		return ErrNilDatabase
	}
	ver, err := db.GetInteger("HIER_PATCH_VERSION")
	if err != nil {
		return err
	}
	if ver != PatchVersion {
		return fmt.Errorf("%w: restart file has %d, expected %d", ErrVersionMismatch, ver, PatchVersion)
	}
	if err := p.checkIdentity(db); err != nil {
		return err
	}

	if p.levelNumber, err = db.GetInteger("d_patch_level_number"); err != nil {
		return err
	}
	if p.inHierarchy, err = db.GetBool("d_patch_in_hierarchy"); err != nil {
		return err
	}
	names, err := db.GetStringArray("patch_data_namelist")
	if err != nil {
		return err
	}
	written := make(map[string]bool, len(names))
	for _, name := range names {
		written[name] = true
	}

	for _, id := range sel.Ids() {
		name := p.descriptor.MapIndexToName(id)
		if name == "" {
			return fmt.Errorf("%w: id %d", ErrUnknownComponent, id)
		}
		s, err := p.slot(id)
		if err != nil {
			return err
		}
		if !written[name] {
			log.WithFields(logrus.Fields{
				"patch":     p.GlobalId().String(),
				"component": name,
			}).Warn("patch data not found in restart database; left unallocated")
			*s = nil
			continue
		}
		sub, err := db.GetDatabase(name)
		if err != nil {
			return fmt.Errorf("patch %s component %q: %w", p.GlobalId(), name, err)
		}
		f, err := p.descriptor.PatchDataFactory(id)
		if err != nil {
			return err
		}
		d := f.Allocate(p.box)
		if err := d.GetFromDatabase(sub); err != nil {
			return fmt.Errorf("patch %s component %q: %w", p.GlobalId(), name, err)
		}
		*s = d
	}
	return nil
}

// checkIdentity compares the persisted global id, block and box with the
// patch's own
func (p *Patch) checkIdentity(db tbox.Database) error {
	gid, err := db.GetIntegerArray("d_global_id")
	if err != nil {
		return err
	}
	block, err := db.GetInteger("d_block_id")
	if err != nil {
		return err
	}
	if len(gid) != 2 || LocalId(gid[0]) != p.LocalId() || gid[1] != p.GlobalId().OwnerRank || BlockId(block) != p.box.Block {
		return fmt.Errorf("%w: restart file has %v block %d, patch is %s block %d",
			ErrIdentityMismatch, gid, block, p.GlobalId(), p.box.Block)
	}

	lo, err := db.GetIntegerArray("d_box_lower")
	if err != nil {
		return err
	}
	hi, err := db.GetIntegerArray("d_box_upper")
	if err != nil {
		return err
	}
	if len(lo) != int(p.box.Dim) || len(hi) != int(p.box.Dim) {
		return fmt.Errorf("%w: restart box %v %v, patch box %s", ErrIdentityMismatch, lo, hi, p.box)
	}
	for d := range lo {
		if lo[d] != p.box.Lower[d] || hi[d] != p.box.Upper[d] {
			return fmt.Errorf("%w: restart box %v %v, patch box %s", ErrIdentityMismatch, lo, hi, p.box)
		}
	}
	return nil
}

// RecursivePrint writes the patch box, state and allocated components.
// depth is accepted for symmetry with containers but patches have no
// children.
func (p *Patch) RecursivePrint(w io.Writer, border string, depth int) error {
	_, err := fmt.Fprintf(w, "%sPatch %s box %s block %d level %d in hierarchy %t\n",
		border, p.GlobalId(), p.box, p.box.Block, p.levelNumber, p.inHierarchy)
	if err != nil {
		return err
	}
	for id, d := range p.data {
		if d == nil {
			continue
		}
		_, err := fmt.Fprintf(w, "%s  [%d] %s time %g\n", border, id, p.descriptor.MapIndexToName(id), d.Time())
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Patch) String() string {
	var sb strings.Builder
	_ = p.RecursivePrint(&sb, "", 0)
	return sb.String()
}
