package hier

import (
	"fmt"
	"sort"
)

// BoxLevel is the set of boxes making up one refinement level's
// decomposition of index space
type BoxLevel struct {
	dim   Dimension
	ratio IntVector // Refinement ratio to level zero

	boxes []Box             // Sorted by BoxId
	index map[GlobalId]int  // GlobalId → position in boxes
	owned map[int][]LocalId // Owner rank → its local ids
}

// NewBoxLevel creates an empty level in the index space refined by ratio
// from level zero
func NewBoxLevel(dim Dimension, ratio IntVector) *BoxLevel {
	return &BoxLevel{
		dim:   dim,
		ratio: ratio,
		index: make(map[GlobalId]int),
		owned: make(map[int][]LocalId),
	}
}

// AddBox inserts a box. The box's GlobalId must be unique in the level and
// the box must not be a periodic image.
func (bl *BoxLevel) AddBox(b Box) error {
	if b.Dim != bl.dim {
		return fmt.Errorf("box %s has dimension %d, level has %d", b, b.Dim, bl.dim)
	}
	if b.ID.IsPeriodicImage() {
		return fmt.Errorf("box %s: periodic images cannot be level members", b.ID)
	}
	if _, found := bl.index[b.ID.GlobalId]; found {
		return fmt.Errorf("duplicate box id %s", b.ID.GlobalId)
	}

	pos := sort.Search(len(bl.boxes), func(i int) bool {
		return !bl.boxes[i].ID.Less(b.ID)
	})
	bl.boxes = append(bl.boxes, Box{})
	copy(bl.boxes[pos+1:], bl.boxes[pos:])
	bl.boxes[pos] = b
	for i := pos; i < len(bl.boxes); i++ {
		bl.index[bl.boxes[i].ID.GlobalId] = i
	}
	bl.owned[b.ID.OwnerRank] = append(bl.owned[b.ID.OwnerRank], b.ID.LocalId)
	return nil
}

func (bl *BoxLevel) Dim() Dimension { return bl.dim }

// RatioToLevelZero returns the refinement ratio relative to level zero
func (bl *BoxLevel) RatioToLevelZero() IntVector { return bl.ratio }

// Boxes returns the boxes ordered by id. The slice must not be modified.
func (bl *BoxLevel) Boxes() []Box { return bl.boxes }

// Len returns the number of boxes
func (bl *BoxLevel) Len() int { return len(bl.boxes) }

// Box returns the box with the given id
func (bl *BoxLevel) Box(id GlobalId) (Box, bool) {
	i, ok := bl.index[id]
	if !ok {
		return Box{}, false
	}
	return bl.boxes[i], true
}

// HasBox reports whether the id names a box of this level
func (bl *BoxLevel) HasBox(id GlobalId) bool {
	_, ok := bl.index[id]
	return ok
}

// OwnedBy returns the local ids owned by rank
func (bl *BoxLevel) OwnedBy(rank int) []LocalId {
	return bl.owned[rank]
}

// NumberOwners returns the number of distinct owner ranks
func (bl *BoxLevel) NumberOwners() int {
	return len(bl.owned)
}

// BlockBoxes returns the boxes in the given block
func (bl *BoxLevel) BlockBoxes(block BlockId) BoxContainer {
	var out BoxContainer
	for _, b := range bl.boxes {
		if b.Block == block {
			out = append(out, b)
		}
	}
	return out
}

// BoundingBox returns the smallest box covering every box of the block
func (bl *BoxLevel) BoundingBox(block BlockId) Box {
	bb := bl.BlockBoxes(block).boundingBox(bl.dim)
	bb.ID = BoxId{}
	bb.Block = block
	return bb
}

// Validate checks that no two boxes of the same block overlap and that the
// id index is consistent
func (bl *BoxLevel) Validate() error {
	for i, b := range bl.boxes {
		if j, ok := bl.index[b.ID.GlobalId]; !ok || j != i {
			return fmt.Errorf("box %s: index entry %d != position %d", b.ID, j, i)
		}
		if b.Empty() {
			return fmt.Errorf("box %s is empty", b.ID)
		}
		for _, o := range bl.boxes[i+1:] {
			if o.Block == b.Block && b.Intersects(o) {
				return fmt.Errorf("boxes %s %s and %s %s overlap", b.ID, b, o.ID, o)
			}
		}
	}
	return nil
}

// Refine returns a new level with every box refined by ratio
func (bl *BoxLevel) Refine(ratio IntVector) *BoxLevel {
	out := NewBoxLevel(bl.dim, bl.ratio.Mul(ratio))
	for _, b := range bl.boxes {
		// Ids are unique in bl, so AddBox cannot fail
		if err := out.AddBox(b.Refine(ratio)); err != nil {
			panic(err)
		}
	}
	return out
}
