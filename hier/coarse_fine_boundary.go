package hier

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("pkg", "hier")

// CoarseFineBoundary describes, for every box of one level, the boundary
// pieces the box shares with the next coarser level. The description lives
// in the fine level's index space.
//
// A coarse-fine boundary box does not intersect any other box of the level
// and does not lie on a physical boundary, except where that boundary is
// periodic. Level zero has no coarse-fine boundary.
type CoarseFineBoundary struct {
	dim Dimension

	// Per-block computed marker, distinct from "computed and empty"
	initialized []bool

	boundaries map[BoxId]*boxBoundaries
}

type boxBoundaries struct {
	block BlockId
	*PatchBoundaries
}

// NewCoarseFineBoundary returns an object with no boundary boxes and no
// block initialized
func NewCoarseFineBoundary(dim Dimension) *CoarseFineBoundary {
	return &CoarseFineBoundary{
		dim:        dim,
		boundaries: make(map[BoxId]*boxBoundaries),
	}
}

// NewCoarseFineBoundaryFromHierarchy computes the boundary of a hierarchy
// level against the next coarser level, using the connectors the hierarchy
// keeps. Level zero yields an empty boundary for each of its boxes.
func NewCoarseFineBoundaryFromHierarchy(h *PatchHierarchy, levelNumber int, maxGhostWidth IntVector) (*CoarseFineBoundary, error) {
	level, err := h.PatchLevel(levelNumber)
	if err != nil {
		return nil, err
	}
	cfb := NewCoarseFineBoundary(h.Dim())
	if levelNumber == 0 {
		cfb.setEmpty(level)
		return cfb, nil
	}

	toDomain, err := h.LevelToDomain(levelNumber)
	if err != nil {
		return nil, err
	}
	toSelf, err := h.LevelToSelf(levelNumber)
	if err != nil {
		return nil, err
	}
	if err := cfb.Compute(level, toDomain, toSelf, maxGhostWidth); err != nil {
		return nil, err
	}
	return cfb, nil
}

// NewCoarseFineBoundaryFromLevel computes the boundary of a level given its
// connectors to the physical domain and to itself
func NewCoarseFineBoundaryFromLevel(level *PatchLevel, toDomain, toSelf *Connector, maxGhostWidth IntVector) (*CoarseFineBoundary, error) {
	cfb := NewCoarseFineBoundary(level.Dim())
	if err := cfb.Compute(level, toDomain, toSelf, maxGhostWidth); err != nil {
		return nil, err
	}
	return cfb, nil
}

// Compute fills an empty object from a level and its connectors. Nothing is
// stored unless every box succeeds.
func (cfb *CoarseFineBoundary) Compute(level *PatchLevel, toDomain, toSelf *Connector, maxGhostWidth IntVector) error {
	for _, done := range cfb.initialized {
		if done {
			return ErrAlreadyComputed
		}
	}
	if level.Dim() != cfb.dim {
		return fmt.Errorf("level dimension %d != boundary dimension %d", level.Dim(), cfb.dim)
	}

	boxLevel := level.BoxLevel()
	reach := maxGhostWidth.Max(One)
	if toDomain.Base() != boxLevel {
		return fmt.Errorf("%w: level-to-domain base is not the level", ErrConnectorMismatch)
	}
	if toSelf.Base() != boxLevel || toSelf.Head() != boxLevel {
		return fmt.Errorf("%w: level-to-self must map the level to itself", ErrConnectorMismatch)
	}
	for _, c := range []*Connector{toDomain, toSelf} {
		if !c.Width().AllGE(reach, cfb.dim) {
			return fmt.Errorf("%w: connector width %s narrower than ghost width %s",
				ErrConnectorMismatch, c.Width().Format(cfb.dim), reach.Format(cfb.dim))
		}
	}

	numBlocks := level.GridGeometry().NumberBlocks()
	catalogue := make(map[BoxId]*boxBoundaries, boxLevel.Len())
	for _, box := range boxLevel.Boxes() {
		if box.Block < 0 || int(box.Block) >= numBlocks {
			return fmt.Errorf("box %s: block %d out of range [0,%d)", box.ID, box.Block, numBlocks)
		}
		if !toDomain.HasNeighborSet(box.ID.GlobalId) {
			return fmt.Errorf("%w: box %s missing from level-to-domain connector", ErrConnectorMismatch, box.ID)
		}
		catalogue[box.ID] = &boxBoundaries{
			block:           box.Block,
			PatchBoundaries: computeBoxBoundary(box, toDomain, toSelf, maxGhostWidth, reach),
		}
	}

	cfb.boundaries = catalogue
	cfb.initialized = make([]bool, numBlocks)
	for i := range cfb.initialized {
		cfb.initialized[i] = true
	}

	log.WithFields(logrus.Fields{
		"level":  level.LevelNumber(),
		"boxes":  boxLevel.Len(),
		"pieces": cfb.numberPieces(),
	}).Debug("computed coarse-fine boundary")
	return nil
}

// computeBoxBoundary finds the cells around box that are inside the domain
// (or a periodic image of it) and not covered by another box of the level,
// then decomposes them into boundary boxes
func computeBoxBoundary(box Box, toDomain, toSelf *Connector, ghost, reach IntVector) *PatchBoundaries {
	grown := box.Grow(reach)

	var domain BoxContainer
	for _, nbr := range toDomain.Neighbors(box.ID.GlobalId) {
		if nbr.Block != box.Block {
			continue
		}
		if x := nbr.Intersect(grown); !x.Empty() {
			domain = append(domain, x)
		}
	}
	open := domain.Unionize().RemoveIntersections(box)

	for _, nbr := range toSelf.Neighbors(box.ID.GlobalId) {
		if nbr.Block != box.Block || nbr.ID == box.ID {
			continue
		}
		open = open.RemoveIntersections(nbr)
		if len(open) == 0 {
			break
		}
	}
	return computeBoundaryBoxes(box, ghost, open)
}

// setEmpty records an empty boundary for every box of the level
func (cfb *CoarseFineBoundary) setEmpty(level *PatchLevel) {
	for _, box := range level.BoxLevel().Boxes() {
		cfb.boundaries[box.ID] = &boxBoundaries{block: box.Block, PatchBoundaries: &PatchBoundaries{}}
	}
	cfb.initialized = make([]bool, level.GridGeometry().NumberBlocks())
	for i := range cfb.initialized {
		cfb.initialized[i] = true
	}
}

// Clear discards every boundary box and returns the object to its
// uninitialized state
func (cfb *CoarseFineBoundary) Clear() {
	cfb.boundaries = make(map[BoxId]*boxBoundaries)
	cfb.initialized = nil
}

// Clone returns an independent copy
func (cfb *CoarseFineBoundary) Clone() *CoarseFineBoundary {
	out := NewCoarseFineBoundary(cfb.dim)
	out.initialized = append([]bool(nil), cfb.initialized...)
	for id, bb := range cfb.boundaries {
		out.boundaries[id] = &boxBoundaries{block: bb.block, PatchBoundaries: bb.clone()}
	}
	return out
}

func (cfb *CoarseFineBoundary) Dim() Dimension { return cfb.dim }

// IsInitialized reports whether boundaries were computed for block
func (cfb *CoarseFineBoundary) IsInitialized(block BlockId) bool {
	return block >= 0 && int(block) < len(cfb.initialized) && cfb.initialized[block]
}

// GetBoundaries returns the boundary boxes of one type (codimension) for a
// box of the level the boundary was computed from. Types above the dimension
// have no boxes. The returned slice must not be modified.
func (cfb *CoarseFineBoundary) GetBoundaries(id GlobalId, boundaryType int, block BlockId) ([]BoundaryBox, error) {
	if boundaryType < 1 || boundaryType > MaxDim {
		return nil, fmt.Errorf("%w: %d", ErrBoundaryType, boundaryType)
	}
	return cfb.boundariesOfType(id, boundaryType, block)
}

func (cfb *CoarseFineBoundary) boundariesOfType(id GlobalId, boundaryType int, block BlockId) ([]BoundaryBox, error) {
	if !cfb.IsInitialized(block) {
		return nil, fmt.Errorf("%w: block %d", ErrNotInitialized, block)
	}
	bb, ok := cfb.boundaries[BoxId{GlobalId: id}]
	if !ok || bb.block != block {
		return nil, fmt.Errorf("%w: %s in block %d", ErrUnknownBox, id, block)
	}
	if boundaryType < 1 || boundaryType > int(cfb.dim) {
		return nil, nil
	}
	return bb.Boxes(boundaryType), nil
}

// GetFaceBoundaries returns the boxes of type dim-2, which exist only in 3D
func (cfb *CoarseFineBoundary) GetFaceBoundaries(id GlobalId, block BlockId) ([]BoundaryBox, error) {
	return cfb.boundariesOfType(id, cfb.dim.FaceType(), block)
}

// GetEdgeBoundaries returns the boxes of type dim-1. In 2D these are the
// sides of the box.
func (cfb *CoarseFineBoundary) GetEdgeBoundaries(id GlobalId, block BlockId) ([]BoundaryBox, error) {
	return cfb.boundariesOfType(id, cfb.dim.EdgeType(), block)
}

// GetNodeBoundaries returns the boxes of type dim: the corners of the box
func (cfb *CoarseFineBoundary) GetNodeBoundaries(id GlobalId, block BlockId) ([]BoundaryBox, error) {
	return cfb.boundariesOfType(id, cfb.dim.NodeType(), block)
}

func (cfb *CoarseFineBoundary) numberPieces() int {
	n := 0
	for _, bb := range cfb.boundaries {
		n += bb.Len()
	}
	return n
}

// sortedIds returns the catalogue keys in id order
func (cfb *CoarseFineBoundary) sortedIds() []BoxId {
	ids := make([]BoxId, 0, len(cfb.boundaries))
	for id := range cfb.boundaries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// Print writes every boundary box, ordered by box id
func (cfb *CoarseFineBoundary) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "CoarseFineBoundary dim=%d blocks=%v\n", cfb.dim, cfb.initialized); err != nil {
		return err
	}
	for _, id := range cfb.sortedIds() {
		bb := cfb.boundaries[id]
		if _, err := fmt.Fprintf(w, "  box %s block %d\n", id, bb.block); err != nil {
			return err
		}
		for t := 1; t <= int(cfb.dim); t++ {
			for _, b := range bb.Boxes(t) {
				if _, err := fmt.Fprintf(w, "    %s\n", b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (cfb *CoarseFineBoundary) String() string {
	var sb strings.Builder
	_ = cfb.Print(&sb)
	return sb.String()
}
