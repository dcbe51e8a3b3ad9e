package hier

import (
	"fmt"
)

// PatchHierarchy is an ordered stack of patch levels, level zero coarsest,
// over one grid geometry. It builds and caches each level's connectors to
// the physical domain and to itself.
type PatchHierarchy struct {
	geometry   *GridGeometry
	descriptor *PatchDescriptor
	width      IntVector // Connector width

	levels   []*PatchLevel
	toDomain []*Connector
	toSelf   []*Connector
}

// NewPatchHierarchy creates a hierarchy with no levels. Connectors are built
// with connectorWidth, at least one cell in every direction.
func NewPatchHierarchy(geometry *GridGeometry, descriptor *PatchDescriptor, connectorWidth IntVector) *PatchHierarchy {
	return &PatchHierarchy{
		geometry:   geometry,
		descriptor: descriptor,
		width:      connectorWidth.Max(One),
	}
}

func (h *PatchHierarchy) Dim() Dimension                    { return h.geometry.Dim() }
func (h *PatchHierarchy) GridGeometry() *GridGeometry       { return h.geometry }
func (h *PatchHierarchy) PatchDescriptor() *PatchDescriptor { return h.descriptor }
func (h *PatchHierarchy) ConnectorWidth() IntVector         { return h.width }
func (h *PatchHierarchy) NumberOfLevels() int               { return len(h.levels) }

// MakeNewPatchLevel creates level levelNumber from boxLevel, replacing any
// level already there and dropping the finer ones. Levels are added in
// order, so levelNumber may be at most NumberOfLevels().
func (h *PatchHierarchy) MakeNewPatchLevel(levelNumber int, boxLevel *BoxLevel) (*PatchLevel, error) {
	if levelNumber < 0 || levelNumber > len(h.levels) {
		return nil, fmt.Errorf("cannot make level %d in a hierarchy of %d levels", levelNumber, len(h.levels))
	}
	if levelNumber > 0 {
		coarser := h.levels[levelNumber-1].RatioToLevelZero()
		if !boxLevel.RatioToLevelZero().AllGE(coarser, h.Dim()) {
			return nil, fmt.Errorf("level %d ratio %s is coarser than level %d ratio %s", levelNumber,
				boxLevel.RatioToLevelZero().Format(h.Dim()), levelNumber-1, coarser.Format(h.Dim()))
		}
	}

	level, err := NewPatchLevel(boxLevel, h.geometry, h.descriptor)
	if err != nil {
		return nil, err
	}
	level.SetLevelNumber(levelNumber)

	for _, old := range h.levels[levelNumber:] {
		old.SetLevelNumber(-1)
	}
	h.levels = append(h.levels[:levelNumber], level)
	h.toDomain = append(h.toDomain[:min(levelNumber, len(h.toDomain))], nil)
	h.toSelf = append(h.toSelf[:min(levelNumber, len(h.toSelf))], nil)
	return level, nil
}

// PatchLevel returns level n
func (h *PatchHierarchy) PatchLevel(n int) (*PatchLevel, error) {
	if n < 0 || n >= len(h.levels) {
		return nil, fmt.Errorf("level %d not in hierarchy of %d levels", n, len(h.levels))
	}
	return h.levels[n], nil
}

// LevelToDomain returns the connector from level n to the physical domain
// refined to level n's index space, periodic images included
func (h *PatchHierarchy) LevelToDomain(n int) (*Connector, error) {
	level, err := h.PatchLevel(n)
	if err != nil {
		return nil, err
	}
	if h.toDomain[n] == nil {
		ratio := level.RatioToLevelZero()
		c, err := FindOverlaps(level.BoxLevel(), h.geometry.DomainBoxLevel(ratio), h.width, h.geometry.PeriodicShifts(ratio))
		if err != nil {
			return nil, fmt.Errorf("level %d to domain: %w", n, err)
		}
		h.toDomain[n] = c
	}
	return h.toDomain[n], nil
}

// LevelToSelf returns the connector from level n to itself, periodic images
// included
func (h *PatchHierarchy) LevelToSelf(n int) (*Connector, error) {
	level, err := h.PatchLevel(n)
	if err != nil {
		return nil, err
	}
	if h.toSelf[n] == nil {
		ratio := level.RatioToLevelZero()
		c, err := FindOverlaps(level.BoxLevel(), level.BoxLevel(), h.width, h.geometry.PeriodicShifts(ratio))
		if err != nil {
			return nil, fmt.Errorf("level %d to self: %w", n, err)
		}
		h.toSelf[n] = c
	}
	return h.toSelf[n], nil
}
