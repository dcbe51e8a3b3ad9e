package hier

import (
	"fmt"
)

// Connector records, for each box of a base level, the head level boxes that
// overlap it when grown by the connector width. Neighbors may be periodic
// images of head boxes.
type Connector struct {
	base  *BoxLevel
	head  *BoxLevel
	width IntVector

	neighbors map[GlobalId][]Box // Base box → overlapping head boxes
}

// NewConnector creates a connector with no neighbor sets. Neighbor sets are
// filled with AddNeighbor by whoever computed the adjacency.
func NewConnector(base, head *BoxLevel, width IntVector) (*Connector, error) {
	if base == nil || head == nil {
		return nil, fmt.Errorf("connector needs both base and head levels")
	}
	if base.Dim() != head.Dim() {
		return nil, fmt.Errorf("base dimension %d != head dimension %d", base.Dim(), head.Dim())
	}
	return &Connector{
		base:      base,
		head:      head,
		width:     width,
		neighbors: make(map[GlobalId][]Box),
	}, nil
}

// FindOverlaps builds a connector by testing every head box, and each of its
// periodic images, against every base box grown by width. shifts[0] must be
// the zero shift; shifts[k] produces images with PeriodicId k.
func FindOverlaps(base, head *BoxLevel, width IntVector, shifts []IntVector) (*Connector, error) {
	c, err := NewConnector(base, head, width)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		shifts = []IntVector{Zero}
	}
	if !shifts[0].IsZero(base.Dim()) {
		return nil, fmt.Errorf("first periodic shift must be zero, got %s", shifts[0].Format(base.Dim()))
	}

	// Head boxes live in the head index space; compare in the base index space
	// only when the two levels share a ratio.
	if base.RatioToLevelZero() != head.RatioToLevelZero() {
		return nil, fmt.Errorf("base ratio %s != head ratio %s",
			base.RatioToLevelZero().Format(base.Dim()), head.RatioToLevelZero().Format(base.Dim()))
	}

	for _, b := range base.Boxes() {
		grown := b.Grow(width)
		// Record an empty set so every base box has an entry
		c.neighbors[b.ID.GlobalId] = c.neighbors[b.ID.GlobalId][:0]
		for _, h := range head.Boxes() {
			if h.Block != b.Block {
				continue
			}
			for k, s := range shifts {
				img := h.Shift(s)
				img.ID.PeriodicId = PeriodicId(k)
				if img.Intersects(grown) {
					c.neighbors[b.ID.GlobalId] = append(c.neighbors[b.ID.GlobalId], img)
				}
			}
		}
	}
	return c, nil
}

// AddNeighbor appends a head box to the neighbor set of a base box
func (c *Connector) AddNeighbor(base GlobalId, nbr Box) error {
	if !c.base.HasBox(base) {
		return fmt.Errorf("%w: %s is not in the connector base", ErrUnknownBox, base)
	}
	c.neighbors[base] = append(c.neighbors[base], nbr)
	return nil
}

// Base returns the level the connector maps from
func (c *Connector) Base() *BoxLevel { return c.base }

// Head returns the level the connector maps to
func (c *Connector) Head() *BoxLevel { return c.head }

// Width returns the growth applied to base boxes when finding overlaps
func (c *Connector) Width() IntVector { return c.width }

// Neighbors returns the head boxes overlapping the base box id
func (c *Connector) Neighbors(id GlobalId) []Box {
	return c.neighbors[id]
}

// HasNeighborSet reports whether the base box id has an entry, even an
// empty one
func (c *Connector) HasNeighborSet(id GlobalId) bool {
	_, ok := c.neighbors[id]
	return ok
}

// NumNeighbors returns the total number of neighbor relations
func (c *Connector) NumNeighbors() int {
	n := 0
	for _, nbrs := range c.neighbors {
		n += len(nbrs)
	}
	return n
}

// Verify checks neighbor validity and completeness
func (c *Connector) Verify() error {
	// Verify 1: every base box has a neighbor set
	for _, b := range c.base.Boxes() {
		if !c.HasNeighborSet(b.ID.GlobalId) {
			return fmt.Errorf("base box %s has no neighbor set", b.ID)
		}
	}

	// Verify 2: neighbors refer to head boxes and actually overlap
	for id, nbrs := range c.neighbors {
		b, ok := c.base.Box(id)
		if !ok {
			return fmt.Errorf("neighbor set for unknown base box %s", id)
		}
		grown := b.Grow(c.width)
		for _, n := range nbrs {
			if !c.head.HasBox(n.ID.GlobalId) {
				return fmt.Errorf("base box %s: neighbor %s is not in the head level", id, n.ID)
			}
			if !n.Intersects(grown) {
				return fmt.Errorf("base box %s: neighbor %s %s does not overlap %s", id, n.ID, n, grown)
			}
		}
	}
	return nil
}
