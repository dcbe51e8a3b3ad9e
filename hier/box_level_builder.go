package hier

import (
	"fmt"
	"math"
)

// OwnerStrategy defines how boxes are assigned to owner ranks
type OwnerStrategy int

const (
	BlockOwners      OwnerStrategy = iota // Consecutive boxes per rank
	RoundRobinOwners                      // Distribute cyclically
)

// BoxLevelBuilder assigns identities to a list of boxes and builds the level
type BoxLevelBuilder struct {
	Dim      Dimension
	Ratio    IntVector // Refinement ratio to level zero
	NumRanks int       // Owner ranks to spread boxes over
	Strategy OwnerStrategy
}

// Build creates a BoxLevel from raw boxes. Box ids and owners are assigned
// by the builder; blocks are kept.
func (lb *BoxLevelBuilder) Build(boxes []Box) (*BoxLevel, error) {
	if !lb.Dim.Valid() {
		return nil, fmt.Errorf("invalid dimension %d", lb.Dim)
	}
	numRanks := lb.NumRanks
	if numRanks < 1 {
		numRanks = 1
	}

	owners := lb.assignOwners(len(boxes), numRanks)

	level := NewBoxLevel(lb.Dim, lb.Ratio)
	nextLocal := make([]LocalId, numRanks)
	for i, b := range boxes {
		rank := owners[i]
		b.Dim = lb.Dim
		b.ID = BoxId{GlobalId: GlobalId{LocalId: nextLocal[rank], OwnerRank: rank}}
		nextLocal[rank]++
		if err := level.AddBox(b); err != nil {
			return nil, err
		}
	}

	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("invalid box level: %w", err)
	}
	return level, nil
}

// assignOwners maps box i to its owner rank
func (lb *BoxLevelBuilder) assignOwners(numBoxes, numRanks int) []int {
	owners := make([]int, numBoxes)
	switch lb.Strategy {
	case RoundRobinOwners:
		for i := range owners {
			owners[i] = i % numRanks
		}
	default:
		perRank := int(math.Ceil(float64(numBoxes) / float64(numRanks)))
		if perRank < 1 {
			perRank = 1
		}
		for i := range owners {
			owners[i] = i / perRank
			if owners[i] >= numRanks {
				owners[i] = numRanks - 1
			}
		}
	}
	return owners
}
