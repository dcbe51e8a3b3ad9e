package hier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxLevelBuilder_BlockOwners(t *testing.T) {
	lb := BoxLevelBuilder{Dim: D2, Ratio: One, NumRanks: 2}
	bl, err := lb.Build([]Box{box2(0, 0, 3, 3), box2(4, 0, 7, 3), box2(8, 0, 11, 3)})
	require.NoError(t, err)

	assert.Equal(t, 3, bl.Len())
	assert.Equal(t, 2, bl.NumberOwners())
	assert.Equal(t, []LocalId{0, 1}, bl.OwnedBy(0))
	assert.Equal(t, []LocalId{0}, bl.OwnedBy(1))

	b, ok := bl.Box(GlobalId{LocalId: 0, OwnerRank: 1})
	require.True(t, ok)
	assert.True(t, b.IsSpatiallyEqual(box2(8, 0, 11, 3)))
	assert.True(t, bl.BoundingBox(BlockZero).IsSpatiallyEqual(box2(0, 0, 11, 3)))
}

func TestBoxLevelBuilder_RoundRobin(t *testing.T) {
	lb := BoxLevelBuilder{Dim: D2, Ratio: One, NumRanks: 2, Strategy: RoundRobinOwners}
	bl, err := lb.Build([]Box{box2(0, 0, 3, 3), box2(4, 0, 7, 3), box2(8, 0, 11, 3)})
	require.NoError(t, err)
	assert.Equal(t, []LocalId{0, 1}, bl.OwnedBy(0))
	assert.Equal(t, []LocalId{0}, bl.OwnedBy(1))
	b, _ := bl.Box(GlobalId{LocalId: 1, OwnerRank: 0})
	assert.True(t, b.IsSpatiallyEqual(box2(8, 0, 11, 3)))
}

func TestBoxLevelBuilder_RejectsOverlap(t *testing.T) {
	lb := BoxLevelBuilder{Dim: D2, Ratio: One}
	_, err := lb.Build([]Box{box2(0, 0, 3, 3), box2(3, 3, 7, 7)})
	assert.Error(t, err)

	// Overlap across blocks is allowed
	other := box2(3, 3, 7, 7)
	other.Block = 1
	_, err = lb.Build([]Box{box2(0, 0, 3, 3), other})
	assert.NoError(t, err)
}

func TestBoxLevel_AddBox(t *testing.T) {
	bl := NewBoxLevel(D2, One)
	b := box2(0, 0, 1, 1)
	require.NoError(t, bl.AddBox(b))
	assert.Error(t, bl.AddBox(b), "duplicate id")

	img := box2(4, 4, 5, 5)
	img.ID = BoxId{GlobalId: GlobalId{LocalId: 1}, PeriodicId: 1}
	assert.Error(t, bl.AddBox(img), "periodic image")

	assert.Error(t, bl.AddBox(NewBox(D3, Zero, One)), "dimension")
}

func TestBoxLevel_Refine(t *testing.T) {
	lb := BoxLevelBuilder{Dim: D2, Ratio: One}
	bl, err := lb.Build([]Box{box2(0, 0, 3, 3)})
	require.NoError(t, err)
	fine := bl.Refine(IntVector{2, 2})
	assert.Equal(t, IntVector{2, 2}, fine.RatioToLevelZero())
	assert.True(t, fine.Boxes()[0].IsSpatiallyEqual(box2(0, 0, 7, 7)))
	assert.Equal(t, bl.Boxes()[0].ID, fine.Boxes()[0].ID)
}
