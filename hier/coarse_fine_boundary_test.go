package hier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLevel struct {
	ratio IntVector
	boxes []Box
}

func newTestHierarchy(t *testing.T, domain Box, periodic [MaxDim]bool, width IntVector, levels ...testLevel) *PatchHierarchy {
	t.Helper()
	geom, err := NewGridGeometry(domain.Dim, []Box{domain}, periodic)
	require.NoError(t, err)
	h := NewPatchHierarchy(geom, NewPatchDescriptor(), width)
	for n, l := range levels {
		_, err := h.MakeNewPatchLevel(n, buildLevel(t, l.ratio, l.boxes...))
		require.NoError(t, err)
	}
	return h
}

func box3(x0, y0, z0, x1, y1, z1 int) Box {
	return NewBox(D3, IntVector{x0, y0, z0}, IntVector{x1, y1, z1})
}

// spatial strips ids and location data for comparison
func spatial(bbs []BoundaryBox) []Box {
	out := make([]Box, len(bbs))
	for i, bb := range bbs {
		out[i] = NewBox(bb.Box.Dim, bb.Box.Lower, bb.Box.Upper)
	}
	return out
}

func locationIndices(bbs []BoundaryBox) []int {
	out := make([]int, len(bbs))
	for i, bb := range bbs {
		out[i] = bb.LocationIndex
	}
	return out
}

func TestCoarseFineBoundary_LevelZeroEmpty(t *testing.T) {
	h := newTestHierarchy(t, box2(0, 0, 15, 15), [MaxDim]bool{}, Uniform(2),
		testLevel{ratio: One, boxes: []Box{box2(0, 0, 7, 15), box2(8, 0, 15, 15)}},
		testLevel{ratio: IntVector{2, 2}, boxes: []Box{box2(8, 8, 15, 15)}},
	)
	cfb, err := NewCoarseFineBoundaryFromHierarchy(h, 0, Uniform(2))
	require.NoError(t, err)
	assert.True(t, cfb.IsInitialized(BlockZero))

	level, err := h.PatchLevel(0)
	require.NoError(t, err)
	for _, b := range level.BoxLevel().Boxes() {
		for typ := 1; typ <= MaxDim; typ++ {
			bbs, err := cfb.GetBoundaries(b.ID.GlobalId, typ, BlockZero)
			require.NoError(t, err)
			assert.Empty(t, bbs)
		}
	}
}

func TestCoarseFineBoundary_FullCoverIsEmpty(t *testing.T) {
	h := newTestHierarchy(t, box2(0, 0, 15, 15), [MaxDim]bool{}, Uniform(2),
		testLevel{ratio: One, boxes: []Box{box2(0, 0, 15, 15)}},
		testLevel{ratio: IntVector{2, 2}, boxes: []Box{box2(0, 0, 15, 31), box2(16, 0, 31, 31)}},
	)
	cfb, err := NewCoarseFineBoundaryFromHierarchy(h, 1, Uniform(2))
	require.NoError(t, err)

	level, _ := h.PatchLevel(1)
	for _, b := range level.BoxLevel().Boxes() {
		for typ := 1; typ <= MaxDim; typ++ {
			bbs, err := cfb.GetBoundaries(b.ID.GlobalId, typ, BlockZero)
			require.NoError(t, err)
			assert.Empty(t, bbs, "box %s type %d", b.ID, typ)
		}
	}
}

func TestCoarseFineBoundary_InteriorBox2D(t *testing.T) {
	h := newTestHierarchy(t, box2(0, 0, 15, 15), [MaxDim]bool{}, Uniform(2),
		testLevel{ratio: One, boxes: []Box{box2(0, 0, 15, 15)}},
		testLevel{ratio: IntVector{2, 2}, boxes: []Box{box2(8, 8, 15, 15)}},
	)
	cfb, err := NewCoarseFineBoundaryFromHierarchy(h, 1, Uniform(2))
	require.NoError(t, err)
	level, _ := h.PatchLevel(1)
	id := level.BoxLevel().Boxes()[0].ID.GlobalId

	faces, err := cfb.GetFaceBoundaries(id, BlockZero)
	require.NoError(t, err)
	assert.Empty(t, faces, "faces exist only in 3D")

	// In 2D the sides are the edges
	sides, err := cfb.GetEdgeBoundaries(id, BlockZero)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, locationIndices(sides))
	assert.Equal(t, []Box{
		box2(7, 6, 7, 17),
		box2(16, 6, 16, 17),
		box2(6, 7, 17, 7),
		box2(6, 16, 17, 16),
	}, spatial(sides))
	for _, f := range sides {
		assert.Equal(t, 1, f.BoundaryType)
		assert.Equal(t, id, f.Box.ID.GlobalId)
	}

	corners, err := cfb.GetNodeBoundaries(id, BlockZero)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, locationIndices(corners))
	assert.Equal(t, []Box{
		box2(7, 7, 7, 7),
		box2(16, 7, 16, 7),
		box2(7, 16, 7, 16),
		box2(16, 16, 16, 16),
	}, spatial(corners))
	for _, c := range corners {
		assert.Equal(t, 2, c.BoundaryType)
	}

	byType, err := cfb.GetBoundaries(id, 2, BlockZero)
	require.NoError(t, err)
	assert.Equal(t, corners, byType)
}

func TestCoarseFineBoundary_InteriorBox3D(t *testing.T) {
	h := newTestHierarchy(t, box3(0, 0, 0, 15, 15, 15), [MaxDim]bool{}, One,
		testLevel{ratio: One, boxes: []Box{box3(0, 0, 0, 15, 15, 15)}},
		testLevel{ratio: Uniform(2), boxes: []Box{box3(8, 8, 8, 15, 15, 15)}},
	)
	cfb, err := NewCoarseFineBoundaryFromHierarchy(h, 1, One)
	require.NoError(t, err)
	level, _ := h.PatchLevel(1)
	id := level.BoxLevel().Boxes()[0].ID.GlobalId

	faces, err := cfb.GetFaceBoundaries(id, BlockZero)
	require.NoError(t, err)
	require.Len(t, faces, 6)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, locationIndices(faces))
	assert.Equal(t, box3(7, 7, 7, 7, 16, 16), spatial(faces)[0])
	assert.Equal(t, box3(7, 7, 16, 16, 16, 16), spatial(faces)[5])

	edges, err := cfb.GetEdgeBoundaries(id, BlockZero)
	require.NoError(t, err)
	require.Len(t, edges, 12)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, locationIndices(edges))
	// Edge along z at the lower x, lower y corner
	assert.Equal(t, box3(7, 7, 7, 7, 7, 16), spatial(edges)[8])
	// Edge along x at upper y, upper z
	assert.Equal(t, box3(7, 16, 16, 16, 16, 16), spatial(edges)[3])

	nodes, err := cfb.GetNodeBoundaries(id, BlockZero)
	require.NoError(t, err)
	require.Len(t, nodes, 8)
	assert.Equal(t, box3(7, 7, 7, 7, 7, 7), spatial(nodes)[0])
	assert.Equal(t, box3(16, 16, 16, 16, 16, 16), spatial(nodes)[7])
}

func TestCoarseFineBoundary_SameLevelNeighborTrims(t *testing.T) {
	h := newTestHierarchy(t, box2(0, 0, 15, 15), [MaxDim]bool{}, One,
		testLevel{ratio: One, boxes: []Box{box2(0, 0, 15, 15)}},
		testLevel{ratio: IntVector{2, 2}, boxes: []Box{box2(8, 8, 15, 15), box2(16, 8, 23, 15)}},
	)
	cfb, err := NewCoarseFineBoundaryFromHierarchy(h, 1, One)
	require.NoError(t, err)
	level, _ := h.PatchLevel(1)
	left := level.BoxLevel().Boxes()[0]
	require.True(t, left.IsSpatiallyEqual(box2(8, 8, 15, 15)))

	sides, err := cfb.GetEdgeBoundaries(left.ID.GlobalId, BlockZero)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, locationIndices(sides))
	// The lower y side runs on past the corner shared with the neighbor
	assert.Equal(t, box2(7, 7, 16, 7), spatial(sides)[1])

	corners, err := cfb.GetNodeBoundaries(left.ID.GlobalId, BlockZero)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, locationIndices(corners))
}

func TestCoarseFineBoundary_PeriodicEdge(t *testing.T) {
	levels := []testLevel{
		{ratio: One, boxes: []Box{box2(0, 0, 15, 15)}},
		{ratio: IntVector{2, 2}, boxes: []Box{box2(0, 8, 7, 23)}},
	}
	faceAt := func(periodic [MaxDim]bool) []BoundaryBox {
		h := newTestHierarchy(t, box2(0, 0, 15, 15), periodic, One, levels...)
		cfb, err := NewCoarseFineBoundaryFromHierarchy(h, 1, One)
		require.NoError(t, err)
		level, _ := h.PatchLevel(1)
		sides, err := cfb.GetEdgeBoundaries(level.BoxLevel().Boxes()[0].ID.GlobalId, BlockZero)
		require.NoError(t, err)
		return sides
	}

	periodic := faceAt([MaxDim]bool{true, false})
	assert.Equal(t, []int{0, 1, 2, 3}, locationIndices(periodic))
	assert.Equal(t, box2(-1, 7, -1, 24), spatial(periodic)[0])
	assert.Equal(t, box2(-1, 7, 8, 7), spatial(periodic)[2])

	plain := faceAt([MaxDim]bool{})
	assert.Equal(t, []int{1, 2, 3}, locationIndices(plain))
	assert.Equal(t, box2(0, 7, 8, 7), spatial(plain)[1])
}

func TestCoarseFineBoundary_ClearRecompute(t *testing.T) {
	h := newTestHierarchy(t, box2(0, 0, 31, 31), [MaxDim]bool{true, true}, Uniform(2),
		testLevel{ratio: One, boxes: []Box{box2(0, 0, 31, 31)}},
		testLevel{ratio: IntVector{2, 2}, boxes: []Box{box2(0, 0, 15, 15), box2(40, 40, 63, 47), box2(16, 4, 23, 11)}},
	)
	level, _ := h.PatchLevel(1)
	toDomain, err := h.LevelToDomain(1)
	require.NoError(t, err)
	toSelf, err := h.LevelToSelf(1)
	require.NoError(t, err)

	cfb, err := NewCoarseFineBoundaryFromLevel(level, toDomain, toSelf, Uniform(2))
	require.NoError(t, err)
	first := cfb.String()
	clone := cfb.Clone()

	assert.ErrorIs(t, cfb.Compute(level, toDomain, toSelf, Uniform(2)), ErrAlreadyComputed)

	cfb.Clear()
	assert.False(t, cfb.IsInitialized(BlockZero))
	_, err = cfb.GetEdgeBoundaries(level.BoxLevel().Boxes()[0].ID.GlobalId, BlockZero)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, first, clone.String(), "clone is independent of the original")

	require.NoError(t, cfb.Compute(level, toDomain, toSelf, Uniform(2)))
	assert.Equal(t, first, cfb.String())
}

func TestCoarseFineBoundary_Errors(t *testing.T) {
	h := newTestHierarchy(t, box2(0, 0, 15, 15), [MaxDim]bool{}, One,
		testLevel{ratio: One, boxes: []Box{box2(0, 0, 15, 15)}},
		testLevel{ratio: IntVector{2, 2}, boxes: []Box{box2(8, 8, 15, 15)}},
	)
	level, _ := h.PatchLevel(1)
	coarse, _ := h.PatchLevel(0)
	toDomain, _ := h.LevelToDomain(1)
	toSelf, _ := h.LevelToSelf(1)
	coarseToSelf, _ := h.LevelToSelf(0)

	_, err := NewCoarseFineBoundaryFromLevel(level, toDomain, coarseToSelf, One)
	assert.ErrorIs(t, err, ErrConnectorMismatch, "connector of another level")

	_, err = NewCoarseFineBoundaryFromLevel(level, toDomain, toSelf, Uniform(2))
	assert.ErrorIs(t, err, ErrConnectorMismatch, "connectors narrower than the ghost width")

	_, err = NewCoarseFineBoundaryFromLevel(coarse, toDomain, toSelf, One)
	assert.ErrorIs(t, err, ErrConnectorMismatch)

	cfb, err := NewCoarseFineBoundaryFromLevel(level, toDomain, toSelf, One)
	require.NoError(t, err)
	id := level.BoxLevel().Boxes()[0].ID.GlobalId

	_, err = cfb.GetBoundaries(GlobalId{LocalId: 42}, 1, BlockZero)
	assert.ErrorIs(t, err, ErrUnknownBox)
	_, err = cfb.GetBoundaries(id, 1, 3)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = cfb.GetBoundaries(id, 0, BlockZero)
	assert.ErrorIs(t, err, ErrBoundaryType)
	_, err = cfb.GetBoundaries(id, 4, BlockZero)
	assert.ErrorIs(t, err, ErrBoundaryType)

	_, err = NewCoarseFineBoundaryFromHierarchy(h, 5, One)
	assert.Error(t, err)
}

func box1(lo, hi int) Box {
	return NewBox(D1, IntVector{lo}, IntVector{hi})
}

func inBlock(b Box, block BlockId) Box {
	b.Block = block
	return b
}

func TestCoarseFineBoundary_OneDimension(t *testing.T) {
	h := newTestHierarchy(t, box1(0, 15), [MaxDim]bool{}, One,
		testLevel{ratio: One, boxes: []Box{box1(0, 15)}},
		testLevel{ratio: IntVector{2}, boxes: []Box{box1(0, 5), box1(20, 27)}},
	)
	cfb, err := NewCoarseFineBoundaryFromHierarchy(h, 1, One)
	require.NoError(t, err)
	level, _ := h.PatchLevel(1)
	atEdge := level.BoxLevel().Boxes()[0]
	inside := level.BoxLevel().Boxes()[1]
	require.True(t, inside.IsSpatiallyEqual(box1(20, 27)))

	// The endpoints are the nodes in 1D
	nodes, err := cfb.GetNodeBoundaries(inside.ID.GlobalId, BlockZero)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, locationIndices(nodes))
	assert.Equal(t, []Box{box1(19, 19), box1(28, 28)}, spatial(nodes))

	byType, err := cfb.GetBoundaries(inside.ID.GlobalId, 1, BlockZero)
	require.NoError(t, err)
	assert.Equal(t, nodes, byType)

	edges, err := cfb.GetEdgeBoundaries(inside.ID.GlobalId, BlockZero)
	require.NoError(t, err)
	assert.Empty(t, edges)
	faces, err := cfb.GetFaceBoundaries(inside.ID.GlobalId, BlockZero)
	require.NoError(t, err)
	assert.Empty(t, faces)
	above, err := cfb.GetBoundaries(inside.ID.GlobalId, 2, BlockZero)
	require.NoError(t, err)
	assert.Empty(t, above)

	// The lower end lies on the physical boundary
	nodes, err = cfb.GetNodeBoundaries(atEdge.ID.GlobalId, BlockZero)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, locationIndices(nodes))
	assert.Equal(t, []Box{box1(6, 6)}, spatial(nodes))

	_, err = cfb.GetEdgeBoundaries(GlobalId{LocalId: 9}, BlockZero)
	assert.ErrorIs(t, err, ErrUnknownBox, "wrappers check the box even when the type is empty")
}

func TestCoarseFineBoundary_MultiBlock(t *testing.T) {
	geom, err := NewGridGeometry(D2, []Box{
		inBlock(box2(0, 0, 15, 15), 0),
		inBlock(box2(0, 0, 15, 15), 1),
	}, [MaxDim]bool{})
	require.NoError(t, err)
	h := NewPatchHierarchy(geom, NewPatchDescriptor(), One)
	_, err = h.MakeNewPatchLevel(0, buildLevel(t, One,
		inBlock(box2(0, 0, 15, 15), 0),
		inBlock(box2(0, 0, 15, 15), 1)))
	require.NoError(t, err)
	_, err = h.MakeNewPatchLevel(1, buildLevel(t, IntVector{2, 2},
		inBlock(box2(8, 8, 15, 15), 0),
		inBlock(box2(8, 8, 15, 15), 1),
		inBlock(box2(16, 8, 23, 15), 1)))
	require.NoError(t, err)

	cfb, err := NewCoarseFineBoundaryFromHierarchy(h, 1, One)
	require.NoError(t, err)
	assert.True(t, cfb.IsInitialized(0))
	assert.True(t, cfb.IsInitialized(1))

	level, _ := h.PatchLevel(1)
	boxes := level.BoxLevel().Boxes()
	first, second := boxes[0], boxes[1]
	require.Equal(t, BlockId(0), first.Block)
	require.Equal(t, BlockId(1), second.Block)

	// The box at the same indices in block 1 does not cover block 0
	sides, err := cfb.GetEdgeBoundaries(first.ID.GlobalId, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, locationIndices(sides))
	assert.Equal(t, box2(7, 7, 7, 16), spatial(sides)[0])
	corners, err := cfb.GetNodeBoundaries(first.ID.GlobalId, 0)
	require.NoError(t, err)
	assert.Len(t, corners, 4)

	// Its neighbor in block 1 trims the upper x side
	sides, err = cfb.GetEdgeBoundaries(second.ID.GlobalId, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, locationIndices(sides))
	assert.Equal(t, box2(7, 7, 16, 7), spatial(sides)[1])
	corners, err = cfb.GetNodeBoundaries(second.ID.GlobalId, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, locationIndices(corners))

	_, err = cfb.GetEdgeBoundaries(second.ID.GlobalId, 0)
	assert.ErrorIs(t, err, ErrUnknownBox)
	_, err = cfb.GetBoundaries(first.ID.GlobalId, 1, 1)
	assert.ErrorIs(t, err, ErrUnknownBox)
}
