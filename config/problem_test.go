package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/notargets/amrgeom/hier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_TwoLevel(t *testing.T) {
	p, err := Load("testdata/two_level.toml")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Dim)
	require.Len(t, p.Levels, 2)
	assert.Len(t, p.Levels[1].Boxes, 2)
	assert.Equal(t, hier.IntVector{1, 1, 0}, p.GhostVector())

	h, err := p.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, h.NumberOfLevels())
	// Widest variable ghost width wins
	assert.Equal(t, hier.IntVector{2, 2, 1}, h.ConnectorWidth())
	assert.True(t, h.GridGeometry().IsPeriodicDirection(0))

	_, ok := h.PatchDescriptor().MapNameToIndex("flux##CURRENT")
	assert.True(t, ok)

	fine, err := h.PatchLevel(1)
	require.NoError(t, err)
	assert.Equal(t, hier.IntVector{2, 2, 1}, fine.RatioToLevelZero())
	assert.Equal(t, 2, fine.BoxLevel().NumberOwners())

	cfb, err := hier.NewCoarseFineBoundaryFromHierarchy(h, 1, p.GhostVector())
	require.NoError(t, err)
	assert.True(t, cfb.IsInitialized(hier.BlockZero))
}

func TestDecode_Invalid(t *testing.T) {
	const domain = "dim = 1\n[[domain]]\nlower=[0]\nupper=[3]\n"
	const level = "[[level]]\n[[level.box]]\nlower=[0]\nupper=[3]\n"
	tests := []struct {
		name string
		doc  string
	}{
		{name: "bad dim", doc: "dim = 4\n"},
		{name: "unknown key", doc: "dim = 2\ncolour = 1\n"},
		{name: "no domain", doc: "dim = 1\n" + level},
		{name: "empty box", doc: "dim = 1\n[[domain]]\nlower=[3]\nupper=[0]\n" + level},
		{name: "no levels", doc: domain},
		{name: "ghost length", doc: "dim = 2\nghost_width = [1]\n"},
		{name: "level 0 ratio", doc: domain + "[[level]]\nratio=[2]\n[[level.box]]\nlower=[0]\nupper=[3]\n"},
		{name: "variable kind", doc: domain + level + "[[variable]]\nname=\"u\"\nkind=\"node\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestProblem_EncodeRoundTrip(t *testing.T) {
	p, err := Load("testdata/two_level.toml")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))
	q, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, q)
}

func TestBuild_OverlappingLevelBoxes(t *testing.T) {
	doc := "dim = 1\n[[domain]]\nlower=[0]\nupper=[7]\n" +
		"[[level]]\n[[level.box]]\nlower=[0]\nupper=[4]\n[[level.box]]\nlower=[3]\nupper=[7]\n"
	p, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	_, err = p.Build()
	assert.Error(t, err)
}
