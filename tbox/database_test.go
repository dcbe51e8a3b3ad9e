package tbox

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseDatabase writes and reads every value kind through db
func exerciseDatabase(t *testing.T, db Database) {
	t.Helper()
	require.NoError(t, db.PutInteger("n", 3))
	require.NoError(t, db.PutIntegerArray("lo", []int{-1, 0, 4}))
	require.NoError(t, db.PutDouble("t", 0.125))
	require.NoError(t, db.PutDoubleArray("u", []float64{1, 2.5, -3}))
	require.NoError(t, db.PutBool("flag", true))
	require.NoError(t, db.PutString("name", "density"))
	require.NoError(t, db.PutStringArray("names", []string{"a", "b"}))

	sub, err := db.PutDatabase("child")
	require.NoError(t, err)
	require.NoError(t, sub.PutInteger("depth", 2))

	n, err := db.GetInteger("n")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	lo, err := db.GetIntegerArray("lo")
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 0, 4}, lo)
	tm, err := db.GetDouble("t")
	require.NoError(t, err)
	assert.Equal(t, 0.125, tm)
	u, err := db.GetDoubleArray("u")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3}, u)
	flag, err := db.GetBool("flag")
	require.NoError(t, err)
	assert.True(t, flag)
	name, err := db.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "density", name)
	names, err := db.GetStringArray("names")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	assert.True(t, db.IsDatabase("child"))
	assert.False(t, db.IsDatabase("n"))
	assert.True(t, db.KeyExists("child"))
	assert.False(t, db.KeyExists("missing"))
	assert.Equal(t, []string{"child", "flag", "lo", "n", "name", "names", "t", "u"}, db.Keys())

	child, err := db.GetDatabase("child")
	require.NoError(t, err)
	assert.Equal(t, "child", child.Name())
	depth, err := child.GetInteger("depth")
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	_, err = db.GetInteger("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = db.GetDouble("n")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = db.GetInteger("lo")
	assert.ErrorIs(t, err, ErrTypeMismatch, "array read as scalar")
	_, err = db.GetDatabase("n")
	assert.ErrorIs(t, err, ErrNotDatabase)
	_, err = db.GetInteger("child")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	// A value replaces a database of the same name and the reverse
	require.NoError(t, db.PutInteger("child", 1))
	assert.False(t, db.IsDatabase("child"))
	_, err = db.PutDatabase("n")
	require.NoError(t, err)
	assert.True(t, db.IsDatabase("n"))
}

func TestMemoryDatabase_Values(t *testing.T) {
	exerciseDatabase(t, NewMemoryDatabase("root"))
}

func TestMemoryDatabase_MarshalRoundTrip(t *testing.T) {
	m := NewMemoryDatabase("root")
	require.NoError(t, m.PutDoubleArray("u", []float64{1, 2}))
	sub, err := m.PutDatabase("empty")
	require.NoError(t, err)
	_ = sub

	raw, err := m.MarshalBinary()
	require.NoError(t, err)
	again, err := m.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, raw, again, "encoding is deterministic")

	out := NewMemoryDatabase("")
	require.NoError(t, out.UnmarshalBinary(raw))
	assert.Equal(t, "root", out.Name())
	u, err := out.GetDoubleArray("u")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, u)

	empty, err := out.GetDatabase("empty")
	require.NoError(t, err)
	require.NoError(t, empty.PutInteger("x", 1), "decoded empty databases are writable")
}

func TestBoltFile_Values(t *testing.T) {
	f, err := OpenBoltFile(filepath.Join(t.TempDir(), "values.db"), BoltOptions{IsTesting: true})
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Update(func(root Database) error {
		exerciseDatabase(t, root)
		return nil
	}))
}

func TestBoltFile_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	f, err := OpenBoltFile(path, BoltOptions{IsTesting: true})
	require.NoError(t, err)

	assert.ErrorIs(t, f.View(func(Database) error { return nil }), ErrKeyNotFound, "no root yet")

	require.NoError(t, f.Update(func(root Database) error {
		level, err := root.PutDatabase("level_0")
		if err != nil {
			return err
		}
		return level.PutDoubleArray("d_array", []float64{0.5, 1.5})
	}))
	require.NoError(t, f.Close())

	f, err = OpenBoltFile(path, BoltOptions{IsTesting: true})
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, path, f.Path())
	require.NoError(t, f.View(func(root Database) error {
		level, err := root.GetDatabase("level_0")
		if err != nil {
			return err
		}
		vals, err := level.GetDoubleArray("d_array")
		if err != nil {
			return err
		}
		assert.Equal(t, []float64{0.5, 1.5}, vals)
		return nil
	}))
}
