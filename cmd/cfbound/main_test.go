package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const problemFile = "../../config/testdata/two_level.toml"

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestBoundariesCommand(t *testing.T) {
	out := run(t, "boundaries", problemFile)
	assert.Contains(t, out, "level 0\n")
	assert.Contains(t, out, "level 1\n")
	assert.Contains(t, out, "type 1 loc 2")

	one := run(t, "boundaries", "--level", "1", problemFile)
	assert.NotContains(t, one, "level 0\n")
}

func TestCheckpointCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "patches.db")
	run(t, "checkpoint", "--log-level", "warn", "--time", "1.5", problemFile, file)

	out := run(t, "checkpoint", "--restore", problemFile, file)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Three patches, each with two components
	assert.Len(t, lines, 3*3)
	assert.Contains(t, out, "density##CURRENT time 1.5")
	assert.Contains(t, out, "level 1 in hierarchy true")
}

func TestRootCommand_BadLogLevel(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"--log-level", "loud", "boundaries", problemFile})
	assert.Error(t, root.Execute())
}
