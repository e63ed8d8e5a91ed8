package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpsworld/server/internal/pathfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlockList(t *testing.T) {
	pts, err := ParseBlockList(strings.NewReader("# walls\n1 2\n\n  3\t4  \n"))
	require.NoError(t, err)
	assert.Equal(t, []pathfind.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, pts)

	_, err = ParseBlockList(strings.NewReader("1 2\n3\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ParseBlockList(strings.NewReader("a 2\n"))
	assert.Error(t, err)
}

func TestLoadBlockList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.txt")
	require.NoError(t, os.WriteFile(path, []byte("5 5\n6 5\n"), 0o644))

	pts, err := LoadBlockList(path)
	require.NoError(t, err)
	assert.Len(t, pts, 2)

	_, err = LoadBlockList(filepath.Join(t.TempDir(), "none.txt"))
	assert.Error(t, err)
}

func TestLoadMapDef(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: test
width: 20
height: 10
blocked:
  - [1, 1]
  - [25, 3]
rects:
  - {x: 4, y: 2, w: 2, h: 2}
`), 0o644))

	def, err := LoadMapDef(path)
	require.NoError(t, err)
	assert.Equal(t, "test", def.Name)
	assert.Equal(t, int32(20), def.Width)

	cells := def.Cells()
	assert.Equal(t, []pathfind.Point{
		{X: 1, Y: 1}, {X: 25, Y: 3},
		{X: 4, Y: 2}, {X: 5, Y: 2}, {X: 4, Y: 3}, {X: 5, Y: 3},
	}, cells)

	g := pathfind.NewGrid(def.Width, def.Height)
	outside := BlockAll(g, cells)
	assert.Equal(t, []pathfind.Point{{X: 25, Y: 3}}, outside)
	assert.Equal(t, 5, g.BlockedCount())
	assert.True(t, g.Blocked(5, 3))
}

func TestLoadMapDefRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rects:\n  - {x: 0, y: 0, w: -1, h: 1}\n"), 0o644))
	_, err := LoadMapDef(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("width: [\n"), 0o644))
	_, err = LoadMapDef(path)
	assert.Error(t, err)
}
