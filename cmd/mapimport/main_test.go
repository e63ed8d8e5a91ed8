package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jpsworld/server/internal/pathfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMapByExtension(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "map.txt")
	yml := filepath.Join(dir, "map.YML")
	require.NoError(t, os.WriteFile(txt, []byte("1 2\n"), 0o644))
	require.NoError(t, os.WriteFile(yml, []byte("rects:\n  - {x: 0, y: 0, w: 2, h: 1}\n"), 0o644))

	pts, err := readMap(txt)
	require.NoError(t, err)
	assert.Equal(t, []pathfind.Point{{X: 1, Y: 2}}, pts)

	pts, err = readMap(yml)
	require.NoError(t, err)
	assert.Equal(t, []pathfind.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, pts)
}
