package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jpsworld/server/internal/pathfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMapAPI(t *testing.T) {
	g := pathfind.NewGrid(10, 8)
	e := NewEngine(g, zap.NewNop())
	defer e.Close()

	require.NoError(t, e.RunString(`
		assert(map_width() == 10)
		assert(map_height() == 8)
		assert(block(1, 1))
		assert(not block(10, 1))
		assert(block_rect(3, 3, 2, 3) == 6)
		assert(is_blocked(4, 5))
		assert(unblock(4, 5))
		assert(not is_blocked(4, 5))
	`))

	assert.True(t, g.Blocked(1, 1))
	assert.True(t, g.Blocked(3, 3))
	assert.False(t, g.Blocked(4, 5))
	assert.Equal(t, 6, g.BlockedCount())
	assert.Equal(t, 8, e.Changed())
}

func TestBlockRectClipsToGrid(t *testing.T) {
	g := pathfind.NewGrid(5, 5)
	e := NewEngine(g, zap.NewNop())
	defer e.Close()

	require.NoError(t, e.RunString(`n = block_rect(3, 3, 4, 4)`))
	assert.Equal(t, 4, g.BlockedCount())
}

func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01_wall.lua"), []byte("for y = 0, 4 do block(2, y) end\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02_door.lua"), []byte("unblock(2, 2)\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not lua"), 0o644))

	g := pathfind.NewGrid(5, 5)
	e := NewEngine(g, zap.NewNop())
	defer e.Close()

	require.NoError(t, e.RunDir(dir))
	assert.Equal(t, 4, g.BlockedCount())
	assert.False(t, g.Blocked(2, 2))

	assert.NoError(t, e.RunDir(filepath.Join(dir, "missing")))
}

func TestScriptError(t *testing.T) {
	g := pathfind.NewGrid(5, 5)
	e := NewEngine(g, zap.NewNop())
	defer e.Close()

	assert.Error(t, e.RunString(`block("x")`))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("this is not lua"), 0o644))
	assert.Error(t, e.RunDir(dir))
}
