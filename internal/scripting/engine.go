package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jpsworld/server/internal/pathfind"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a gopher-lua VM that builds the map at startup. Scripts
// see the grid through map_width, map_height, is_blocked, block,
// unblock and block_rect. Single-goroutine access only; run it before
// the world starts ticking.
type Engine struct {
	vm      *lua.LState
	grid    *pathfind.Grid
	log     *zap.Logger
	changed int
}

// NewEngine creates a Lua engine bound to grid.
func NewEngine(grid *pathfind.Grid, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, grid: grid, log: log}
	e.register()
	return e
}

func (e *Engine) register() {
	e.vm.SetGlobal("map_width", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.grid.Width()))
		return 1
	}))
	e.vm.SetGlobal("map_height", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.grid.Height()))
		return 1
	}))
	e.vm.SetGlobal("is_blocked", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(e.grid.Blocked(int32(L.CheckInt(1)), int32(L.CheckInt(2)))))
		return 1
	}))
	e.vm.SetGlobal("block", e.vm.NewFunction(func(L *lua.LState) int {
		ok := e.grid.Block(int32(L.CheckInt(1)), int32(L.CheckInt(2)))
		if ok {
			e.changed++
		}
		L.Push(lua.LBool(ok))
		return 1
	}))
	e.vm.SetGlobal("unblock", e.vm.NewFunction(func(L *lua.LState) int {
		ok := e.grid.Unblock(int32(L.CheckInt(1)), int32(L.CheckInt(2)))
		if ok {
			e.changed++
		}
		L.Push(lua.LBool(ok))
		return 1
	}))
	e.vm.SetGlobal("block_rect", e.vm.NewFunction(func(L *lua.LState) int {
		x0, y0 := int32(L.CheckInt(1)), int32(L.CheckInt(2))
		w, h := int32(L.CheckInt(3)), int32(L.CheckInt(4))
		n := 0
		for y := y0; y < y0+h; y++ {
			for x := x0; x < x0+w; x++ {
				if e.grid.Block(x, y) {
					n++
				}
			}
		}
		e.changed += n
		L.Push(lua.LNumber(n))
		return 1
	}))
	e.vm.SetGlobal("log", e.vm.NewFunction(func(L *lua.LState) int {
		e.log.Info("lua: " + L.CheckString(1))
		return 0
	}))
}

// RunDir runs every .lua file in dir in name order. A missing
// directory is not an error.
func (e *Engine) RunDir(dir string) error {
	return e.loadDir(dir)
}

// RunString runs a chunk of Lua source, used by tests and tools.
func (e *Engine) RunString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("run lua: %w", err)
	}
	return nil
}

// Changed is the number of cells scripts have set so far.
func (e *Engine) Changed() int { return e.changed }

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}
