package pathfind

import "fmt"

// Point is an integer grid cell.
type Point struct {
	X, Y int32
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Grid is a width×height passability map stored as one flat buffer
// indexed by y*width+x. Cells outside the bounds read as blocked.
// Not safe for concurrent mutation; the world lock guards it.
type Grid struct {
	width   int32
	height  int32
	blocked []bool
}

// NewGrid creates an all-open grid. Dimensions must be positive.
func NewGrid(width, height int32) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("pathfind: invalid grid size %dx%d", width, height))
	}
	return &Grid{
		width:   width,
		height:  height,
		blocked: make([]bool, int(width)*int(height)),
	}
}

func (g *Grid) Width() int32 { return g.width }
func (g *Grid) Height() int32 { return g.height }

// Size returns the total cell count.
func (g *Grid) Size() int { return len(g.blocked) }

func (g *Grid) InBounds(x, y int32) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

func (g *Grid) index(x, y int32) int {
	return int(y)*int(g.width) + int(x)
}

// Blocked reports whether (x,y) is impassable. Out of range is blocked.
func (g *Grid) Blocked(x, y int32) bool {
	if !g.InBounds(x, y) {
		return true
	}
	return g.blocked[g.index(x, y)]
}

// Walkable is the negation of Blocked.
func (g *Grid) Walkable(x, y int32) bool {
	return !g.Blocked(x, y)
}

// Block marks a cell impassable. Returns false if (x,y) is out of range.
func (g *Grid) Block(x, y int32) bool {
	return g.set(x, y, true)
}

// Unblock marks a cell passable. Returns false if (x,y) is out of range.
func (g *Grid) Unblock(x, y int32) bool {
	return g.set(x, y, false)
}

func (g *Grid) set(x, y int32, v bool) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.blocked[g.index(x, y)] = v
	return true
}

// BlockedCount returns the number of impassable cells.
func (g *Grid) BlockedCount() int {
	n := 0
	for _, b := range g.blocked {
		if b {
			n++
		}
	}
	return n
}

// LineClear reports whether every cell rasterized between a and b is walkable.
func (g *Grid) LineClear(a, b Point) bool {
	it := NewLine(a.X, a.Y, b.X, b.Y)
	for it.Next() {
		if g.Blocked(it.X(), it.Y()) {
			return false
		}
	}
	return true
}
