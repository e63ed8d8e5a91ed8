package pathfind

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finders(g *Grid) []Finder {
	return []Finder{NewJPS(g), NewAStar(g)}
}

func TestFindPathOpenDiagonal(t *testing.T) {
	g := NewGrid(10, 10)
	for _, f := range finders(g) {
		path, ok := f.FindPath(Point{0, 0}, Point{9, 9})
		require.True(t, ok, f.Name())
		assert.Equal(t, int32(63), path.Cost, f.Name())
		assert.Equal(t, []Point{{0, 0}, {9, 9}}, path.Points, f.Name())
	}
}

func TestJPSOpenDiagonalIsOneJump(t *testing.T) {
	g := NewGrid(10, 10)
	path, ok := NewJPS(g).FindPath(Point{0, 0}, Point{9, 9})
	require.True(t, ok)
	assert.Equal(t, []Point{{0, 0}, {9, 9}}, path.Raw)
}

func wallGrid() *Grid {
	g := NewGrid(10, 10)
	for x := int32(0); x < 10; x++ {
		if x != 5 {
			g.Block(x, 5)
		}
	}
	return g
}

func TestFindPathThroughGap(t *testing.T) {
	g := wallGrid()
	for _, f := range finders(g) {
		path, ok := f.FindPath(Point{0, 0}, Point{0, 9})
		require.True(t, ok, f.Name())
		assert.Equal(t, int32(74), path.Cost, f.Name())

		visited := map[Point]bool{}
		for i := 1; i < len(path.Points); i++ {
			require.True(t, g.LineClear(path.Points[i-1], path.Points[i]), f.Name())
			for _, c := range LineCells(path.Points[i-1], path.Points[i]) {
				visited[c] = true
			}
		}
		assert.True(t, visited[Point{5, 5}], "%s must pass the gap", f.Name())
	}
}

func TestFindPathRejects(t *testing.T) {
	g := NewGrid(8, 8)
	g.Block(3, 3)
	for _, f := range finders(g) {
		_, ok := f.FindPath(Point{3, 3}, Point{0, 0})
		assert.False(t, ok, "blocked start")
		_, ok = f.FindPath(Point{0, 0}, Point{3, 3})
		assert.False(t, ok, "blocked goal")
		_, ok = f.FindPath(Point{-1, 0}, Point{0, 0})
		assert.False(t, ok, "start out of range")
		_, ok = f.FindPath(Point{0, 0}, Point{8, 0})
		assert.False(t, ok, "goal out of range")
	}
}

func TestFindPathUnreachable(t *testing.T) {
	g := NewGrid(8, 8)
	// Box around (5,5).
	for x := int32(4); x <= 6; x++ {
		for y := int32(4); y <= 6; y++ {
			if x != 5 || y != 5 {
				g.Block(x, y)
			}
		}
	}
	for _, f := range finders(g) {
		_, ok := f.FindPath(Point{0, 0}, Point{5, 5})
		assert.False(t, ok, f.Name())
	}
}

func TestFindPathNoCornerCutting(t *testing.T) {
	g := NewGrid(2, 2)
	g.Block(1, 0)
	for _, f := range finders(g) {
		path, ok := f.FindPath(Point{0, 0}, Point{1, 1})
		require.True(t, ok, f.Name())
		assert.Equal(t, int32(10), path.Cost, f.Name())
	}

	g.Block(0, 1)
	for _, f := range finders(g) {
		_, ok := f.FindPath(Point{0, 0}, Point{1, 1})
		assert.False(t, ok, "%s squeezed between two corners", f.Name())
	}
}

func TestFindPathSameCell(t *testing.T) {
	g := NewGrid(4, 4)
	for _, f := range finders(g) {
		path, ok := f.FindPath(Point{2, 2}, Point{2, 2})
		require.True(t, ok)
		assert.Equal(t, int32(0), path.Cost)
		assert.Equal(t, []Point{{2, 2}}, path.Points)
	}
}

func randomGrid(rng *rand.Rand, w, h int32, density float64) *Grid {
	g := NewGrid(w, h)
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			if rng.Float64() < density {
				g.Block(x, y)
			}
		}
	}
	return g
}

func randomOpenCell(rng *rand.Rand, g *Grid) Point {
	for {
		p := Point{int32(rng.Intn(int(g.Width()))), int32(rng.Intn(int(g.Height())))}
		if g.Walkable(p.X, p.Y) {
			return p
		}
	}
}

// rawCost sums the octile length of each raw segment. Raw segments are
// straight or exactly diagonal, so this equals the walked cost.
func rawCost(raw []Point) int32 {
	var c int32
	for i := 1; i < len(raw); i++ {
		a, b := raw[i-1], raw[i]
		dx, dy := abs32(b.X-a.X), abs32(b.Y-a.Y)
		if dx != 0 && dy != 0 && dx != dy {
			return -1
		}
		c += Heuristic(a.X, a.Y, b.X, b.Y)
	}
	return c
}

func TestJPSMatchesAStarCost(t *testing.T) {
	for seed := int64(1); seed <= 12; seed++ {
		rng := rand.New(rand.NewSource(seed))
		density := 0.1 + 0.03*float64(seed)
		g := randomGrid(rng, 32, 24, density)
		jps, astar := NewJPS(g), NewAStar(g)

		for i := 0; i < 60; i++ {
			start, goal := randomOpenCell(rng, g), randomOpenCell(rng, g)

			jp, jok := jps.FindPath(start, goal)
			ap, aok := astar.FindPath(start, goal)
			require.Equal(t, aok, jok, "seed %d %v -> %v", seed, start, goal)
			if !aok {
				continue
			}
			require.Equal(t, ap.Cost, jp.Cost, "seed %d %v -> %v", seed, start, goal)
			require.Equal(t, jp.Cost, rawCost(jp.Raw))
			require.Equal(t, ap.Cost, rawCost(ap.Raw))

			for _, p := range []Path{jp, ap} {
				require.LessOrEqual(t, len(p.Points), len(p.Raw))
				require.Equal(t, start, p.Points[0])
				require.Equal(t, goal, p.Points[len(p.Points)-1])
				for k := 1; k < len(p.Points); k++ {
					require.True(t, g.LineClear(p.Points[k-1], p.Points[k]))
				}
			}
		}
	}
}

func TestJPSExpandsFewerNodes(t *testing.T) {
	g := NewGrid(64, 64)
	start, goal := Point{0, 0}, Point{63, 40}

	jp, ok := NewJPS(g).FindPath(start, goal)
	require.True(t, ok)
	ap, ok := NewAStar(g).FindPath(start, goal)
	require.True(t, ok)

	assert.Equal(t, ap.Cost, jp.Cost)
	assert.Less(t, jp.Expanded, ap.Expanded)
}

func TestFinderReuse(t *testing.T) {
	g := wallGrid()
	f := NewJPS(g)
	first, ok := f.FindPath(Point{0, 0}, Point{0, 9})
	require.True(t, ok)
	_, ok = f.FindPath(Point{9, 0}, Point{9, 9})
	require.True(t, ok)
	again, ok := f.FindPath(Point{0, 0}, Point{0, 9})
	require.True(t, ok)
	assert.Equal(t, first, again)
}

func TestNewFinder(t *testing.T) {
	g := NewGrid(4, 4)

	f, err := New("jps", g)
	require.NoError(t, err)
	assert.Equal(t, "jps", f.Name())

	f, err = New("astar", g)
	require.NoError(t, err)
	assert.Equal(t, "astar", f.Name())

	_, err = New("dijkstra", g)
	assert.Error(t, err)
}

func benchmarkFinder(b *testing.B, f func(*Grid) Finder) {
	rng := rand.New(rand.NewSource(42))
	g := randomGrid(rng, 100, 100, 0.2)
	pairs := make([][2]Point, 64)
	for i := range pairs {
		pairs[i] = [2]Point{randomOpenCell(rng, g), randomOpenCell(rng, g)}
	}
	finder := f(g)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := pairs[i%len(pairs)]
		finder.FindPath(p[0], p[1])
	}
}

func BenchmarkJPS(b *testing.B) {
	benchmarkFinder(b, func(g *Grid) Finder { return NewJPS(g) })
}

func BenchmarkAStar(b *testing.B) {
	benchmarkFinder(b, func(g *Grid) Finder { return NewAStar(g) })
}
