package pathfind

// Neighbour offsets, clockwise from west. Even entries are straight.
var (
	dirX = [8]int32{-1, -1, 0, 1, 1, 1, 0, -1}
	dirY = [8]int32{0, -1, -1, -1, 0, 1, 1, 1}
)

// AStar is the plain 8-directional search. A diagonal step is allowed
// only when both orthogonal cells beside it are open, the same movement
// rule JPS uses, so both finders agree on path cost.
type AStar struct {
	search
}

func NewAStar(g *Grid) *AStar {
	return &AStar{search: newSearch(g)}
}

func (a *AStar) Name() string { return "astar" }

func (a *AStar) FindPath(start, goal Point) (Path, bool) {
	if !a.accepts(start, goal) {
		return Path{}, false
	}
	a.reset(start, goal)

	for {
		id, cur, ok := a.next()
		if !ok {
			return Path{}, false
		}
		if a.isGoal(cur) {
			return a.finish(id), true
		}

		// cur may move when the arena grows; copy what we need.
		cx, cy, cg := cur.X, cur.Y, cur.G
		for d := 0; d < 8; d++ {
			nx, ny := cx+dirX[d], cy+dirY[d]
			if a.grid.Blocked(nx, ny) {
				continue
			}
			cost := StraightCost
			if dirX[d] != 0 && dirY[d] != 0 {
				if a.grid.Blocked(nx, cy) || a.grid.Blocked(cx, ny) {
					continue
				}
				cost = DiagonalCost
			}
			a.open(nx, ny, cg+cost, id)
		}
	}
}
