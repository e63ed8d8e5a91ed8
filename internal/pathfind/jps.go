package pathfind

// JPS is Jump Point Search over the same grid and open list as AStar,
// with the same no-corner-cutting rule: a diagonal step needs both
// orthogonal cells beside it open.
//
// Expansion only scans the directions a node's arrival direction leaves
// open. Straight scans stop at the goal, at a wall (no jump point) or at
// a cell with a forced neighbour: a side cell that is open while the
// cell behind it, one step back along the scan, is blocked. Diagonal
// scans run both straight component scans at every step and stop on
// the diagonal cell as soon as one of them finds something.
type JPS struct {
	search
}

func NewJPS(g *Grid) *JPS {
	return &JPS{search: newSearch(g)}
}

func (j *JPS) Name() string { return "jps" }

func (j *JPS) FindPath(start, goal Point) (Path, bool) {
	if !j.accepts(start, goal) {
		return Path{}, false
	}
	j.reset(start, goal)

	for {
		id, cur, ok := j.next()
		if !ok {
			return Path{}, false
		}
		if j.isGoal(cur) {
			return j.finish(id), true
		}
		j.expand(id, *cur)
	}
}

// expand scans every direction allowed by cur's arrival direction.
func (j *JPS) expand(id NodeID, cur Node) {
	if cur.Parent == NoNode {
		for d := 0; d < 8; d++ {
			j.scan(id, cur, dirX[d], dirY[d])
		}
		return
	}

	p := j.queue.Node(cur.Parent)
	dx := sign32(cur.X - p.X)
	dy := sign32(cur.Y - p.Y)

	switch {
	case dx != 0 && dy != 0:
		j.scan(id, cur, dx, 0)
		j.scan(id, cur, 0, dy)
		j.scan(id, cur, dx, dy)
	case dx != 0:
		j.scan(id, cur, dx, 0)
		for _, s := range [2]int32{-1, 1} {
			if j.grid.Walkable(cur.X, cur.Y+s) && j.grid.Blocked(cur.X-dx, cur.Y+s) {
				j.scan(id, cur, 0, s)
				j.scan(id, cur, dx, s)
			}
		}
	default:
		j.scan(id, cur, 0, dy)
		for _, s := range [2]int32{-1, 1} {
			if j.grid.Walkable(cur.X+s, cur.Y) && j.grid.Blocked(cur.X+s, cur.Y-dy) {
				j.scan(id, cur, s, 0)
				j.scan(id, cur, s, dy)
			}
		}
	}
}

// scan jumps from cur in (dx,dy) and opens the jump point it finds.
func (j *JPS) scan(id NodeID, cur Node, dx, dy int32) {
	if dx != 0 && dy != 0 {
		if x, y, steps, ok := j.jumpDiagonal(cur.X, cur.Y, dx, dy); ok {
			j.open(x, y, cur.G+steps*DiagonalCost, id)
		}
		return
	}
	if x, y, steps, ok := j.jumpStraight(cur.X, cur.Y, dx, dy); ok {
		j.open(x, y, cur.G+steps*StraightCost, id)
	}
}

// jumpStraight walks from (x,y) along an axis. It returns the jump point
// and the number of cells travelled.
func (j *JPS) jumpStraight(x, y, dx, dy int32) (int32, int32, int32, bool) {
	var steps int32
	for {
		x += dx
		y += dy
		steps++
		if j.grid.Blocked(x, y) {
			return 0, 0, 0, false
		}
		if x == j.goal.X && y == j.goal.Y {
			return x, y, steps, true
		}
		if j.forced(x, y, dx, dy) {
			return x, y, steps, true
		}
	}
}

// jumpDiagonal walks from (x,y) diagonally. A step whose corner cells are
// not both open ends the scan without a jump point.
func (j *JPS) jumpDiagonal(x, y, dx, dy int32) (int32, int32, int32, bool) {
	var steps int32
	for {
		if j.grid.Blocked(x+dx, y) || j.grid.Blocked(x, y+dy) {
			return 0, 0, 0, false
		}
		x += dx
		y += dy
		steps++
		if j.grid.Blocked(x, y) {
			return 0, 0, 0, false
		}
		if x == j.goal.X && y == j.goal.Y {
			return x, y, steps, true
		}
		if _, _, _, ok := j.jumpStraight(x, y, dx, 0); ok {
			return x, y, steps, true
		}
		if _, _, _, ok := j.jumpStraight(x, y, 0, dy); ok {
			return x, y, steps, true
		}
	}
}

// forced reports whether a straight scan in (dx,dy) passing (x,y) has to
// stop there because a turn becomes necessary.
func (j *JPS) forced(x, y, dx, dy int32) bool {
	g := j.grid
	if dx != 0 {
		return (g.Walkable(x, y+1) && g.Blocked(x-dx, y+1)) ||
			(g.Walkable(x, y-1) && g.Blocked(x-dx, y-1))
	}
	return (g.Walkable(x+1, y) && g.Blocked(x+1, y-dy)) ||
		(g.Walkable(x-1, y) && g.Blocked(x-1, y-dy))
}
