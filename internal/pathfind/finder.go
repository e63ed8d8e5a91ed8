package pathfind

import "fmt"

// Path is the result of a successful search.
type Path struct {
	Points   []Point // string-pulled waypoints, start to goal
	Raw      []Point // unreduced parent chain, start to goal
	Cost     int32   // G of the goal node
	Expanded int     // nodes popped from the open list
}

// Finder computes paths over a Grid. Implementations keep per-search
// scratch state and must not be used from two goroutines at once.
type Finder interface {
	FindPath(start, goal Point) (Path, bool)
	Name() string
}

// New returns the finder registered under name ("jps" or "astar").
func New(name string, g *Grid) (Finder, error) {
	switch name {
	case "jps":
		return NewJPS(g), nil
	case "astar":
		return NewAStar(g), nil
	}
	return nil, fmt.Errorf("unknown path finder %q", name)
}

// search is the scratch state shared by both finders: the open list
// with its arena and a per-cell table of the node created for each
// coordinate during the current search.
type search struct {
	grid     *Grid
	queue    *Queue
	nodeAt   []NodeID
	goal     Point
	expanded int
}

func newSearch(g *Grid) search {
	return search{
		grid:   g,
		queue:  NewQueue(g.Width(), g.Height()),
		nodeAt: make([]NodeID, g.Size()),
	}
}

// accepts rejects out-of-range or blocked endpoints.
func (s *search) accepts(start, goal Point) bool {
	return s.grid.Walkable(start.X, start.Y) && s.grid.Walkable(goal.X, goal.Y)
}

func (s *search) reset(start, goal Point) {
	s.queue.Clear()
	for i := range s.nodeAt {
		s.nodeAt[i] = NoNode
	}
	s.goal = goal
	s.expanded = 0
	s.open(start.X, start.Y, 0, NoNode)
}

// open creates the node for (x,y) with cost g, or lowers the cost of the
// node already created there and repairs its heap position. An equal or
// worse cost is ignored.
func (s *search) open(x, y, g int32, parent NodeID) {
	cell := s.grid.index(x, y)
	if id := s.nodeAt[cell]; id != NoNode {
		n := s.queue.Node(id)
		if g >= n.G {
			return
		}
		n.G = g
		n.F = g + n.H
		n.Parent = parent
		s.queue.RepairAt(x, y)
		return
	}

	id := s.queue.NewNode(x, y, g, Heuristic(x, y, s.goal.X, s.goal.Y), parent)
	if !s.queue.Push(id) {
		panic(fmt.Sprintf("pathfind: open list full at %d nodes", s.queue.Len()))
	}
	s.nodeAt[cell] = id
}

// next pops the best node. ok is false once the open list is exhausted.
func (s *search) next() (NodeID, *Node, bool) {
	if s.queue.Empty() {
		return NoNode, nil, false
	}
	id := s.queue.Pop()
	s.expanded++
	return id, s.queue.Node(id), true
}

func (s *search) isGoal(n *Node) bool {
	return n.X == s.goal.X && n.Y == s.goal.Y
}

// finish walks the parent chain from the goal and builds the path.
func (s *search) finish(goal NodeID) Path {
	var chain []Point
	for id := goal; id != NoNode; id = s.queue.Node(id).Parent {
		n := s.queue.Node(id)
		chain = append(chain, Point{n.X, n.Y})
	}
	raw := make([]Point, len(chain))
	for i, p := range chain {
		raw[len(chain)-1-i] = p
	}
	return Path{
		Points:   Reduce(s.grid, raw),
		Raw:      raw,
		Cost:     s.queue.Node(goal).G,
		Expanded: s.expanded,
	}
}
