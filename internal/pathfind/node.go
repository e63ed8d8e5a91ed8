package pathfind

// Step costs, scaled by 5 so √2 ≈ 1.4 stays integral.
const (
	StraightCost int32 = 5
	DiagonalCost int32 = 7
)

// NodeID is a handle into a search's node arena. Handles are only
// valid until the owning queue is cleared.
type NodeID int32

// NoNode marks the absent parent of a start node.
const NoNode NodeID = -1

// Node is one discovered cell of a search.
type Node struct {
	X, Y   int32
	G      int32 // cost from start
	H      int32 // octile estimate to goal
	F      int32 // G + H
	Parent NodeID
}

// Before reports whether n has strictly higher priority than o:
// lower F first, then lower H.
func (n *Node) Before(o *Node) bool {
	if n.F != o.F {
		return n.F < o.F
	}
	return n.H < o.H
}

// Heuristic is the octile distance between two cells.
func Heuristic(x0, y0, x1, y1 int32) int32 {
	dx := abs32(x1 - x0)
	dy := abs32(y1 - y0)
	lo, hi := dx, dy
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo*DiagonalCost + (hi-lo)*StraightCost
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign32(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
