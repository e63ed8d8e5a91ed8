package pathfind

import "fmt"

// Queue is the open list: a binary heap of node handles whose top is the
// highest-priority node (see Node.Before). It owns the node arena for the
// current search and keeps a cell → heap slot table that is updated on
// every swap, so Find is O(1).
//
// Capacity is the grid's cell count. Push past capacity is refused.
type Queue struct {
	width int32
	nodes []Node   // arena
	heap  []NodeID // heap[0] is top
	slot  []int32  // per cell: heap index + 1, 0 when not queued
	limit int
}

// NewQueue sizes a queue for a width×height grid.
func NewQueue(width, height int32) *Queue {
	n := int(width) * int(height)
	return &Queue{
		width: width,
		nodes: make([]Node, 0, n),
		heap:  make([]NodeID, 0, n),
		slot:  make([]int32, n),
		limit: n,
	}
}

// NewNode allocates a node in the arena. It is not queued until Push.
func (q *Queue) NewNode(x, y, g, h int32, parent NodeID) NodeID {
	q.nodes = append(q.nodes, Node{X: x, Y: y, G: g, H: h, F: g + h, Parent: parent})
	return NodeID(len(q.nodes) - 1)
}

// Node returns the arena entry for id. The pointer is valid until the
// next NewNode or Clear.
func (q *Queue) Node(id NodeID) *Node {
	return &q.nodes[id]
}

func (q *Queue) Len() int { return len(q.heap) }
func (q *Queue) Empty() bool { return len(q.heap) == 0 }

// Push inserts id and sifts it up. Returns false, leaving the queue
// unchanged, when the queue is full.
func (q *Queue) Push(id NodeID) bool {
	if len(q.heap) >= q.limit {
		return false
	}
	q.heap = append(q.heap, id)
	i := len(q.heap) - 1
	q.place(i)
	q.siftUp(i)
	return true
}

// Top returns the highest-priority node without removing it.
func (q *Queue) Top() NodeID {
	return q.heap[0]
}

// Pop removes and returns the top. The queue must not be empty.
func (q *Queue) Pop() NodeID {
	top := q.heap[0]
	q.slot[q.cell(top)] = 0

	last := len(q.heap) - 1
	if last > 0 {
		q.heap[0] = q.heap[last]
		q.place(0)
	}
	q.heap = q.heap[:last]
	if last > 0 {
		q.siftDown(0)
	}
	return top
}

// Find returns the heap index of the queued node at (x,y).
func (q *Queue) Find(x, y int32) (int, bool) {
	s := q.slot[int(y)*int(q.width)+int(x)]
	if s == 0 {
		return 0, false
	}
	return int(s - 1), true
}

// At returns the handle stored at heap index i.
func (q *Queue) At(i int) NodeID {
	return q.heap[i]
}

// Repair restores heap order after the node at index had its priority
// raised in place. It only sifts up; lowering a priority is not supported.
func (q *Queue) Repair(index int) {
	if index < 0 || index >= len(q.heap) {
		panic(fmt.Sprintf("pathfind: repair index %d out of range (len %d)", index, len(q.heap)))
	}
	q.siftUp(index)
}

// RepairAt is Repair for the queued node at (x,y). A missing entry is a
// broken search invariant and panics.
func (q *Queue) RepairAt(x, y int32) {
	i, ok := q.Find(x, y)
	if !ok {
		panic(fmt.Sprintf("pathfind: repair of (%d,%d) with no queued node", x, y))
	}
	q.siftUp(i)
}

// Clear drops every queued node and resets the arena.
func (q *Queue) Clear() {
	for _, id := range q.heap {
		q.slot[q.cell(id)] = 0
	}
	q.heap = q.heap[:0]
	q.nodes = q.nodes[:0]
}

func (q *Queue) cell(id NodeID) int {
	n := &q.nodes[id]
	return int(n.Y)*int(q.width) + int(n.X)
}

func (q *Queue) place(i int) {
	q.slot[q.cell(q.heap[i])] = int32(i + 1)
}

func (q *Queue) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.place(i)
	q.place(j)
}

func (q *Queue) before(i, j int) bool {
	return q.nodes[q.heap[i]].Before(&q.nodes[q.heap[j]])
}

func (q *Queue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.before(i, parent) {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

// siftDown takes the left child unless the right one is strictly higher.
func (q *Queue) siftDown(i int) {
	n := len(q.heap)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		child := left
		if right := left + 1; right < n && q.before(right, left) {
			child = right
		}
		if !q.before(child, i) {
			return
		}
		q.swap(i, child)
		i = child
	}
}
