package engine

import (
	"container/heap"
	"fmt"
)

// neighbours is the fixed expansion order: down, right, up, left
var neighbours = [4]struct{ dx, dy int }{
	{0, 1},
	{1, 0},
	{0, -1},
	{-1, 0},
}

// Solve computes the minimum cost of walking from (0,0) to (N-1,N-1) and one path
// achieving it. Entering a cell costs its value; the start cell is never charged.
//
// The frontier is ordered by accumulated cost, then by discovery order. A cell's
// predecessor is only replaced on a strictly cheaper route, so among equal-cost
// routes the one discovered first wins and repeated solves return the same path.
func Solve(grid Grid) (int, Path, error) {
	n := len(grid)
	if n < MinGridSize {
		return 0, nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	for y, row := range grid {
		for x, v := range row {
			if v < 0 {
				return 0, nil, fmt.Errorf("%w: negative cost %d at (%d,%d)", ErrInvalidGrid, v, x, y)
			}
		}
	}

	start := Position{X: 0, Y: 0}
	goal := grid.Goal()
	if !grid.InBounds(start) || !grid.InBounds(goal) {
		return 0, nil, fmt.Errorf("%w: start or goal cell missing", ErrUnreachable)
	}

	dist := make([]int, n*n)
	prev := make([]int, n*n)
	for i := range dist {
		dist[i] = -1
		prev[i] = -1
	}
	index := func(p Position) int { return p.Y*n + p.X }

	frontier := &costHeap{}
	var seq uint64
	dist[index(start)] = 0
	heap.Push(frontier, &costNode{pos: start, cost: 0, seq: seq})

	for frontier.Len() > 0 {
		cur := heap.Pop(frontier).(*costNode)
		if cur.cost > dist[index(cur.pos)] {
			continue
		}
		if cur.pos == goal {
			return cur.cost, reconstructPath(prev, n, goal), nil
		}

		for _, d := range neighbours {
			next := Position{X: cur.pos.X + d.dx, Y: cur.pos.Y + d.dy}
			if next.X >= n || !grid.InBounds(next) {
				continue
			}
			cost := cur.cost + grid.At(next)
			i := index(next)
			if dist[i] == -1 || cost < dist[i] {
				dist[i] = cost
				prev[i] = index(cur.pos)
				seq++
				heap.Push(frontier, &costNode{pos: next, cost: cost, seq: seq})
			}
		}
	}

	return 0, nil, fmt.Errorf("%w: no path from %s to %s", ErrUnreachable, start, goal)
}

// reconstructPath walks the predecessor table back from goal to the start
func reconstructPath(prev []int, n int, goal Position) Path {
	var reversed Path
	for i := goal.Y*n + goal.X; i != -1; i = prev[i] {
		reversed = append(reversed, Position{X: i % n, Y: i / n})
	}

	path := make(Path, len(reversed))
	for i, p := range reversed {
		path[len(reversed)-1-i] = p
	}
	return path
}

// costNode is a frontier entry
type costNode struct {
	pos  Position
	cost int
	seq  uint64
}

// costHeap implements heap.Interface ordered by (cost, seq)
type costHeap []*costNode

func (h costHeap) Len() int { return len(h) }

func (h costHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}

func (h costHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *costHeap) Push(x interface{}) {
	*h = append(*h, x.(*costNode))
}

func (h *costHeap) Pop() interface{} {
	old := *h
	n := len(old)
	node := old[n-1]
	*h = old[0 : n-1]
	return node
}
