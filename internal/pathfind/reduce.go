package pathfind

// Reduce removes waypoints that a straight line can skip. raw runs from
// start to goal. Working back from the goal, the current anchor is joined
// to the farthest ancestor whose rasterized line is clear; when the next
// ancestor is not visible the anchor moves to the last visible one.
// The result is start to goal and never longer than raw.
func Reduce(g *Grid, raw []Point) []Point {
	if len(raw) <= 2 {
		out := make([]Point, len(raw))
		copy(out, raw)
		return out
	}

	last := len(raw) - 1
	kept := []Point{raw[last]}
	anchor := last
	for end := last - 2; end >= 0; end-- {
		if g.LineClear(raw[anchor], raw[end]) {
			continue
		}
		anchor = end + 1
		kept = append(kept, raw[anchor])
	}
	kept = append(kept, raw[0])

	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}
