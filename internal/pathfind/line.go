package pathfind

// Line steps through the cells of a digital line from start to end,
// inclusive. The longer axis advances every step; the shorter axis
// follows the rounded ideal coordinate using an integer remainder kept
// in [0, 2*major). Rounding is floor(t + 1/2) on the exact rational,
// which makes the cell set of A→B equal to the reversed cell set of B→A.
//
// A Line is one-shot: once Next returns false it stays exhausted.
type Line struct {
	x, y     int32
	endX     int32
	endY     int32
	stepX    int32
	stepY    int32
	major    int32
	minor    int32
	rem      int32
	xMajor   bool
	started  bool
	finished bool
}

// NewLine creates a line iterator from (x0,y0) to (x1,y1).
func NewLine(x0, y0, x1, y1 int32) *Line {
	l := &Line{x: x0, y: y0, endX: x1, endY: y1, stepX: 1, stepY: 1}

	dx := x1 - x0
	dy := y1 - y0
	if dx < 0 {
		l.stepX = -1
		dx = -dx
	}
	if dy < 0 {
		l.stepY = -1
		dy = -dy
	}

	// Ties go to X so both directions pick the same axis.
	if dx >= dy {
		l.xMajor = true
		l.major, l.minor = dx, dy
	} else {
		l.major, l.minor = dy, dx
	}
	l.rem = l.major
	return l
}

// Next advances to the next cell. The first call yields the start cell.
func (l *Line) Next() bool {
	if l.finished {
		return false
	}
	if !l.started {
		l.started = true
		return true
	}
	if l.x == l.endX && l.y == l.endY {
		l.finished = true
		return false
	}

	minorStep := false
	if l.minorSign() > 0 {
		l.rem += 2 * l.minor
		if l.rem >= 2*l.major {
			l.rem -= 2 * l.major
			minorStep = true
		}
	} else {
		l.rem -= 2 * l.minor
		if l.rem < 0 {
			l.rem += 2 * l.major
			minorStep = true
		}
	}

	if l.xMajor {
		l.x += l.stepX
		if minorStep {
			l.y += l.stepY
		}
	} else {
		l.y += l.stepY
		if minorStep {
			l.x += l.stepX
		}
	}
	return true
}

func (l *Line) minorSign() int32 {
	if l.xMajor {
		return l.stepY
	}
	return l.stepX
}

// X returns the current cell's X.
func (l *Line) X() int32 { return l.x }

// Y returns the current cell's Y.
func (l *Line) Y() int32 { return l.y }

// LineCells collects every cell of the line from a to b.
func LineCells(a, b Point) []Point {
	it := NewLine(a.X, a.Y, b.X, b.Y)
	var cells []Point
	for it.Next() {
		cells = append(cells, Point{it.X(), it.Y()})
	}
	return cells
}
