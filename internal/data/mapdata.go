package data

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jpsworld/server/internal/pathfind"
	"gopkg.in/yaml.v3"
)

// LoadBlockList reads a text map: one blocked cell per line as "x y".
// Blank lines and lines starting with '#' are skipped.
func LoadBlockList(path string) ([]pathfind.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open block list: %w", err)
	}
	defer f.Close()

	pts, err := ParseBlockList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pts, nil
}

// ParseBlockList parses the "x y" per line format from r.
func ParseBlockList(r io.Reader) ([]pathfind.Point, error) {
	var pts []pathfind.Point
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"x y\", got %q", lineNo, line)
		}
		x, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad x: %w", lineNo, err)
		}
		y, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad y: %w", lineNo, err)
		}
		pts = append(pts, pathfind.Point{X: int32(x), Y: int32(y)})
	}
	return pts, scanner.Err()
}

// MapRect is a filled rectangle of blocked cells.
type MapRect struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
	W int32 `yaml:"w"`
	H int32 `yaml:"h"`
}

// MapDef is a YAML map definition.
type MapDef struct {
	Name    string     `yaml:"name"`
	Width   int32      `yaml:"width"`
	Height  int32      `yaml:"height"`
	Blocked [][2]int32 `yaml:"blocked"`
	Rects   []MapRect  `yaml:"rects"`
}

// LoadMapDef loads a map definition such as maps/map.yaml.
func LoadMapDef(path string) (*MapDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map def: %w", err)
	}
	var def MapDef
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse map def %s: %w", path, err)
	}
	if def.Width < 0 || def.Height < 0 {
		return nil, fmt.Errorf("map def %s: negative size %dx%d", path, def.Width, def.Height)
	}
	for i, r := range def.Rects {
		if r.W < 0 || r.H < 0 {
			return nil, fmt.Errorf("map def %s: rect %d has negative size", path, i)
		}
	}
	return &def, nil
}

// Cells expands the definition into individual blocked cells, single
// cells first, then rectangles row by row.
func (d *MapDef) Cells() []pathfind.Point {
	var pts []pathfind.Point
	for _, c := range d.Blocked {
		pts = append(pts, pathfind.Point{X: c[0], Y: c[1]})
	}
	for _, r := range d.Rects {
		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				pts = append(pts, pathfind.Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// BlockAll blocks every in-range cell of pts on g and returns the cells
// that fell outside the grid.
func BlockAll(g *pathfind.Grid, pts []pathfind.Point) []pathfind.Point {
	var outside []pathfind.Point
	for _, p := range pts {
		if !g.Block(p.X, p.Y) {
			outside = append(outside, p)
		}
	}
	return outside
}
