package world

import (
	"fmt"
	"math"
)

// SectorCoord addresses one sector of the world.
type SectorCoord struct {
	X, Y int32
}

// SectorIndex partitions the world into size×size sectors and tracks
// which actors (by session ID) are in each. A 3×3 block of sectors
// around an actor is its area of interest.
// Caller must hold the world lock.
type SectorIndex struct {
	size  int32
	cols  int32
	rows  int32
	cells []map[uint64]struct{} // flat, y*cols+x
}

// NewSectorIndex covers a width×height world with sectors of the given size.
func NewSectorIndex(width, height, size int32) *SectorIndex {
	if size <= 0 {
		panic(fmt.Sprintf("world: invalid sector size %d", size))
	}
	cols := (width + size - 1) / size
	rows := (height + size - 1) / size
	cells := make([]map[uint64]struct{}, int(cols)*int(rows))
	for i := range cells {
		cells[i] = make(map[uint64]struct{})
	}
	return &SectorIndex{size: size, cols: cols, rows: rows, cells: cells}
}

func (si *SectorIndex) Size() int32 { return si.size }

// Dims returns the number of sector columns and rows.
func (si *SectorIndex) Dims() (int32, int32) { return si.cols, si.rows }

// SectorOf derives the sector from a world position: floor(pos / size).
func (si *SectorIndex) SectorOf(x, y float64) SectorCoord {
	return SectorCoord{
		X: int32(math.Floor(x)) / si.size,
		Y: int32(math.Floor(y)) / si.size,
	}
}

func (si *SectorIndex) InBounds(c SectorCoord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < si.cols && c.Y < si.rows
}

func (si *SectorIndex) cell(c SectorCoord) map[uint64]struct{} {
	return si.cells[int(c.Y)*int(si.cols)+int(c.X)]
}

// Add places an actor in sector c.
func (si *SectorIndex) Add(sessionID uint64, c SectorCoord) {
	if !si.InBounds(c) {
		panic(fmt.Sprintf("world: add session %d to sector %v outside the world", sessionID, c))
	}
	si.cell(c)[sessionID] = struct{}{}
}

// Remove takes an actor out of sector c. The actor must be there.
func (si *SectorIndex) Remove(sessionID uint64, c SectorCoord) {
	if !si.InBounds(c) {
		panic(fmt.Sprintf("world: remove session %d from sector %v outside the world", sessionID, c))
	}
	cell := si.cell(c)
	if _, ok := cell[sessionID]; !ok {
		panic(fmt.Sprintf("world: session %d is not in sector %v", sessionID, c))
	}
	delete(cell, sessionID)
}

// Move transfers an actor between sectors.
func (si *SectorIndex) Move(sessionID uint64, from, to SectorCoord) {
	if from == to {
		return
	}
	si.Remove(sessionID, from)
	si.Add(sessionID, to)
}

// Contains reports whether the actor is recorded in sector c.
func (si *SectorIndex) Contains(sessionID uint64, c SectorCoord) bool {
	if !si.InBounds(c) {
		return false
	}
	_, ok := si.cell(c)[sessionID]
	return ok
}

// OccupantsInto appends the actors of sector c to buf. Sectors outside
// the world are empty.
func (si *SectorIndex) OccupantsInto(c SectorCoord, buf []uint64) []uint64 {
	if !si.InBounds(c) {
		return buf
	}
	for sid := range si.cell(c) {
		buf = append(buf, sid)
	}
	return buf
}

// Around returns the in-bounds sectors of the 3×3 block centred on c.
func (si *SectorIndex) Around(c SectorCoord) []SectorCoord {
	out := make([]SectorCoord, 0, 9)
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			n := SectorCoord{c.X + dx, c.Y + dy}
			if si.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// NearbyInto appends every actor in the 3×3 block around c to buf.
func (si *SectorIndex) NearbyInto(c SectorCoord, buf []uint64) []uint64 {
	for _, n := range si.Around(c) {
		buf = si.OccupantsInto(n, buf)
	}
	return buf
}

// Diff returns the in-bounds sectors that drop out of and come into the
// 3×3 block when an actor moves from one sector to an adjacent one.
func (si *SectorIndex) Diff(from, to SectorCoord) (leaving, entering []SectorCoord) {
	l, e := NeighborhoodDiff(from, to)
	for _, c := range l {
		if si.InBounds(c) {
			leaving = append(leaving, c)
		}
	}
	for _, c := range e {
		if si.InBounds(c) {
			entering = append(entering, c)
		}
	}
	return leaving, entering
}

// NeighborhoodDiff is the set difference of the 3×3 blocks around from
// and to, ignoring world bounds. For a one-sector step this gives 3
// sectors each way orthogonally and 5 each way diagonally.
func NeighborhoodDiff(from, to SectorCoord) (leaving, entering []SectorCoord) {
	near := func(a, b SectorCoord) bool {
		return abs32(a.X-b.X) <= 1 && abs32(a.Y-b.Y) <= 1
	}
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			if c := (SectorCoord{from.X + dx, from.Y + dy}); !near(c, to) {
				leaving = append(leaving, c)
			}
			if c := (SectorCoord{to.X + dx, to.Y + dy}); !near(c, from) {
				entering = append(entering, c)
			}
		}
	}
	return leaving, entering
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
