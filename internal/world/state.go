package world

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jpsworld/server/internal/pathfind"
	"go.uber.org/zap"
)

// Options tunes the movement simulation.
type Options struct {
	SectorSize    int32
	Speed         float64 // world units per second
	ArriveEpsilon float64 // distance at which a waypoint counts as reached
	Seed          int64   // spawn RNG seed, 0 = time based
}

// MoveResult says what a move request did.
type MoveResult int

const (
	MoveInstalled MoveResult = iota // path appended, actor Moving
	MoveOutOfWorld
	MoveBlocked
	MoveNoOp // resolved start equals destination
	MoveNoPath
)

func (r MoveResult) String() string {
	switch r {
	case MoveInstalled:
		return "installed"
	case MoveOutOfWorld:
		return "out_of_world"
	case MoveBlocked:
		return "blocked"
	case MoveNoOp:
		return "no_op"
	case MoveNoPath:
		return "no_path"
	}
	return "unknown"
}

// Crossing describes an actor leaving one sector for another during
// integration.
type Crossing struct {
	From SectorCoord
	To   SectorCoord
}

// State is the single exclusion domain of the server: the grid, the
// path finder with its scratch buffers, the actor table and the sector
// index. Every handler and the tick take the lock for their whole
// critical section. Methods other than Lock/Unlock assume it is held.
type State struct {
	mu sync.Mutex

	grid    *pathfind.Grid
	finder  pathfind.Finder
	sectors *SectorIndex

	bySession map[uint64]*Actor
	nextID    int32
	rng       *rand.Rand
	opts      Options
	log       *zap.Logger

	nearbyBuf []uint64
}

func NewState(grid *pathfind.Grid, finder pathfind.Finder, opts Options, log *zap.Logger) *State {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &State{
		grid:      grid,
		finder:    finder,
		sectors:   NewSectorIndex(grid.Width(), grid.Height(), opts.SectorSize),
		bySession: make(map[uint64]*Actor),
		rng:       rand.New(rand.NewSource(seed)),
		opts:      opts,
		log:       log,
	}
}

func (s *State) Lock() { s.mu.Lock() }
func (s *State) Unlock() { s.mu.Unlock() }

func (s *State) Grid() *pathfind.Grid { return s.grid }
func (s *State) Sectors() *SectorIndex { return s.sectors }
func (s *State) Finder() pathfind.Finder { return s.finder }
func (s *State) Options() Options { return s.opts }

// Spawn creates an actor for a new session at a random open cell away
// from the world edge and registers it in its sector.
func (s *State) Spawn(sessionID uint64, now time.Time) *Actor {
	cell := s.randomOpenCell()
	s.nextID++
	a := &Actor{
		SessionID: sessionID,
		ID:        s.nextID,
		X:         float64(cell.X),
		Y:         float64(cell.Y),
		State:     Idle,
		LastInput: now,
		LastTick:  now,
	}
	a.Sector = s.sectors.SectorOf(a.X, a.Y)
	s.sectors.Add(sessionID, a.Sector)
	s.bySession[sessionID] = a
	return a
}

// randomOpenCell picks from [1, w-1] × [1, h-1], falling back to a scan
// when the random draws keep hitting walls.
func (s *State) randomOpenCell() pathfind.Point {
	w, h := s.grid.Width(), s.grid.Height()
	lo, spanX, spanY := int32(1), w-1, h-1
	if spanX < 1 || spanY < 1 {
		lo, spanX, spanY = 0, w, h
	}
	for i := 0; i < 1000; i++ {
		x := lo + s.rng.Int31n(spanX)
		y := lo + s.rng.Int31n(spanY)
		if s.grid.Walkable(x, y) {
			return pathfind.Point{X: x, Y: y}
		}
	}
	s.log.Warn("隨機出生點失敗，改為掃描地圖")
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			if s.grid.Walkable(x, y) {
				return pathfind.Point{X: x, Y: y}
			}
		}
	}
	panic("world: no open cell to spawn on")
}

// Remove deletes the session's actor and returns it, or nil.
func (s *State) Remove(sessionID uint64) *Actor {
	a, ok := s.bySession[sessionID]
	if !ok {
		return nil
	}
	s.sectors.Remove(sessionID, a.Sector)
	delete(s.bySession, sessionID)
	return a
}

// Actor returns the session's actor, or nil.
func (s *State) Actor(sessionID uint64) *Actor {
	return s.bySession[sessionID]
}

func (s *State) ActorCount() int {
	return len(s.bySession)
}

// AllActors iterates every actor.
func (s *State) AllActors(fn func(*Actor)) {
	for _, a := range s.bySession {
		fn(a)
	}
}

// Nearby returns the actors in the 3×3 sector block around c, excluding
// the given session. The slice is reused by the next call.
func (s *State) Nearby(c SectorCoord, exclude uint64) []*Actor {
	s.nearbyBuf = s.sectors.NearbyInto(c, s.nearbyBuf[:0])
	out := make([]*Actor, 0, len(s.nearbyBuf))
	for _, sid := range s.nearbyBuf {
		if sid == exclude {
			continue
		}
		if a := s.bySession[sid]; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// InSector returns the actors recorded in sector c.
func (s *State) InSector(c SectorCoord) []*Actor {
	s.nearbyBuf = s.sectors.OccupantsInto(c, s.nearbyBuf[:0])
	out := make([]*Actor, 0, len(s.nearbyBuf))
	for _, sid := range s.nearbyBuf {
		if a := s.bySession[sid]; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// PlanMove resolves a move request for a. The search starts from the
// last queued waypoint when the actor is already moving, otherwise from
// its current cell, and the reduced path minus its first point is
// appended to the waypoint queue.
func (s *State) PlanMove(a *Actor, x, y float64, now time.Time) (MoveResult, pathfind.Path) {
	if x < 0 || y < 0 || x >= float64(s.grid.Width()) || y >= float64(s.grid.Height()) ||
		math.IsNaN(x) || math.IsNaN(y) {
		return MoveOutOfWorld, pathfind.Path{}
	}
	dest := pathfind.Point{X: int32(math.Floor(x)), Y: int32(math.Floor(y))}
	if s.grid.Blocked(dest.X, dest.Y) {
		return MoveBlocked, pathfind.Path{}
	}

	start := a.Cell()
	if a.IsMoving() && len(a.Waypoints) > 0 {
		start = a.Waypoints[len(a.Waypoints)-1]
	}
	if start == dest {
		return MoveNoOp, pathfind.Path{}
	}

	path, ok := s.finder.FindPath(start, dest)
	if !ok {
		return MoveNoPath, path
	}

	a.Waypoints = append(a.Waypoints, path.Points[1:]...)
	if a.State == Idle {
		a.State = Moving
		a.LastTick = now
	}
	return MoveInstalled, path
}

// Integrate advances a moving actor and keeps its sector membership in
// step with its position. ok is true when the actor changed sector.
func (s *State) Integrate(a *Actor, now time.Time) (Crossing, bool) {
	if !a.step(now, s.opts.Speed, s.opts.ArriveEpsilon) {
		return Crossing{}, false
	}
	to := s.sectors.SectorOf(a.X, a.Y)
	if to == a.Sector {
		return Crossing{}, false
	}
	from := a.Sector
	s.sectors.Move(a.SessionID, from, to)
	a.Sector = to
	return Crossing{From: from, To: to}, true
}

// Block marks a cell impassable. Paths already installed are not replanned.
func (s *State) Block(x, y int32) bool {
	return s.grid.Block(x, y)
}

// Unblock marks a cell passable.
func (s *State) Unblock(x, y int32) bool {
	return s.grid.Unblock(x, y)
}
