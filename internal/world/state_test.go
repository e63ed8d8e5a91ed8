package world

import (
	"testing"
	"time"

	"github.com/jpsworld/server/internal/pathfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestState(t *testing.T) *State {
	t.Helper()
	g := pathfind.NewGrid(100, 100)
	return NewState(g, pathfind.NewJPS(g), Options{
		SectorSize:    5,
		Speed:         4,
		ArriveEpsilon: 1e-3,
		Seed:          1,
	}, zap.NewNop())
}

// place teleports an actor, keeping its sector membership consistent.
func place(s *State, a *Actor, x, y float64) {
	to := s.sectors.SectorOf(x, y)
	s.sectors.Move(a.SessionID, a.Sector, to)
	a.Sector = to
	a.X, a.Y = x, y
}

func TestSpawn(t *testing.T) {
	s := newTestState(t)

	a := s.Spawn(10, t0)
	b := s.Spawn(11, t0)

	assert.Equal(t, int32(1), a.ID)
	assert.Equal(t, int32(2), b.ID)
	assert.Equal(t, Idle, a.State)
	for _, x := range []*Actor{a, b} {
		assert.GreaterOrEqual(t, x.X, 1.0)
		assert.LessOrEqual(t, x.X, 99.0)
		assert.GreaterOrEqual(t, x.Y, 1.0)
		assert.LessOrEqual(t, x.Y, 99.0)
		assert.True(t, s.Sectors().Contains(x.SessionID, x.Sector))
		assert.Equal(t, s.Sectors().SectorOf(x.X, x.Y), x.Sector)
	}
	assert.Equal(t, 2, s.ActorCount())
	assert.Same(t, a, s.Actor(10))
}

func TestSpawnAvoidsBlockedCells(t *testing.T) {
	g := pathfind.NewGrid(4, 4)
	for y := int32(0); y < 4; y++ {
		for x := int32(0); x < 4; x++ {
			if x != 2 || y != 2 {
				g.Block(x, y)
			}
		}
	}
	s := NewState(g, pathfind.NewJPS(g), Options{SectorSize: 5, Speed: 4, Seed: 3}, zap.NewNop())

	a := s.Spawn(1, t0)
	assert.Equal(t, pathfind.Point{X: 2, Y: 2}, a.Cell())
}

func TestRemove(t *testing.T) {
	s := newTestState(t)
	a := s.Spawn(1, t0)

	assert.Same(t, a, s.Remove(1))
	assert.Nil(t, s.Remove(1))
	assert.False(t, s.Sectors().Contains(1, a.Sector))
	assert.Zero(t, s.ActorCount())
}

func TestPlanMoveRejects(t *testing.T) {
	s := newTestState(t)
	a := s.Spawn(1, t0)
	place(s, a, 10, 10)
	s.Block(20, 20)

	res, _ := s.PlanMove(a, -1, 5, t0)
	assert.Equal(t, MoveOutOfWorld, res)
	res, _ = s.PlanMove(a, 100, 5, t0)
	assert.Equal(t, MoveOutOfWorld, res)
	res, _ = s.PlanMove(a, 20.5, 20.5, t0)
	assert.Equal(t, MoveBlocked, res)
	res, _ = s.PlanMove(a, 10.7, 10.2, t0)
	assert.Equal(t, MoveNoOp, res)

	assert.Equal(t, Idle, a.State)
	assert.Empty(t, a.Waypoints)
}

func TestPlanMoveNoPath(t *testing.T) {
	s := newTestState(t)
	a := s.Spawn(1, t0)
	place(s, a, 10, 10)
	for x := int32(49); x <= 51; x++ {
		for y := int32(49); y <= 51; y++ {
			if x != 50 || y != 50 {
				s.Block(x, y)
			}
		}
	}

	res, _ := s.PlanMove(a, 50, 50, t0)
	assert.Equal(t, MoveNoPath, res)
	assert.Equal(t, Idle, a.State)
}

func TestPlanMoveInstallsAndAppends(t *testing.T) {
	s := newTestState(t)
	a := s.Spawn(1, t0)
	place(s, a, 10, 10)

	res, path := s.PlanMove(a, 15, 10, t0)
	require.Equal(t, MoveInstalled, res)
	assert.Equal(t, []pathfind.Point{{X: 10, Y: 10}, {X: 15, Y: 10}}, path.Points)
	assert.Equal(t, Moving, a.State)
	assert.Equal(t, []pathfind.Point{{X: 15, Y: 10}}, a.Waypoints)
	assert.Equal(t, t0, a.LastTick)

	later := t0.Add(time.Second)
	res, path = s.PlanMove(a, 15, 12, later)
	require.Equal(t, MoveInstalled, res)
	assert.Equal(t, pathfind.Point{X: 15, Y: 10}, path.Points[0], "search starts at the queued goal")
	assert.Equal(t, []pathfind.Point{{X: 15, Y: 10}, {X: 15, Y: 12}}, a.Waypoints)
	assert.Equal(t, t0, a.LastTick, "already moving, tick clock untouched")

	res, _ = s.PlanMove(a, 15, 12, later)
	assert.Equal(t, MoveNoOp, res, "destination equals the last queued waypoint")
}

func TestIntegrateWalksPath(t *testing.T) {
	s := newTestState(t)
	a := s.Spawn(1, t0)
	place(s, a, 10, 10)
	_, _ = s.PlanMove(a, 12, 10, t0)

	_, crossed := s.Integrate(a, t0.Add(250*time.Millisecond))
	assert.False(t, crossed)
	assert.InDelta(t, 11.0, a.X, 1e-9)
	assert.InDelta(t, 10.0, a.Y, 1e-9)

	s.Integrate(a, t0.Add(time.Second))
	assert.Equal(t, 12.0, a.X, "clamped at the waypoint")
	assert.Equal(t, Moving, a.State)

	s.Integrate(a, t0.Add(time.Second+20*time.Millisecond))
	assert.Equal(t, Idle, a.State)
	assert.Empty(t, a.Waypoints)
	assert.Equal(t, 12.0, a.X)
}

func TestIntegrateCrossesSector(t *testing.T) {
	s := newTestState(t)
	a := s.Spawn(1, t0)
	place(s, a, 4, 2)
	_, _ = s.PlanMove(a, 6, 2, t0)

	c, crossed := s.Integrate(a, t0.Add(300*time.Millisecond))
	require.True(t, crossed)
	assert.Equal(t, SectorCoord{0, 0}, c.From)
	assert.Equal(t, SectorCoord{1, 0}, c.To)
	assert.Equal(t, SectorCoord{1, 0}, a.Sector)
	assert.True(t, s.Sectors().Contains(1, SectorCoord{1, 0}))
	assert.False(t, s.Sectors().Contains(1, SectorCoord{0, 0}))
}

func TestIntegrateIdleIsNoop(t *testing.T) {
	s := newTestState(t)
	a := s.Spawn(1, t0)
	x, y := a.X, a.Y

	_, crossed := s.Integrate(a, t0.Add(time.Hour))
	assert.False(t, crossed)
	assert.Equal(t, x, a.X)
	assert.Equal(t, y, a.Y)
}

func TestNearby(t *testing.T) {
	s := newTestState(t)
	a := s.Spawn(1, t0)
	b := s.Spawn(2, t0)
	c := s.Spawn(3, t0)
	place(s, a, 12, 12)
	place(s, b, 16, 8)
	place(s, c, 40, 40)

	near := s.Nearby(a.Sector, a.SessionID)
	require.Len(t, near, 1)
	assert.Same(t, b, near[0])
	assert.Len(t, s.InSector(SectorCoord{8, 8}), 1)
}

func TestActorRoute(t *testing.T) {
	a := &Actor{X: 3.6, Y: 4.1, Waypoints: []pathfind.Point{{X: 7, Y: 7}, {X: 9, Y: 7}}}

	assert.Equal(t, []pathfind.Point{{X: 3, Y: 4}, {X: 7, Y: 7}, {X: 9, Y: 7}}, a.Route())
}
