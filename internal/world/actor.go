package world

import (
	"math"
	"time"

	"github.com/jpsworld/server/internal/pathfind"
)

// MoveState is an actor's movement state.
type MoveState int

const (
	Idle MoveState = iota
	Moving
)

func (s MoveState) String() string {
	if s == Moving {
		return "Moving"
	}
	return "Idle"
}

// Actor is one connected client's avatar.
type Actor struct {
	SessionID uint64
	ID        int32
	X         float64
	Y         float64
	State     MoveState
	Waypoints []pathfind.Point // pending destinations, front first
	Sector    SectorCoord      // sector derived from the last integrated position

	LastInput time.Time // last packet from the client
	LastTick  time.Time // last movement integration
}

func (a *Actor) IsMoving() bool { return a.State == Moving }

// Cell is the grid cell under the actor.
func (a *Actor) Cell() pathfind.Point {
	return pathfind.Point{X: int32(math.Floor(a.X)), Y: int32(math.Floor(a.Y))}
}

// Route returns the actor's current cell followed by its pending
// waypoints, the list broadcast in path updates.
func (a *Actor) Route() []pathfind.Point {
	out := make([]pathfind.Point, 0, len(a.Waypoints)+1)
	out = append(out, a.Cell())
	return append(out, a.Waypoints...)
}

// step advances the actor toward its front waypoint for the time since
// LastTick. Within epsilon of the waypoint it pops it instead, going
// Idle when none are left. Reports whether the position changed.
func (a *Actor) step(now time.Time, speed, epsilon float64) bool {
	if a.State != Moving || len(a.Waypoints) == 0 {
		a.State = Idle
		return false
	}

	elapsed := now.Sub(a.LastTick).Seconds()
	a.LastTick = now

	dest := a.Waypoints[0]
	tx, ty := float64(dest.X), float64(dest.Y)
	dx, dy := tx-a.X, ty-a.Y
	dist := math.Hypot(dx, dy)

	if dist < epsilon {
		a.Waypoints = a.Waypoints[1:]
		if len(a.Waypoints) == 0 {
			a.Waypoints = nil
			a.State = Idle
		}
		return false
	}

	move := speed * elapsed
	if move <= 0 {
		return false
	}
	if move >= dist {
		a.X, a.Y = tx, ty
	} else {
		a.X += dx * move / dist
		a.Y += dy * move / dist
	}
	a.X = math.Max(a.X, 0)
	a.Y = math.Max(a.Y, 0)
	return true
}
