package system

import (
	"time"

	coresys "github.com/jpsworld/server/internal/core/system"
	"github.com/jpsworld/server/internal/handler"
	"github.com/jpsworld/server/internal/world"
)

// MovementSystem advances every moving actor toward its next waypoint
// and refreshes visibility when one crosses into another sector.
// Phase PhaseUpdate. Elapsed time comes from each actor's LastTick, so a
// late tick moves actors further rather than dropping distance.
type MovementSystem struct {
	deps *handler.Deps
}

func NewMovementSystem(deps *handler.Deps) *MovementSystem {
	return &MovementSystem{deps: deps}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(_ time.Duration) {
	ws := s.deps.World
	now := s.deps.Clock()

	// Each crossing is broadcast before the next actor moves: the diff
	// must see the other actors' sectors as they were when this one left.
	ws.AllActors(func(a *world.Actor) {
		if !a.IsMoving() {
			return
		}
		if c, ok := ws.Integrate(a, now); ok {
			handler.BroadcastSectorChange(a, c, s.deps)
		}
	})
}
