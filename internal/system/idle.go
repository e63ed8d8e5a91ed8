package system

import (
	"time"

	coresys "github.com/jpsworld/server/internal/core/system"
	"github.com/jpsworld/server/internal/handler"
	"github.com/jpsworld/server/internal/world"
	"go.uber.org/zap"
)

const idleNotice = "閒置過久，連線已中斷"

// IdleSystem disconnects sessions that sent nothing for the configured
// timeout. PhasePreUpdate, ahead of movement. The actor is removed
// here so the later close callback finds nothing left to do.
type IdleSystem struct {
	deps    *handler.Deps
	timeout time.Duration
	expired []*world.Actor
}

func NewIdleSystem(deps *handler.Deps, timeout time.Duration) *IdleSystem {
	return &IdleSystem{deps: deps, timeout: timeout}
}

func (s *IdleSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *IdleSystem) Update(_ time.Duration) {
	if s.timeout <= 0 {
		return
	}
	now := s.deps.Clock()

	s.expired = s.expired[:0]
	s.deps.World.AllActors(func(a *world.Actor) {
		if now.Sub(a.LastInput) >= s.timeout {
			s.expired = append(s.expired, a)
		}
	})

	for _, a := range s.expired {
		s.deps.Log.Info("閒置逾時，斷開連線",
			zap.Uint64("session", a.SessionID),
			zap.Duration("idle", now.Sub(a.LastInput)),
		)
		s.deps.Out.Send(a.SessionID, handler.BuildNotice(idleNotice))
		s.deps.Out.Disconnect(a.SessionID)
		handler.Leave(a.SessionID, s.deps)
	}
}
