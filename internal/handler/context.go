package handler

import (
	"time"

	"github.com/jpsworld/server/internal/config"
	"github.com/jpsworld/server/internal/net"
	"github.com/jpsworld/server/internal/net/packet"
	"github.com/jpsworld/server/internal/world"
	"go.uber.org/zap"
)

// Outbound delivers packets to sessions by ID. *net.SessionStore
// implements it; sends never block.
type Outbound interface {
	Send(sessionID uint64, data []byte)
	SendGroup(sessionIDs []uint64, data []byte)
	Disconnect(sessionID uint64)
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	World  *world.State
	Out    Outbound
	Now    func() time.Time // nil = time.Now
}

// Clock is the time source for handlers and systems.
func (d *Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	inWorld := []packet.SessionState{packet.StateInWorld}

	reg.Register(packet.C_OPCODE_MOVE, inWorld,
		func(sess any, r *packet.Reader) {
			HandleMove(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_HEARTBEAT, inWorld,
		func(sess any, r *packet.Reader) {
			HandleHeartbeat(sess.(*net.Session), r, deps)
		},
	)
}

// NewHooks connects the session lifecycle to the world: spawn on open,
// registry dispatch per packet, despawn on close.
func NewHooks(reg *packet.Registry, deps *Deps) net.Hooks {
	return net.Hooks{
		OnOpen: func(sess *net.Session) {
			HandleEnterWorld(sess, deps)
		},
		OnPacket: func(sess *net.Session, data []byte) {
			if err := reg.Dispatch(sess, sess.State(), data); err != nil {
				deps.Log.Debug("封包已丟棄", zap.Uint64("session", sess.ID), zap.Error(err))
			}
		},
		OnClose: func(sess *net.Session) {
			HandleQuit(sess, deps)
		},
	}
}
