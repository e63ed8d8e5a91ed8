package handler

import (
	"github.com/jpsworld/server/internal/net"
	"github.com/jpsworld/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleEnterWorld spawns an actor for a freshly accepted session and
// introduces it to its 3×3 neighbourhood.
func HandleEnterWorld(sess *net.Session, deps *Deps) {
	ws := deps.World
	ws.Lock()
	defer ws.Unlock()

	a := ws.Spawn(sess.ID, deps.Clock())
	sess.SetState(packet.StateInWorld)

	deps.Out.Send(sess.ID, buildCreate(packet.S_OPCODE_CREATE_SELF, a))
	sendNeighbourhoodEnter(a, ws.Nearby(a.Sector, a.SessionID), deps)

	deps.Log.Debug("角色進入世界",
		zap.Uint64("session", sess.ID),
		zap.Int32("id", a.ID),
		zap.Float64("x", a.X),
		zap.Float64("y", a.Y),
	)
}
