package handler

import (
	"github.com/jpsworld/server/internal/net"
	"go.uber.org/zap"
)

// HandleQuit runs once when a session closes.
func HandleQuit(sess *net.Session, deps *Deps) {
	ws := deps.World
	ws.Lock()
	defer ws.Unlock()
	Leave(sess.ID, deps)
}

// Leave removes the session's actor and tells its neighbourhood. Safe to
// call for a session that already left. Caller holds the world lock.
func Leave(sessionID uint64, deps *Deps) {
	a := deps.World.Remove(sessionID)
	if a == nil {
		return
	}
	ids := actorIDs(deps.World.Nearby(a.Sector, sessionID))
	if len(ids) > 0 {
		deps.Out.SendGroup(ids, buildDelete(a))
	}
	deps.Log.Debug("角色離開世界", zap.Uint64("session", sessionID), zap.Int32("id", a.ID))
}
