package handler

import (
	"github.com/jpsworld/server/internal/net"
	"github.com/jpsworld/server/internal/net/packet"
	"github.com/jpsworld/server/internal/world"
	"go.uber.org/zap"
)

// HandleMove processes C_MOVE: [F x][F y] target in world units.
// Invalid targets and unreachable goals are dropped without a reply.
func HandleMove(sess *net.Session, r *packet.Reader, deps *Deps) {
	x := r.ReadF()
	y := r.ReadF()
	if r.Overrun() {
		return
	}

	ws := deps.World
	ws.Lock()
	defer ws.Unlock()

	a := ws.Actor(sess.ID)
	if a == nil {
		return
	}
	now := deps.Clock()
	a.LastInput = now

	result, path := ws.PlanMove(a, float64(x), float64(y), now)
	if result != world.MoveInstalled {
		deps.Log.Debug("移動請求未執行",
			zap.Uint64("session", sess.ID),
			zap.Float32("x", x),
			zap.Float32("y", y),
			zap.Stringer("result", result),
		)
		return
	}
	deps.Log.Debug("路徑已安裝",
		zap.Uint64("session", sess.ID),
		zap.Int("points", len(path.Points)),
		zap.Int32("cost", path.Cost),
		zap.Int("expanded", path.Expanded),
	)

	// Path updates go to the whole 3×3 block, the mover included.
	ids := actorIDs(ws.Nearby(a.Sector, 0))
	deps.Out.SendGroup(ids, buildPath(a))
}

// HandleHeartbeat processes C_HEARTBEAT. The packet carries no payload;
// anything after the opcode is a protocol violation.
func HandleHeartbeat(sess *net.Session, r *packet.Reader, deps *Deps) {
	if r.Remaining() > 0 {
		deps.Log.Warn("心跳封包格式錯誤，斷開連線",
			zap.Uint64("session", sess.ID),
			zap.Int("extra", r.Remaining()),
		)
		deps.Out.Disconnect(sess.ID)
		return
	}

	ws := deps.World
	ws.Lock()
	defer ws.Unlock()
	if a := ws.Actor(sess.ID); a != nil {
		a.LastInput = deps.Clock()
	}
}
