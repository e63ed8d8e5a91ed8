package handler

import (
	"github.com/jpsworld/server/internal/net/packet"
	"github.com/jpsworld/server/internal/world"
)

// buildCreate builds S_CREATE_SELF / S_CREATE_OTHER: [D id][F x][F y].
func buildCreate(opcode byte, a *world.Actor) []byte {
	w := packet.NewWriterWithOpcode(opcode)
	w.WriteD(a.ID)
	w.WriteF(float32(a.X))
	w.WriteF(float32(a.Y))
	return w.Bytes()
}

// buildDelete builds S_DELETE: [D id].
func buildDelete(a *world.Actor) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_DELETE)
	w.WriteD(a.ID)
	return w.Bytes()
}

// buildPath builds S_PATH: [D id][D count] then count × [D x][D y],
// the actor's cell followed by its pending waypoints.
func buildPath(a *world.Actor) []byte {
	route := a.Route()
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PATH)
	w.WriteD(a.ID)
	w.WriteD(int32(len(route)))
	for _, p := range route {
		w.WriteD(p.X)
		w.WriteD(p.Y)
	}
	return w.Bytes()
}

// BuildNotice builds S_NOTICE: [S text] in Big5.
func BuildNotice(text string) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_NOTICE)
	w.WriteS(text)
	return w.Bytes()
}

func actorIDs(actors []*world.Actor) []uint64 {
	ids := make([]uint64, len(actors))
	for i, a := range actors {
		ids[i] = a.SessionID
	}
	return ids
}

// sendNeighbourhoodEnter makes a and the given actors visible to each
// other. Moving actors also get their route sent so the viewer can
// animate them from the current position.
func sendNeighbourhoodEnter(a *world.Actor, others []*world.Actor, deps *Deps) {
	var ids []uint64
	for _, o := range others {
		if o.SessionID == a.SessionID {
			continue
		}
		ids = append(ids, o.SessionID)
		deps.Out.Send(a.SessionID, buildCreate(packet.S_OPCODE_CREATE_OTHER, o))
		if o.IsMoving() {
			deps.Out.Send(a.SessionID, buildPath(o))
		}
	}
	if len(ids) == 0 {
		return
	}
	deps.Out.SendGroup(ids, buildCreate(packet.S_OPCODE_CREATE_OTHER, a))
	if a.IsMoving() {
		deps.Out.SendGroup(ids, buildPath(a))
	}
}

// sendNeighbourhoodLeave hides a and the given actors from each other.
func sendNeighbourhoodLeave(a *world.Actor, others []*world.Actor, deps *Deps) {
	var ids []uint64
	for _, o := range others {
		if o.SessionID == a.SessionID {
			continue
		}
		ids = append(ids, o.SessionID)
		deps.Out.Send(a.SessionID, buildDelete(o))
	}
	if len(ids) > 0 {
		deps.Out.SendGroup(ids, buildDelete(a))
	}
}

// BroadcastSectorChange updates visibility after a crossed sectors:
// occupants of the sectors that fell out of its 3×3 block and a forget
// each other, occupants of the newly covered sectors and a meet.
// Caller holds the world lock.
func BroadcastSectorChange(a *world.Actor, c world.Crossing, deps *Deps) {
	ws := deps.World
	leaving, entering := ws.Sectors().Diff(c.From, c.To)
	for _, sc := range leaving {
		sendNeighbourhoodLeave(a, ws.InSector(sc), deps)
	}
	for _, sc := range entering {
		sendNeighbourhoodEnter(a, ws.InSector(sc), deps)
	}
}
