package orch

import (
	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
	"github.com/huddleapp/huddle/internal/protocol"
)

// JoinViewer attaches a read-only observer to a room. The viewer gets a
// participant snapshot; participants learn a viewer arrived. The viewer
// never enters any roster and never counts against display-name
// uniqueness.
func (o *Orchestrator) JoinViewer(sid core.SessionID, roomID, displayName string) error {
	if _, err := o.Registry.SetPresence(sid, displayName, domain.RoleViewer); err != nil {
		return err
	}
	member, ok := o.Registry.Member(sid)
	if !ok {
		return domain.ErrNotConnected
	}
	room := o.Rooms.GetOrCreate(domain.RoomID(roomID))
	room.AddViewer(sid, member)
	o.Registry.SetRoom(sid, room.Room().ID)

	o.sendTo(sid, protocol.ViewerInit{
		Type:  protocol.EvtViewerInit,
		Users: room.Roster(),
	})
	o.broadcast(room, sid, protocol.ViewerEvent{
		Type:     protocol.EvtNewViewer,
		UserID:   sid,
		UserName: displayName,
	})
	return nil
}

// LeaveViewer detaches the observer and notifies the room. Leaving a
// room the viewer never attached to is a no-op.
func (o *Orchestrator) LeaveViewer(sid core.SessionID, roomID string) error {
	room, ok := o.Rooms.Get(domain.RoomID(roomID))
	if !ok {
		return domain.ErrRoomNotFound
	}
	displayName := ""
	if sess, ok := o.Registry.Session(sid); ok {
		displayName = sess.DisplayName
	}
	if !room.RemoveViewer(sid) {
		return nil
	}
	o.Registry.ClearRoom(sid)
	o.broadcast(room, sid, protocol.ViewerEvent{
		Type:     protocol.EvtViewerLeave,
		UserID:   sid,
		UserName: displayName,
	})
	return nil
}
