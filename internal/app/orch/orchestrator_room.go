package orch

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
	"github.com/huddleapp/huddle/internal/protocol"
)

// CheckUser answers a pre-flight name-collision probe. The answer may go
// stale immediately; Join's own atomic check is the one that counts.
func (o *Orchestrator) CheckUser(roomID, displayName string) bool {
	room, ok := o.Rooms.Get(domain.RoomID(roomID))
	if !ok {
		return false
	}
	return room.HasName(displayName)
}

// Join puts the connection into the room as a participant. The duplicate
// check and the insert are one atomic step inside the room; losing the
// race returns ErrDuplicateUser and leaves no partial state. On success
// the updated full roster is pushed to every prior member, not to the
// joiner.
func (o *Orchestrator) Join(sid core.SessionID, roomID, displayName string) error {
	if sess, ok := o.Registry.Session(sid); ok && sess.RoomID != "" {
		o.Leave(sid, string(sess.RoomID))
		log.Info().Str("module", "orch").Str("sid", string(sid)).
			Str("from_room", string(sess.RoomID)).Msg("left previous room on join")
	}

	if _, err := o.Registry.SetPresence(sid, displayName, domain.RoleParticipant); err != nil {
		return err
	}
	member, ok := o.Registry.Member(sid)
	if !ok {
		return domain.ErrNotConnected
	}

	room := o.Rooms.GetOrCreate(domain.RoomID(roomID))
	if err := room.AddMember(sid, member); err != nil {
		o.Registry.ClearPresence(sid)
		return fmt.Errorf("join %s: %w", roomID, err)
	}
	o.Registry.SetRoom(sid, room.Room().ID)

	o.broadcast(room, sid, protocol.UserJoin{
		Type:  protocol.EvtUserJoin,
		Users: room.Roster(),
	})
	return nil
}

// Leave is idempotent: leaving a room the session is not a member of is
// a no-op, which keeps an explicit leave racing a disconnect harmless.
func (o *Orchestrator) Leave(sid core.SessionID, roomID string) {
	room, ok := o.Rooms.Get(domain.RoomID(roomID))
	if !ok {
		return
	}
	displayName := ""
	if sess, ok := o.Registry.Session(sid); ok {
		displayName = sess.DisplayName
	}
	bid, inBreakout := room.BreakoutOf(sid)
	removed, closed := room.RemoveMember(sid)
	if !removed {
		return
	}
	o.Registry.ClearRoom(sid)

	// main-scope broadcasts never reach breakout occupants, so a leaver
	// who was inside one tells the remaining occupants directly
	if inBreakout && closed == nil {
		o.broadcastBreakout(room, bid, sid, protocol.UserLeave{
			Type:     protocol.EvtUserLeave,
			UserID:   sid,
			UserName: displayName,
		})
	}
	o.broadcast(room, sid, protocol.UserLeave{
		Type:     protocol.EvtUserLeave,
		UserID:   sid,
		UserName: displayName,
	})
	if closed != nil {
		o.notifyBreakoutClosed(room, closed.ID)
	}
}

// SendMessage relays chat to the sender's addressed scope: a main room
// id reaches main scope, a breakout id reaches only that breakout. The
// sender receives its own message back, matching the room-wide echo the
// clients expect.
func (o *Orchestrator) SendMessage(roomID, msg, sender string) error {
	room, bid, ok := o.Rooms.Resolve(roomID)
	if !ok {
		return domain.ErrRoomNotFound
	}
	ev := protocol.ReceiveMessage{
		Type:   protocol.EvtReceiveMessage,
		Msg:    msg,
		Sender: sender,
		RoomID: roomID,
	}
	if bid != "" {
		o.broadcastBreakout(room, bid, "", ev)
		return nil
	}
	o.broadcast(room, "", ev)
	return nil
}

// Toggle flips one track under the room's lock and tells everyone else
// in the session's current scope. The toggler itself is never notified.
func (o *Orchestrator) Toggle(sid core.SessionID, roomID string, track domain.Track) error {
	room, ok := o.Rooms.Get(domain.RoomID(roomID))
	if !ok {
		return domain.ErrRoomNotFound
	}
	if _, err := room.Toggle(sid, track); err != nil {
		return err
	}
	o.broadcastScope(room, sid, protocol.ToggleCamera{
		Type:         protocol.EvtToggleCamera,
		UserID:       sid,
		SwitchTarget: track,
	})
	return nil
}

// Disconnect fully unwinds a closed connection: registry entry, main
// room, breakout and viewer registration, with the matching leave
// notifications emitted exactly once. A second disconnect of the same id
// is a no-op.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	mem, ok := o.Registry.Remove(sid)
	if !ok {
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).
		Str("user", mem.DisplayName).Msg("disconnect teardown")
	if mem.RoomID == "" {
		return
	}
	room, ok := o.Rooms.Get(mem.RoomID)
	if !ok {
		return
	}

	if mem.Role == domain.RoleViewer {
		if room.RemoveViewer(sid) {
			o.broadcast(room, sid, protocol.ViewerEvent{
				Type:     protocol.EvtViewerLeave,
				UserID:   sid,
				UserName: mem.DisplayName,
			})
		}
		return
	}

	removed, closed := room.RemoveMember(sid)
	if !removed {
		return
	}
	if mem.BreakoutID != "" && closed == nil {
		o.broadcastBreakout(room, mem.BreakoutID, sid, protocol.UserLeave{
			Type:     protocol.EvtUserLeave,
			UserID:   sid,
			UserName: mem.DisplayName,
		})
	}
	o.broadcast(room, sid, protocol.UserLeave{
		Type:     protocol.EvtUserLeave,
		UserID:   sid,
		UserName: mem.DisplayName,
	})
	if closed != nil {
		o.notifyBreakoutClosed(room, closed.ID)
	}
}
