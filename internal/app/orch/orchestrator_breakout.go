package orch

import (
	"fmt"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
	"github.com/huddleapp/huddle/internal/protocol"
)

// CreateBreakout allocates a named sub-room under an existing main room
// and pushes the updated breakout list to main scope.
func (o *Orchestrator) CreateBreakout(roomID, name string) (domain.Breakout, error) {
	room, ok := o.Rooms.Get(domain.RoomID(roomID))
	if !ok {
		return domain.Breakout{}, domain.ErrRoomNotFound
	}
	bo := room.CreateBreakout(name)
	o.broadcast(room, "", protocol.BreakoutsUpdate{
		Type:          protocol.EvtBreakoutsUpdate,
		MainRoomID:    roomID,
		BreakoutRooms: room.Breakouts(),
	})
	return bo, nil
}

// JoinBreakout moves a main-room member into a breakout: out of main
// broadcast scope (main membership and the name reservation stay), into
// the breakout set. Existing breakout members get the breakout roster;
// the joiner gets a direct acknowledgment.
func (o *Orchestrator) JoinBreakout(sid core.SessionID, roomID, breakoutID string) error {
	room, ok := o.Rooms.Get(domain.RoomID(roomID))
	if !ok {
		return domain.ErrRoomNotFound
	}
	bid := domain.BreakoutID(breakoutID)
	closedPrev, err := room.JoinBreakout(bid, sid)
	if err != nil {
		return fmt.Errorf("join breakout %s: %w", breakoutID, err)
	}
	o.Registry.SetBreakout(sid, bid)

	if closedPrev != nil {
		o.notifyBreakoutClosed(room, closedPrev.ID)
	}

	roster, err := room.BreakoutRoster(bid)
	if err != nil {
		return err
	}
	o.broadcastBreakout(room, bid, sid, protocol.UserJoin{
		Type:  protocol.EvtUserJoin,
		Users: roster,
	})
	meta, _ := room.Breakout(bid)
	o.sendTo(sid, protocol.BreakoutJoined{
		Type:     protocol.EvtJoinBreakout,
		Breakout: meta,
		Users:    roster,
	})
	return nil
}

// LeaveBreakout restores the member to main scope, tells the remaining
// breakout members, and acknowledges the leaver. Draining the breakout
// deletes it and notifies the main room of the closure.
func (o *Orchestrator) LeaveBreakout(sid core.SessionID, roomID string) error {
	room, ok := o.Rooms.Get(domain.RoomID(roomID))
	if !ok {
		return domain.ErrRoomNotFound
	}
	displayName := ""
	if sess, ok := o.Registry.Session(sid); ok {
		displayName = sess.DisplayName
	}
	left, closed, err := room.LeaveBreakout(sid)
	if err != nil {
		return fmt.Errorf("leave breakout: %w", err)
	}
	o.Registry.SetBreakout(sid, "")

	if !closed {
		o.broadcastBreakout(room, left.ID, sid, protocol.BreakoutLeft{
			Type:     protocol.EvtLeaveBreakout,
			UserID:   sid,
			UserName: displayName,
		})
	}
	o.sendTo(sid, protocol.BreakoutLeft{
		Type:     protocol.EvtLeaveBreakout,
		UserID:   sid,
		UserName: displayName,
	})
	if closed {
		o.notifyBreakoutClosed(room, left.ID)
	}
	return nil
}

// notifyBreakoutClosed tells the main room that a breakout emptied and
// was deleted, together with the surviving list.
func (o *Orchestrator) notifyBreakoutClosed(room core.RoomService, bid domain.BreakoutID) {
	o.broadcast(room, "", protocol.BreakoutClosed{
		Type:           protocol.EvtBreakoutClosed,
		BreakoutRoomID: bid,
	})
	o.broadcast(room, "", protocol.BreakoutsUpdate{
		Type:          protocol.EvtBreakoutsUpdate,
		MainRoomID:    string(room.Room().ID),
		BreakoutRooms: room.Breakouts(),
	})
}
