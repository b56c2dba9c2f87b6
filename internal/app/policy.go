package app

import "github.com/huddleapp/huddle/internal/core"

type BackpressureAction int

const (
	DropEvent BackpressureAction = iota
	Disconnect
)

// Policy decides what happens to a member whose send buffer was full
// during a fan-out.
type Policy interface {
	OnBackpressure(room core.RoomService, sid core.SessionID) BackpressureAction
}

// DropPolicy keeps deliveries fire-and-forget: a slow recipient loses
// the event but stays in the room, so one dead subscriber never stalls
// or mutates the room.
type DropPolicy struct{}

func (DropPolicy) OnBackpressure(core.RoomService, core.SessionID) BackpressureAction {
	return DropEvent
}
