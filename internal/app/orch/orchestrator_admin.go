package orch

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
)

// CreateRoom is the explicit administrative create; joins create rooms
// implicitly, this one just reserves an id up front.
func (o *Orchestrator) CreateRoom() domain.RoomID {
	id := domain.RoomID(uuid.NewString())
	o.Rooms.GetOrCreate(id)
	log.Info().Str("module", "orch").Str("room", string(id)).Msg("room created via admin")
	return id
}

// AddUser seeds a roster entry from the admin surface. The member is
// detached (no live connection), so deliveries to it are no-ops, but it
// reserves its display name and shows up in rosters like anyone else.
func (o *Orchestrator) AddUser(roomID, displayName string) (core.SessionID, error) {
	sid := core.SessionID(uuid.NewString())
	o.Registry.Register(sid, nil, nil)
	if err := o.Join(sid, roomID, displayName); err != nil {
		o.Registry.Remove(sid)
		return "", fmt.Errorf("admin add user: %w", err)
	}
	return sid, nil
}

// RemoveUser evicts a member by display name, with the same leave
// broadcast an explicit leave produces.
func (o *Orchestrator) RemoveUser(roomID, displayName string) error {
	room, ok := o.Rooms.Get(domain.RoomID(roomID))
	if !ok {
		return domain.ErrRoomNotFound
	}
	sid, ok := room.SIDByName(displayName)
	if !ok {
		return domain.ErrUserNotFound
	}
	o.Leave(sid, roomID)
	if _, live := o.Registry.Conn(sid); !live {
		// detached admin-seeded member, nothing will ever tear it down
		o.Registry.Remove(sid)
	}
	return nil
}

func (o *Orchestrator) RoomsList() []core.RoomInfo {
	return o.Rooms.List()
}
