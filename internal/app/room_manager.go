package app

import (
	"sync"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
)

// RoomManagerImpl is the room directory: rooms are created implicitly on
// first join (or via the admin surface) and operate fully independently
// of each other.
type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService
}

func NewRoomManager() core.RoomDirectory {
	return &RoomManagerImpl{rooms: make(map[domain.RoomID]core.RoomService)}
}

func (f *RoomManagerImpl) GetOrCreate(id domain.RoomID) core.RoomService {
	f.mu.RLock()
	room, ok := f.rooms[id]
	f.mu.RUnlock()
	if ok {
		return room
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[id]; ok {
		return room
	}
	room = core.NewRoomService(&domain.Room{ID: id})
	f.rooms[id] = room
	return room
}

func (f *RoomManagerImpl) Get(id domain.RoomID) (core.RoomService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	return room, ok
}

// Resolve accepts an id that may name a main room or one of its
// breakouts. Room counts are small, so the breakout lookup is a scan.
func (f *RoomManagerImpl) Resolve(id string) (core.RoomService, domain.BreakoutID, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if room, ok := f.rooms[domain.RoomID(id)]; ok {
		return room, "", true
	}
	bid := domain.BreakoutID(id)
	for _, room := range f.rooms {
		if room.HasBreakout(bid) {
			return room, bid, true
		}
	}
	return nil, "", false
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: r.MemberCount()})
	}
	return out
}

func (f *RoomManagerImpl) StopRoom(id domain.RoomID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, id)
}
