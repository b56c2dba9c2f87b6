package core

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/domain"
)

// breakoutState keeps a sub-room's meta plus the ids of its occupants.
// Occupants stay in the owning room's member set, so the subset invariant
// holds structurally.
type breakoutState struct {
	meta    domain.Breakout
	members map[SessionID]struct{}
}

// roomImpl is a threadsafe in-memory room. One mutex guards members,
// viewers and all breakouts of the room, which linearizes every
// membership mutation on the room; a breakout op never needs a second
// room's lock. It never closes adapter-owned resources.
type roomImpl struct {
	room *domain.Room

	mu         sync.RWMutex
	bySID      map[SessionID]MemberSession
	byName     map[string]SessionID
	viewers    map[SessionID]MemberSession
	breakouts  map[domain.BreakoutID]*breakoutState
	inBreakout map[SessionID]domain.BreakoutID
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:       room,
		bySID:      make(map[SessionID]MemberSession),
		byName:     make(map[string]SessionID),
		viewers:    make(map[SessionID]MemberSession),
		breakouts:  make(map[domain.BreakoutID]*breakoutState),
		inBreakout: make(map[SessionID]domain.BreakoutID),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) HasName(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

func (r *roomImpl) AddMember(sid SessionID, ms MemberSession) error {
	name := ms.Meta().DisplayName
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return domain.ErrDuplicateUser
	}
	// the room owns its copy of the meta; the caller's struct is never
	// read or written again
	meta := *ms.Meta()
	r.bySID[sid] = NewMemberSession(&meta, ms.Signal())
	r.byName[name] = sid
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("sid", string(sid)).Str("user", name).Msg("member added")
	return nil
}

func (r *roomImpl) RemoveMember(sid SessionID) (bool, *domain.Breakout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.bySID[sid]
	if !ok {
		return false, nil
	}
	delete(r.byName, ms.Meta().DisplayName)
	delete(r.bySID, sid)
	closed := r.detachFromBreakoutLocked(sid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("sid", string(sid)).Msg("member removed")
	return true, closed
}

func (r *roomImpl) Roster() []RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RosterEntry, 0, len(r.bySID))
	for sid, ms := range r.bySID {
		if _, away := r.inBreakout[sid]; away {
			continue
		}
		out = append(out, RosterEntry{UserID: sid, Info: *ms.Meta()})
	}
	return out
}

func (r *roomImpl) Toggle(sid SessionID, track domain.Track) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.bySID[sid]
	if !ok {
		return false, domain.ErrUnknownSession
	}
	on := ms.Meta().Toggle(track)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("sid", string(sid)).Str("track", string(track)).Bool("on", on).Msg("toggled")
	return on, nil
}

func (r *roomImpl) MemberInfo(sid SessionID) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.bySID[sid]
	if !ok {
		return domain.Session{}, false
	}
	return *ms.Meta(), true
}

func (r *roomImpl) AddViewer(sid SessionID, ms MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	meta := *ms.Meta()
	r.viewers[sid] = NewMemberSession(&meta, ms.Signal())
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("sid", string(sid)).Str("user", meta.DisplayName).Msg("viewer attached")
}

func (r *roomImpl) RemoveViewer(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.viewers[sid]; !ok {
		return false
	}
	delete(r.viewers, sid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("sid", string(sid)).Msg("viewer detached")
	return true
}

func (r *roomImpl) CreateBreakout(name string) domain.Breakout {
	bo := domain.Breakout{ID: domain.BreakoutID(uuid.NewString()), Name: name}
	r.mu.Lock()
	r.breakouts[bo.ID] = &breakoutState{meta: bo, members: make(map[SessionID]struct{})}
	r.mu.Unlock()
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("breakout", string(bo.ID)).Str("name", name).Msg("breakout created")
	return bo
}

func (r *roomImpl) JoinBreakout(id domain.BreakoutID, sid SessionID) (*domain.Breakout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bo, ok := r.breakouts[id]
	if !ok {
		return nil, domain.ErrUnknownBreakoutRoom
	}
	if _, ok := r.bySID[sid]; !ok {
		return nil, domain.ErrUserNotFound
	}
	closedPrev := r.detachFromBreakoutLocked(sid)
	bo.members[sid] = struct{}{}
	r.inBreakout[sid] = id
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("breakout", string(id)).Str("sid", string(sid)).Msg("joined breakout")
	return closedPrev, nil
}

func (r *roomImpl) LeaveBreakout(sid SessionID) (domain.Breakout, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.inBreakout[sid]
	if !ok {
		return domain.Breakout{}, false, domain.ErrUnknownBreakoutRoom
	}
	meta := r.breakouts[id].meta
	closed := r.detachFromBreakoutLocked(sid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("breakout", string(id)).Str("sid", string(sid)).Msg("left breakout")
	return meta, closed != nil, nil
}

// detachFromBreakoutLocked removes sid from its breakout, if any, and
// deletes the breakout when it empties. The freed id is never reused:
// ids are fresh UUIDs.
func (r *roomImpl) detachFromBreakoutLocked(sid SessionID) *domain.Breakout {
	id, ok := r.inBreakout[sid]
	if !ok {
		return nil
	}
	delete(r.inBreakout, sid)
	bo := r.breakouts[id]
	delete(bo.members, sid)
	if len(bo.members) > 0 {
		return nil
	}
	delete(r.breakouts, id)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("breakout", string(id)).Msg("breakout emptied, deleted")
	meta := bo.meta
	return &meta
}

func (r *roomImpl) Breakouts() []domain.Breakout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Breakout, 0, len(r.breakouts))
	for _, bo := range r.breakouts {
		out = append(out, bo.meta)
	}
	return out
}

func (r *roomImpl) Breakout(id domain.BreakoutID) (domain.Breakout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bo, ok := r.breakouts[id]
	if !ok {
		return domain.Breakout{}, false
	}
	return bo.meta, true
}

func (r *roomImpl) SIDByName(name string) (SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byName[name]
	return sid, ok
}

func (r *roomImpl) HasBreakout(id domain.BreakoutID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.breakouts[id]
	return ok
}

func (r *roomImpl) BreakoutRoster(id domain.BreakoutID) ([]RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bo, ok := r.breakouts[id]
	if !ok {
		return nil, domain.ErrUnknownBreakoutRoom
	}
	out := make([]RosterEntry, 0, len(bo.members))
	for sid := range bo.members {
		if ms, ok := r.bySID[sid]; ok {
			out = append(out, RosterEntry{UserID: sid, Info: *ms.Meta()})
		}
	}
	return out, nil
}

func (r *roomImpl) BreakoutOf(sid SessionID) (domain.BreakoutID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.inBreakout[sid]
	return id, ok
}

func (r *roomImpl) Broadcast(from SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, ms := range r.bySID {
		if sid == from {
			continue
		}
		if _, away := r.inBreakout[sid]; away {
			continue
		}
		r.trySendLocked(sid, ms, data, &res)
	}
	for sid, ms := range r.viewers {
		if sid == from {
			continue
		}
		r.trySendLocked(sid, ms, data, &res)
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("from", string(from)).Int("sent_to", res.SentTo).
		Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) BroadcastBreakout(id domain.BreakoutID, from SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	bo, ok := r.breakouts[id]
	if !ok {
		return res
	}
	for sid := range bo.members {
		if sid == from {
			continue
		}
		if ms, ok := r.bySID[sid]; ok {
			r.trySendLocked(sid, ms, data, &res)
		}
	}
	return res
}

func (r *roomImpl) BroadcastScope(from SessionID, data Frame) PublishResult {
	r.mu.RLock()
	id, away := r.inBreakout[from]
	r.mu.RUnlock()
	if away {
		return r.BroadcastBreakout(id, from, data)
	}
	return r.Broadcast(from, data)
}

// trySendLocked delivers fire-and-forget: a full send buffer or detached
// member is recorded as dropped, never waited on.
func (r *roomImpl) trySendLocked(sid SessionID, ms MemberSession, data Frame, res *PublishResult) {
	conn := ms.Signal()
	if conn == nil {
		return
	}
	if err := conn.TrySend(data); err != nil {
		res.Dropped = append(res.Dropped, sid)
		return
	}
	res.SentTo++
}
