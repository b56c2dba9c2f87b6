package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
)

type sessionEntry struct {
	Session *domain.Session
	Conn    core.SignalConnection
	Cancel  context.CancelFunc
}

// Membership is the last-known placement of a removed session, returned
// so callers can emit the matching leave notifications exactly once.
type Membership struct {
	DisplayName string
	Role        domain.Role
	RoomID      domain.RoomID
	BreakoutID  domain.BreakoutID
}

// Registry is the process-wide session registry: connection id to
// presence state plus transport endpoint. It is an injected instance,
// never a package global.
type Registry struct {
	mu      sync.RWMutex
	entries map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[core.SessionID]*sessionEntry)}
}

// Register creates an empty session entry for a fresh connection. No
// side effects visible to others; re-registering replaces the endpoint.
func (r *Registry) Register(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sid] = &sessionEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("registered connection")
}

// SetPresence populates the session on join. Fails with ErrNotConnected
// if the connection is unknown.
func (r *Registry) SetPresence(sid core.SessionID, displayName string, role domain.Role) (*domain.Session, error) {
	sess, err := domain.NewSession(displayName, role)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return nil, domain.ErrNotConnected
	}
	e.Session = sess
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).
		Str("user", displayName).Str("role", string(role)).Msg("presence set")
	return sess, nil
}

// Remove deletes the entry, cancels the connection's context and
// returns the last-known membership. The second Remove of the same id
// reports ok=false, which keeps disconnect teardown idempotent.
func (r *Registry) Remove(sid core.SessionID) (Membership, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return Membership{}, false
	}
	delete(r.entries, sid)
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed session")
	if e.Session == nil {
		return Membership{}, true
	}
	return Membership{
		DisplayName: e.Session.DisplayName,
		Role:        e.Session.Role,
		RoomID:      e.Session.RoomID,
		BreakoutID:  e.Session.BreakoutID,
	}, true
}

// ClearPresence undoes SetPresence when a join loses the duplicate-name
// race, so a failed operation leaves no partial state behind.
func (r *Registry) ClearPresence(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sid]; ok {
		e.Session = nil
	}
}

// SetRoom records the main room the session joined.
func (r *Registry) SetRoom(sid core.SessionID, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok || e.Session == nil {
		return false
	}
	e.Session.RoomID = roomID
	return true
}

// SetBreakout records the breakout the session occupies; empty clears it.
// A session with a breakout always keeps its owning RoomID.
func (r *Registry) SetBreakout(sid core.SessionID, bid domain.BreakoutID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok || e.Session == nil {
		return false
	}
	e.Session.BreakoutID = bid
	return true
}

// ClearRoom detaches the session from room and breakout on leave; the
// presence record survives so the connection may join again.
func (r *Registry) ClearRoom(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sid]; ok && e.Session != nil {
		e.Session.RoomID = ""
		e.Session.BreakoutID = ""
	}
}

// Session returns a value snapshot taken under the lock; callers never
// see a struct another goroutine may still mutate.
func (r *Registry) Session(sid core.SessionID) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[sid]
	if !ok || e.Session == nil {
		return domain.Session{}, false
	}
	return *e.Session, true
}

// Member returns the session paired with its endpoint, the shape rooms
// store and relays enrich from.
func (r *Registry) Member(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[sid]
	if !ok || e.Session == nil {
		return nil, false
	}
	return core.NewMemberSession(e.Session, e.Conn), true
}

func (r *Registry) Conn(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[sid]
	if !ok || e.Conn == nil {
		return nil, false
	}
	return e.Conn, true
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.entries[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
