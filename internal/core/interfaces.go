package core

import "github.com/huddleapp/huddle/internal/domain"

// Frame is a raw outbound payload, already marshaled.
type Frame []byte

// SessionID is the transport-assigned connection identity. It is the
// canonical member key everywhere; display names are only a uniqueness
// constraint checked at join time.
type SessionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds a domain.Session and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Session
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

// RosterEntry is the read-only view pushed to clients on each join.
// Info is a value snapshot taken under the room lock; later toggles
// never reach a frame already being marshaled.
type RosterEntry struct {
	UserID SessionID      `json:"userId"`
	Info   domain.Session `json:"info"`
}

// RoomService is the core-facing API of a room. It owns the membership,
// viewer and breakout sets under one lock, linearizing all mutations of
// the room; it never touches transport resources beyond TrySend.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	HasName(name string) bool

	// AddMember fails with domain.ErrDuplicateUser; the check and the
	// insert happen under the same lock so concurrent joins cannot both
	// observe "not present".
	AddMember(sid SessionID, ms MemberSession) error
	// RemoveMember is idempotent. If the member occupied a breakout that
	// became empty, the closed breakout is returned so the caller can
	// notify the main room.
	RemoveMember(sid SessionID) (removed bool, closed *domain.Breakout)
	// Roster lists participants in main-room scope: viewers and breakout
	// occupants are excluded.
	Roster() []RosterEntry
	// Toggle flips the member's named track. The room owns its members'
	// media state: mutation and every roster read happen under the same
	// lock.
	Toggle(sid SessionID, track domain.Track) (bool, error)
	// MemberInfo snapshots one member's presence.
	MemberInfo(sid SessionID) (domain.Session, bool)

	AddViewer(sid SessionID, ms MemberSession)
	RemoveViewer(sid SessionID) bool

	// CreateBreakout allocates a fresh id; ids are never reused.
	CreateBreakout(name string) domain.Breakout
	// JoinBreakout moves the member out of main broadcast scope. A member
	// already in another breakout is moved; if that drained the old
	// breakout it is returned as closedPrev.
	JoinBreakout(id domain.BreakoutID, sid SessionID) (closedPrev *domain.Breakout, err error)
	// LeaveBreakout restores the member to main scope and reports whether
	// the breakout emptied and was deleted.
	LeaveBreakout(sid SessionID) (left domain.Breakout, closed bool, err error)
	Breakouts() []domain.Breakout
	Breakout(id domain.BreakoutID) (domain.Breakout, bool)
	HasBreakout(id domain.BreakoutID) bool
	SIDByName(name string) (SessionID, bool)
	BreakoutRoster(id domain.BreakoutID) ([]RosterEntry, error)
	BreakoutOf(sid SessionID) (domain.BreakoutID, bool)

	// Broadcast fans out to main scope: participants outside breakouts,
	// plus viewers, minus the sender.
	Broadcast(from SessionID, data Frame) PublishResult
	BroadcastBreakout(id domain.BreakoutID, from SessionID, data Frame) PublishResult
	// BroadcastScope delivers to whatever scope the sender currently
	// occupies (its breakout if inside one, main scope otherwise).
	BroadcastScope(from SessionID, data Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
}

type RoomDirectory interface {
	GetOrCreate(id domain.RoomID) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	// Resolve maps an id that may name either a main room or one of its
	// breakouts to the owning room.
	Resolve(id string) (RoomService, domain.BreakoutID, bool)
	List() []RoomInfo
	StopRoom(id domain.RoomID)
}
