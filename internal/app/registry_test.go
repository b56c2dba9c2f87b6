package app

import (
	"errors"
	"testing"

	"github.com/huddleapp/huddle/internal/domain"
)

func TestRegistry_SetPresenceRequiresConnection(t *testing.T) {
	r := NewRegistry()
	if _, err := r.SetPresence("ghost", "alice", domain.RoleParticipant); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("got %v, want ErrNotConnected", err)
	}
}

func TestRegistry_RemoveCancelsConnection(t *testing.T) {
	r := NewRegistry()
	canceled := false
	r.Register("s1", nil, func() { canceled = true })

	if _, ok := r.Remove("s1"); !ok {
		t.Fatalf("remove: entry not found")
	}
	if !canceled {
		t.Fatalf("connection context survived Remove")
	}
}

func TestRegistry_RemoveReturnsMembershipOnce(t *testing.T) {
	r := NewRegistry()
	r.Register("s1", nil, nil)
	if _, err := r.SetPresence("s1", "alice", domain.RoleParticipant); err != nil {
		t.Fatalf("SetPresence: %v", err)
	}
	r.SetRoom("s1", "r1")
	r.SetBreakout("s1", "b1")

	mem, ok := r.Remove("s1")
	if !ok {
		t.Fatalf("first remove: not found")
	}
	if mem.RoomID != "r1" || mem.BreakoutID != "b1" || mem.DisplayName != "alice" {
		t.Fatalf("membership: %+v", mem)
	}
	if _, ok := r.Remove("s1"); ok {
		t.Fatalf("second remove should be a no-op")
	}
}

func TestRegistry_ClearPresenceUndoesJoinRace(t *testing.T) {
	r := NewRegistry()
	r.Register("s1", nil, nil)
	if _, err := r.SetPresence("s1", "alice", domain.RoleParticipant); err != nil {
		t.Fatalf("SetPresence: %v", err)
	}
	r.ClearPresence("s1")
	if _, ok := r.Session("s1"); ok {
		t.Fatalf("session survived ClearPresence")
	}
	// the connection itself is still registered
	if _, err := r.SetPresence("s1", "alice2", domain.RoleParticipant); err != nil {
		t.Fatalf("re-SetPresence: %v", err)
	}
}

func TestRegistry_NameValidation(t *testing.T) {
	r := NewRegistry()
	r.Register("s1", nil, nil)
	if _, err := r.SetPresence("s1", "", domain.RoleParticipant); !errors.Is(err, domain.ErrNameEmpty) {
		t.Fatalf("empty name: got %v", err)
	}
	long := make([]byte, domain.MaxDisplayNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := r.SetPresence("s1", string(long), domain.RoleParticipant); !errors.Is(err, domain.ErrNameTooLong) {
		t.Fatalf("long name: got %v", err)
	}
}
