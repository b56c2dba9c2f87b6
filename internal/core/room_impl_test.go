package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/huddleapp/huddle/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return errors.New("backpressure")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func newMember(t *testing.T, name string, role domain.Role) (MemberSession, *fakeConn) {
	t.Helper()
	sess, err := domain.NewSession(name, role)
	if err != nil {
		t.Fatalf("NewSession(%q): %v", name, err)
	}
	conn := &fakeConn{}
	return NewMemberSession(sess, conn), conn
}

func newTestRoom() RoomService {
	return NewRoomService(&domain.Room{ID: "r1"})
}

func TestRoom_DuplicateNameRejected(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	impostor, _ := newMember(t, "alice", domain.RoleParticipant)

	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := r.AddMember("s2", impostor); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("second add: got %v, want ErrDuplicateUser", err)
	}
	if r.MemberCount() != 1 {
		t.Fatalf("member count: got %d, want 1", r.MemberCount())
	}
}

func TestRoom_JoinLeaveIsIdentity(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	bob, _ := newMember(t, "bob", domain.RoleParticipant)
	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("add alice: %v", err)
	}

	if err := r.AddMember("s2", bob); err != nil {
		t.Fatalf("add bob: %v", err)
	}
	if removed, _ := r.RemoveMember("s2"); !removed {
		t.Fatalf("remove bob: not removed")
	}

	if r.MemberCount() != 1 {
		t.Fatalf("member count: got %d, want 1", r.MemberCount())
	}
	if r.HasName("bob") {
		t.Fatalf("bob's name still reserved after leave")
	}
	// the name is free again
	bob2, _ := newMember(t, "bob", domain.RoleParticipant)
	if err := r.AddMember("s3", bob2); err != nil {
		t.Fatalf("re-add bob: %v", err)
	}
}

func TestRoom_RemoveMemberIdempotent(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("add: %v", err)
	}
	if removed, _ := r.RemoveMember("s1"); !removed {
		t.Fatalf("first remove: not removed")
	}
	if removed, _ := r.RemoveMember("s1"); removed {
		t.Fatalf("second remove: reported removed again")
	}
}

func TestRoom_RosterExcludesViewersAndBreakoutOccupants(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	bob, _ := newMember(t, "bob", domain.RoleParticipant)
	watcher, _ := newMember(t, "watcher", domain.RoleViewer)

	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	if err := r.AddMember("s2", bob); err != nil {
		t.Fatalf("add bob: %v", err)
	}
	r.AddViewer("s3", watcher)

	bo := r.CreateBreakout("huddle-1")
	if _, err := r.JoinBreakout(bo.ID, "s2"); err != nil {
		t.Fatalf("join breakout: %v", err)
	}

	roster := r.Roster()
	if len(roster) != 1 {
		t.Fatalf("roster size: got %d, want 1 (%+v)", len(roster), roster)
	}
	if roster[0].UserID != "s1" {
		t.Fatalf("roster entry: got %s, want s1", roster[0].UserID)
	}
}

func TestRoom_BreakoutLifecycle(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	bob, _ := newMember(t, "bob", domain.RoleParticipant)
	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	if err := r.AddMember("s2", bob); err != nil {
		t.Fatalf("add bob: %v", err)
	}

	bo := r.CreateBreakout("huddle-1")
	if !r.HasBreakout(bo.ID) {
		t.Fatalf("breakout missing after create")
	}

	if _, err := r.JoinBreakout(bo.ID, "s2"); err != nil {
		t.Fatalf("join breakout: %v", err)
	}
	if got, ok := r.BreakoutOf("s2"); !ok || got != bo.ID {
		t.Fatalf("BreakoutOf: got %s/%v", got, ok)
	}
	// member stays in the owning room
	if r.MemberCount() != 2 {
		t.Fatalf("member count while in breakout: got %d, want 2", r.MemberCount())
	}

	left, closed, err := r.LeaveBreakout("s2")
	if err != nil {
		t.Fatalf("leave breakout: %v", err)
	}
	if left.ID != bo.ID {
		t.Fatalf("left breakout: got %s, want %s", left.ID, bo.ID)
	}
	if !closed {
		t.Fatalf("breakout with zero members not closed")
	}
	if r.HasBreakout(bo.ID) {
		t.Fatalf("breakout still present after last member left")
	}

	if _, err := r.JoinBreakout(bo.ID, "s1"); !errors.Is(err, domain.ErrUnknownBreakoutRoom) {
		t.Fatalf("join deleted breakout: got %v, want ErrUnknownBreakoutRoom", err)
	}
}

func TestRoom_BreakoutIDsNeverReused(t *testing.T) {
	r := newTestRoom()
	a := r.CreateBreakout("one")
	b := r.CreateBreakout("one")
	if a.ID == b.ID {
		t.Fatalf("two breakouts share an id: %s", a.ID)
	}
}

func TestRoom_JoinBreakoutMovesBetweenBreakouts(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("add: %v", err)
	}
	first := r.CreateBreakout("one")
	second := r.CreateBreakout("two")

	if _, err := r.JoinBreakout(first.ID, "s1"); err != nil {
		t.Fatalf("join first: %v", err)
	}
	closedPrev, err := r.JoinBreakout(second.ID, "s1")
	if err != nil {
		t.Fatalf("join second: %v", err)
	}
	if closedPrev == nil || closedPrev.ID != first.ID {
		t.Fatalf("first breakout not closed on move: %+v", closedPrev)
	}
	if got, _ := r.BreakoutOf("s1"); got != second.ID {
		t.Fatalf("session not in second breakout: %s", got)
	}
}

func TestRoom_BroadcastScopes(t *testing.T) {
	r := newTestRoom()
	alice, aliceConn := newMember(t, "alice", domain.RoleParticipant)
	bob, bobConn := newMember(t, "bob", domain.RoleParticipant)
	carol, carolConn := newMember(t, "carol", domain.RoleParticipant)
	watcher, watcherConn := newMember(t, "watcher", domain.RoleViewer)

	for sid, ms := range map[SessionID]MemberSession{"s1": alice, "s2": bob, "s3": carol} {
		if err := r.AddMember(sid, ms); err != nil {
			t.Fatalf("add %s: %v", sid, err)
		}
	}
	r.AddViewer("s4", watcher)

	bo := r.CreateBreakout("huddle-1")
	if _, err := r.JoinBreakout(bo.ID, "s3"); err != nil {
		t.Fatalf("join breakout: %v", err)
	}

	// main scope from alice: bob and the viewer, not carol, not alice
	res := r.Broadcast("s1", Frame(`{"type":"x"}`))
	if res.SentTo != 2 {
		t.Fatalf("main broadcast sent_to: got %d, want 2", res.SentTo)
	}
	if aliceConn.count() != 0 {
		t.Fatalf("sender received its own broadcast")
	}
	if bobConn.count() != 1 || watcherConn.count() != 1 {
		t.Fatalf("main scope delivery: bob=%d watcher=%d", bobConn.count(), watcherConn.count())
	}
	if carolConn.count() != 0 {
		t.Fatalf("breakout occupant received main broadcast")
	}

	// carol's scope is her breakout, where she is alone
	res = r.BroadcastScope("s3", Frame(`{"type":"y"}`))
	if res.SentTo != 0 {
		t.Fatalf("breakout scope sent_to: got %d, want 0", res.SentTo)
	}
}

func TestRoom_ToggleFlipsOneTrack(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("add: %v", err)
	}

	on, err := r.Toggle("s1", domain.TrackVideo)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if on {
		t.Fatalf("video starts true, first toggle should turn it off")
	}
	info, ok := r.MemberInfo("s1")
	if !ok {
		t.Fatalf("member info missing")
	}
	if info.Video || !info.Audio {
		t.Fatalf("member state after video toggle: %+v", info)
	}

	if _, err := r.Toggle("ghost", domain.TrackAudio); !errors.Is(err, domain.ErrUnknownSession) {
		t.Fatalf("toggle of absent member: got %v", err)
	}
}

func TestRoom_RosterSnapshotsMemberState(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("add: %v", err)
	}

	before := r.Roster()
	if _, err := r.Toggle("s1", domain.TrackVideo); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !before[0].Info.Video {
		t.Fatalf("earlier roster snapshot mutated by a later toggle")
	}
	after := r.Roster()
	if after[0].Info.Video {
		t.Fatalf("toggle not visible in a fresh roster")
	}
}

func TestRoom_MemberStateDetachedFromCaller(t *testing.T) {
	r := newTestRoom()
	sess, err := domain.NewSession("alice", domain.RoleParticipant)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := r.AddMember("s1", NewMemberSession(sess, &fakeConn{})); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := r.Toggle("s1", domain.TrackVideo); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	// the struct handed to AddMember belongs to the caller; the room
	// mutates only its own copy
	if !sess.Video {
		t.Fatalf("room toggle reached the caller's struct")
	}
}

func TestRoom_ConcurrentToggleAndRoster(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	bob, _ := newMember(t, "bob", domain.RoleParticipant)
	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	if err := r.AddMember("s2", bob); err != nil {
		t.Fatalf("add bob: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := r.Toggle("s1", domain.TrackVideo); err != nil {
				t.Errorf("toggle: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			r.Roster()
			r.MemberInfo("s1")
		}
	}()
	wg.Wait()
}

func TestRoom_BroadcastReportsBackpressure(t *testing.T) {
	r := newTestRoom()
	alice, _ := newMember(t, "alice", domain.RoleParticipant)
	bob, bobConn := newMember(t, "bob", domain.RoleParticipant)
	bobConn.full = true

	if err := r.AddMember("s1", alice); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	if err := r.AddMember("s2", bob); err != nil {
		t.Fatalf("add bob: %v", err)
	}

	res := r.Broadcast("s1", Frame(`{}`))
	if res.SentTo != 0 || len(res.Dropped) != 1 || res.Dropped[0] != "s2" {
		t.Fatalf("backpressure result: %+v", res)
	}
}
