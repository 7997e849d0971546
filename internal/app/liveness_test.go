package app

import (
	"testing"
	"time"
)

func TestSweepProbesMembers(t *testing.T) {
	e := newEnv(t)
	alice := e.connect("alice")
	e.join("alice", JoinParams{RoomID: "lounge"})
	alice.reset()

	e.reg.Sweep()
	hb := alice.byType("heartbeat")
	if len(hb) != 1 {
		t.Fatalf("heartbeat frames = %v", alice.all())
	}
	if hb[0]["ts"].(float64) != float64(e.clock.UnixMilli()) {
		t.Fatalf("ts = %v", hb[0]["ts"])
	}
}

func TestSweepDestroysStaleRooms(t *testing.T) {
	e := newEnv(t)
	e.connect("alice")
	e.join("alice", JoinParams{RoomID: "lounge"})

	// fresh member: room survives
	e.advance(3 * time.Second)
	e.reg.Sweep()
	if _, ok := e.reg.room("lounge"); !ok {
		t.Fatal("room with a fresh member must survive the sweep")
	}

	// past the freshness window: destroyed and delisted
	e.advance(3 * time.Second)
	e.reg.Sweep()
	if _, ok := e.reg.room("lounge"); ok {
		t.Fatal("room with only stale members must be destroyed")
	}
	if ids := summaryIDs(e.reg.Summaries("")); ids["lounge"] {
		t.Fatal("destroyed room must not be listed")
	}
}

func TestSweepActivityResetsTheClock(t *testing.T) {
	e := newEnv(t)
	e.connect("alice")
	e.join("alice", JoinParams{RoomID: "lounge"})

	e.advance(4 * time.Second)
	e.tracker.Touch("alice") // heartbeat pong
	e.advance(4 * time.Second)
	e.reg.Sweep()
	if _, ok := e.reg.room("lounge"); !ok {
		t.Fatal("a pong within the window must keep the room alive")
	}
}

func TestSweepSparesLockedRooms(t *testing.T) {
	e := newEnv(t)
	e.connect("alice")
	e.join("alice", JoinParams{RoomID: "keeper"})
	if _, err := e.reg.SetLocked("alice", "", true); err != nil {
		t.Fatal(err)
	}

	e.advance(time.Minute)
	e.reg.Sweep()
	if _, ok := e.reg.room("keeper"); !ok {
		t.Fatal("locked room must survive the sweep")
	}
	ids := summaryIDs(e.reg.Summaries(""))
	if !ids["keeper"] {
		t.Fatal("locked room must stay listed with zero alive members")
	}
}
