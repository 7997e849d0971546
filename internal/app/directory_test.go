package app

import (
	"testing"

	"github.com/evhenko/tunesync/internal/core"
)

func lobbyEnv(t *testing.T) (*env, *Directory, *fakeSender) {
	t.Helper()
	e := newEnv(t)
	dir := NewDirectory(e.reg, e.tracker)
	lobby := e.connect("lobby")
	dir.Subscribe("lobby")
	return e, dir, lobby
}

func TestDirectoryInitialList(t *testing.T) {
	e, d, lobby := lobbyEnv(t)
	lists := lobby.byType("rooms-list")
	if len(lists) != 1 {
		t.Fatalf("frames = %v", lobby.all())
	}
	if rooms := lists[0]["rooms"].([]any); len(rooms) != 0 {
		t.Fatalf("expected an empty directory, got %v", rooms)
	}

	// a subscriber joining later sees the current rooms in full
	e.connect("alice")
	e.join("alice", JoinParams{RoomID: "lounge"})
	late := e.connect("late")
	d.Subscribe("late")
	lists = late.byType("rooms-list")
	if len(lists) != 1 {
		t.Fatalf("late frames = %v", late.all())
	}
	if rooms := lists[0]["rooms"].([]any); len(rooms) != 1 {
		t.Fatalf("late list = %v", rooms)
	}
}

func TestDirectoryDiffs(t *testing.T) {
	e, _, lobby := lobbyEnv(t)
	lobby.reset()

	e.connect("alice")
	e.join("alice", JoinParams{RoomID: "lounge"})
	added := lobby.byType("rooms-diff")
	if len(added) != 1 {
		t.Fatalf("frames = %v", lobby.all())
	}
	if rooms := added[0]["added"].([]any); len(rooms) != 1 {
		t.Fatalf("added = %v", added[0])
	}

	// playback change alone does not notify the directory; the next
	// membership event carries the updated summary
	lobby.reset()
	if _, err := e.reg.PlaylistAdd("alice", core.TrackInput{URL: "https://x/a"}); err != nil {
		t.Fatal(err)
	}
	if len(lobby.all()) != 0 {
		t.Fatalf("playlist change must not refresh the directory: %v", lobby.all())
	}

	e.connect("bob")
	e.join("bob", JoinParams{RoomID: "lounge"})
	diffs := lobby.byType("rooms-diff")
	if len(diffs) != 1 {
		t.Fatalf("frames = %v", lobby.all())
	}
	if upd := diffs[0]["updated"].([]any); len(upd) != 1 {
		t.Fatalf("updated = %v", diffs[0])
	}

	// last member leaving removes the room
	lobby.reset()
	e.reg.Leave("alice", "")
	e.reg.Leave("bob", "")
	var removed []any
	for _, d := range lobby.byType("rooms-diff") {
		removed = append(removed, d["removed"].([]any)...)
	}
	if len(removed) != 1 || removed[0].(string) != "lounge" {
		t.Fatalf("removed = %v", removed)
	}
}

func TestDirectoryJoinedFlagIsPersonal(t *testing.T) {
	e, d, _ := lobbyEnv(t)

	e.connect("alice")
	e.join("alice", JoinParams{RoomID: "lounge", Account: "alice@example.com"})

	mine := e.connect("alice-lobby")
	e.tracker.SetIdentity("alice-lobby", "Alice", "alice@example.com")
	d.Subscribe("alice-lobby")

	lists := mine.byType("rooms-list")
	if len(lists) != 1 {
		t.Fatalf("frames = %v", mine.all())
	}
	room := lists[0]["rooms"].([]any)[0].(map[string]any)
	if room["joined"] != true {
		t.Fatalf("joined = %v, want true for the account's own room", room["joined"])
	}
}

func TestDirectoryUnsubscribeStopsUpdates(t *testing.T) {
	e, d, lobby := lobbyEnv(t)
	d.Unsubscribe("lobby")
	lobby.reset()

	e.connect("alice")
	e.join("alice", JoinParams{RoomID: "lounge"})
	if len(lobby.all()) != 0 {
		t.Fatalf("unsubscribed lobby still received %v", lobby.all())
	}
}
