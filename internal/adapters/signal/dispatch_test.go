package signal

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evhenko/tunesync/internal/app"
	"github.com/evhenko/tunesync/internal/auth"
	"github.com/evhenko/tunesync/internal/domain"
)

type recordingSender struct {
	mu     sync.Mutex
	frames []map[string]any
}

func (r *recordingSender) TrySend(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	r.mu.Lock()
	r.frames = append(r.frames, m)
	r.mu.Unlock()
	return nil
}

func (r *recordingSender) Close() {}

func (r *recordingSender) byType(typ string) []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []map[string]any
	for _, m := range r.frames {
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func (r *recordingSender) reset() {
	r.mu.Lock()
	r.frames = nil
	r.mu.Unlock()
}

type memStore struct {
	mu    sync.Mutex
	rooms map[string]domain.RoomState
}

func (s *memStore) Load(id string) (*domain.RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.rooms[id]; ok {
		return &st, nil
	}
	return nil, nil
}

func (s *memStore) Save(id string, st domain.RoomState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = st
	return nil
}

func (s *memStore) LoadLocked() (map[string]domain.RoomState, error) {
	return map[string]domain.RoomState{}, nil
}

func testController(t *testing.T) (*Controller, *app.Tracker) {
	t.Helper()
	tracker := app.NewTracker()
	reg := app.NewRegistry(&memStore{rooms: make(map[string]domain.RoomState)}, tracker, 5*time.Second, bcrypt.MinCost)
	t.Cleanup(reg.Close)
	return &Controller{
		Registry:  reg,
		Directory: app.NewDirectory(reg, tracker),
		Tracker:   tracker,
		Tokens:    auth.NewTokenManager("test-secret", time.Hour),
	}, tracker
}

func TestDispatchAcks(t *testing.T) {
	ctl, tracker := testController(t)
	s := &recordingSender{}
	tracker.Register("s1", s)

	t.Run("join with seq acks ok", func(t *testing.T) {
		ctl.dispatch("s1", []byte(`{"type":"join-room","seq":1,"roomId":"lounge","name":"Alice"}`))
		acks := s.byType("ack")
		if len(acks) != 1 {
			t.Fatalf("frames = %v", s.frames)
		}
		a := acks[0]
		if a["seq"].(float64) != 1 || a["ok"] != true || a["roomId"] != "lounge" {
			t.Fatalf("ack = %v", a)
		}
	})

	t.Run("failure with seq acks the code", func(t *testing.T) {
		s.reset()
		ctl.dispatch("s1", []byte(`{"type":"set-play-mode","seq":2,"mode":"bogus"}`))
		acks := s.byType("ack")
		if len(acks) != 1 {
			t.Fatalf("frames = %v", s.frames)
		}
		a := acks[0]
		if a["ok"] != false || a["code"] != "invalid-mode" {
			t.Fatalf("ack = %v", a)
		}
	})

	t.Run("failure without seq surfaces an error frame", func(t *testing.T) {
		s.reset()
		ctl.dispatch("s1", []byte(`{"type":"set-current-index","index":99}`))
		errs := s.byType("error")
		if len(errs) != 1 || errs[0]["code"] != "invalid-index" {
			t.Fatalf("frames = %v", s.frames)
		}
	})

	t.Run("success without seq stays silent", func(t *testing.T) {
		s.reset()
		ctl.dispatch("s1", []byte(`{"type":"set-play-mode","mode":"loop"}`))
		if len(s.byType("ack")) != 0 || len(s.byType("error")) != 0 {
			t.Fatalf("frames = %v", s.frames)
		}
	})
}

func TestDispatchDropsRoomlessEvents(t *testing.T) {
	ctl, tracker := testController(t)
	s := &recordingSender{}
	tracker.Register("stray", s)

	for _, frame := range []string{
		`{"type":"play","seq":5,"currentTime":0}`,
		`{"type":"playlist-next","seq":6}`,
		`{"type":"set-play-mode","mode":"loop"}`,
	} {
		ctl.dispatch("stray", []byte(frame))
	}
	if len(s.frames) != 0 {
		t.Fatalf("roomless events must be dropped silently, got %v", s.frames)
	}
}

func TestDispatchUnknownEventIsIgnored(t *testing.T) {
	ctl, tracker := testController(t)
	s := &recordingSender{}
	tracker.Register("s1", s)
	ctl.dispatch("s1", []byte(`{"type":"teleport"}`))
	ctl.dispatch("s1", []byte(`not json`))
	if len(s.frames) != 0 {
		t.Fatalf("frames = %v", s.frames)
	}
}

func TestWsConnTrySend(t *testing.T) {
	c := &WsConn{send: make(chan []byte, 1)}
	if err := c.TrySend([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := c.TrySend([]byte("b")); err != ErrBackpressure {
		t.Fatalf("err = %v, want ErrBackpressure", err)
	}
	<-c.send
	if err := c.TrySend([]byte("c")); err != nil {
		t.Fatal(err)
	}
}
