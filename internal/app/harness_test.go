package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evhenko/tunesync/internal/domain"
)

// fakeSender records every frame handed to it, decoded into a generic
// map keyed by the frame's type field.
type fakeSender struct {
	mu     sync.Mutex
	frames []map[string]any
	closed bool
}

func (f *fakeSender) TrySend(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	f.mu.Lock()
	f.frames = append(f.frames, m)
	f.mu.Unlock()
	return nil
}

func (f *fakeSender) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSender) all() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, len(f.frames))
	copy(out, f.frames)
	return out
}

// byType returns the recorded frames with the given type, in order.
func (f *fakeSender) byType(typ string) []map[string]any {
	var out []map[string]any
	for _, m := range f.all() {
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	f.frames = nil
	f.mu.Unlock()
}

// fakeStore is an in-memory RoomStore.
type fakeStore struct {
	mu    sync.Mutex
	rooms map[string]domain.RoomState
}

func newFakeStore() *fakeStore {
	return &fakeStore{rooms: make(map[string]domain.RoomState)}
}

func (s *fakeStore) Load(id string) (*domain.RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.rooms[id]; ok {
		return &st, nil
	}
	return nil, nil
}

func (s *fakeStore) Save(id string, st domain.RoomState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = st
	return nil
}

func (s *fakeStore) LoadLocked() (map[string]domain.RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.RoomState)
	for id, st := range s.rooms {
		if st.Locked {
			out[id] = st
		}
	}
	return out, nil
}

// env wires a registry against fakes with a controllable clock.
type env struct {
	t       *testing.T
	store   *fakeStore
	tracker *Tracker
	reg     *Registry
	clock   time.Time
	senders map[SessionID]*fakeSender
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		t:       t,
		store:   newFakeStore(),
		tracker: NewTracker(),
		clock:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		senders: make(map[SessionID]*fakeSender),
	}
	e.tracker.now = func() time.Time { return e.clock }
	e.reg = NewRegistry(e.store, e.tracker, 5*time.Second, bcrypt.MinCost)
	e.reg.now = e.tracker.now
	t.Cleanup(e.reg.Close)
	return e
}

func (e *env) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func (e *env) connect(sid SessionID) *fakeSender {
	e.t.Helper()
	s := &fakeSender{}
	e.senders[sid] = s
	e.tracker.Register(sid, s)
	return s
}

func (e *env) join(sid SessionID, p JoinParams) {
	e.t.Helper()
	if err := e.reg.Join(sid, p); err != nil {
		e.t.Fatalf("join %s into %s: %v", sid, p.RoomID, err)
	}
}

func summaryIDs(list []domain.RoomSummary) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, s := range list {
		out[s.ID] = true
	}
	return out
}
