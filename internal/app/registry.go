package app

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/core"
	"github.com/evhenko/tunesync/internal/domain"
)

// RoomStore is the persistence collaborator. Load returns (nil, nil)
// when no state exists for the id. Save is an idempotent full-state
// upsert.
type RoomStore interface {
	Load(id string) (*domain.RoomState, error)
	Save(id string, st domain.RoomState) error
	LoadLocked() (map[string]domain.RoomState, error)
}

// ErrNoCurrentRoom marks an event from a connection that is not in any room.
// Such events are dropped silently, never acked as failures.
var ErrNoCurrentRoom = errors.New("no current room")

// Registry owns one Room per id and composes the tracker, the playlist
// and playback logic and the access flags behind serialized per-room
// mutation. Construct one per process (or per test); there is no
// package-level instance.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	tracker    *Tracker
	store      RoomStore
	window     time.Duration
	bcryptCost int

	onChange func()
	now      func() time.Time
}

func NewRegistry(store RoomStore, tracker *Tracker, window time.Duration, bcryptCost int) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		tracker:    tracker,
		store:      store,
		window:     window,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// OnChange registers the directory refresh hook. Called after join,
// leave, lock, visibility and sweep mutations, never while room locks
// are held.
func (g *Registry) OnChange(fn func()) { g.onChange = fn }

func (g *Registry) notify() {
	if g.onChange != nil {
		g.onChange()
	}
}

// Bootstrap hydrates every locked room from the store at process start.
func (g *Registry) Bootstrap() error {
	states, err := g.store.LoadLocked()
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, st := range states {
		r := newRoom(id, &st, g.now())
		g.rooms[id] = r
		go r.saver(g.store)
		log.Info().Str("module", "app.registry").Str("room", id).Msg("locked room hydrated")
	}
	return nil
}

// Close stops every room's saver. Queued writes are flushed.
func (g *Registry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, r := range g.rooms {
		r.mu.Lock()
		if !r.destroyed {
			r.destroyed = true
			close(r.stop)
		}
		r.mu.Unlock()
		delete(g.rooms, id)
	}
}

func (g *Registry) room(id string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	return r, ok
}

func (g *Registry) currentRoom(sid SessionID) (*Room, error) {
	id, ok := g.tracker.RoomOf(sid)
	if !ok {
		return nil, ErrNoCurrentRoom
	}
	r, ok := g.room(id)
	if !ok {
		return nil, ErrNoCurrentRoom
	}
	return r, nil
}

// broadcastLocked fans a frame out to the room's members. Callers hold
// r.mu; Send never blocks, so holding the lock across the fan-out keeps
// mutation and delivery order identical for every member.
func (g *Registry) broadcastLocked(r *Room, v any, except SessionID) {
	for sid := range r.members {
		if sid == except {
			continue
		}
		g.tracker.Send(sid, v)
	}
}

type JoinParams struct {
	RoomID     string
	Name       string
	Account    string // verified account identity, empty for guests
	Visibility string // creator's choice, applied on first creation only
	Password   string
}

// Join registers the connection in the room, creating or hydrating it
// first. On success the member list goes to the whole room and the
// playback snapshot, playlist and mode go to the joiner alone.
func (g *Registry) Join(sid SessionID, p JoinParams) error {
	if !domain.ValidRoomID(p.RoomID) {
		return ErrInvalidRoom
	}
	name := domain.DisplayName(p.Name)
	r, err := g.getOrCreate(p.RoomID, p)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return ErrRoomMissing
	}
	if r.visibility == domain.VisibilityPrivate {
		if p.Password == "" || !core.CheckPassword(r.passwordHash, p.Password) {
			r.mu.Unlock()
			return ErrPasswordRequired
		}
	}
	if p.Account != "" {
		if existing, ok := r.byAccount[p.Account]; ok && g.tracker.Connected(existing) {
			r.mu.Unlock()
			return ErrAlreadyInRoom
		}
	}
	g.tracker.SetIdentity(sid, name, p.Account)
	g.tracker.SetRoom(sid, r.ID)
	r.members[sid] = name
	if p.Account != "" {
		r.byAccount[p.Account] = sid
	}
	g.broadcastLocked(r, UserListFrame{Type: "user-list", Users: r.memberNamesLocked()}, "")
	state := r.stateFrameLocked()
	playlist := PlaylistFrame{Type: "playlist-updated", Playlist: r.playlist.Tracks()}
	mode := PlayModeFrame{Type: "play-mode", Mode: r.playback.Mode}
	r.mu.Unlock()

	g.tracker.Send(sid, state)
	g.tracker.Send(sid, playlist)
	g.tracker.Send(sid, mode)
	log.Info().Str("module", "app.registry").Str("room", r.ID).Str("sid", string(sid)).Msg("joined")
	g.notify()
	return nil
}

// getOrCreate resolves the room, loading persisted state on a miss. The
// store read and any password hashing happen before the registry lock is
// taken; the map insert is double-checked.
func (g *Registry) getOrCreate(id string, p JoinParams) (*Room, error) {
	if r, ok := g.room(id); ok {
		return r, nil
	}

	persisted, err := g.store.Load(id)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("room", id).Msg("room load failed")
		persisted = nil
	}
	var hash string
	creatorPrivate := persisted == nil && domain.ParseVisibility(p.Visibility) == domain.VisibilityPrivate && p.Password != ""
	if creatorPrivate {
		if hash, err = core.HashPassword(p.Password, g.bcryptCost); err != nil {
			creatorPrivate = false
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rooms[id]; ok {
		return r, nil
	}
	r := newRoom(id, persisted, g.now())
	if creatorPrivate {
		r.visibility = domain.VisibilityPrivate
		r.passwordHash = hash
	}
	g.rooms[id] = r
	go r.saver(g.store)
	log.Info().Str("module", "app.registry").Str("room", id).Bool("hydrated", persisted != nil).Msg("room created")
	return r, nil
}

// Leave removes the connection from the room (the current one when
// roomID is empty) and destroys the room once empty and unlocked.
func (g *Registry) Leave(sid SessionID, roomID string) {
	if roomID == "" {
		roomID, _ = g.tracker.RoomOf(sid)
	}
	if roomID == "" {
		return
	}
	if cur, ok := g.tracker.RoomOf(sid); ok && cur == roomID {
		g.tracker.SetRoom(sid, "")
	}
	r, ok := g.room(roomID)
	if !ok {
		return
	}

	r.mu.Lock()
	delete(r.members, sid)
	account := g.tracker.Account(sid)
	if account != "" && r.byAccount[account] == sid {
		delete(r.byAccount, account)
	}
	g.broadcastLocked(r, UserListFrame{Type: "user-list", Users: r.memberNamesLocked()}, "")
	empty := len(r.members) == 0
	locked := r.locked
	r.mu.Unlock()

	if empty && !locked {
		g.maybeDestroy(roomID)
	}
	log.Info().Str("module", "app.registry").Str("room", roomID).Str("sid", string(sid)).Msg("left")
	g.notify()
}

// maybeDestroy drops the room if it is still empty and unlocked by the
// time both locks are held. A join racing this re-checks r.destroyed.
func (g *Registry) maybeDestroy(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[id]
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) == 0 && !r.locked && !r.destroyed {
		r.destroyed = true
		close(r.stop)
		delete(g.rooms, id)
		log.Info().Str("module", "app.registry").Str("room", id).Msg("room destroyed")
	}
}

// Sweep broadcasts a heartbeat probe to every room and destroys rooms
// with zero alive members, locked rooms excepted. Runs under the
// registry write lock so an in-flight join is either fully registered
// or fully absent when membership is read.
func (g *Registry) Sweep() {
	now := g.now()
	hb := HeartbeatFrame{Type: "heartbeat", TS: now.UnixMilli()}

	g.mu.Lock()
	for id, r := range g.rooms {
		r.mu.Lock()
		for sid := range r.members {
			g.tracker.Send(sid, hb)
		}
		if r.aliveCountLocked(g.tracker, g.window) == 0 && !r.locked {
			r.destroyed = true
			close(r.stop)
			delete(g.rooms, id)
			log.Info().Str("module", "app.registry").Str("room", id).Msg("destroying inactive room")
		}
		r.mu.Unlock()
	}
	g.mu.Unlock()
	g.notify()
}

// Summaries lists rooms visible in the directory: alive members or
// locked. Joined is personalized to the given account identity.
func (g *Registry) Summaries(account string) []domain.RoomSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.RoomSummary, 0, len(g.rooms))
	for id, r := range g.rooms {
		r.mu.Lock()
		s := domain.RoomSummary{
			ID:         id,
			Members:    r.aliveCountLocked(g.tracker, g.window),
			Playing:    r.playback.Playing,
			Visibility: r.visibility,
			Locked:     r.locked,
		}
		if r.playback.URL != nil {
			u := *r.playback.URL
			s.URL = &u
		}
		if account != "" {
			if esid, ok := r.byAccount[account]; ok && g.tracker.Connected(esid) {
				s.Joined = true
			}
		}
		r.mu.Unlock()
		if s.Members > 0 || s.Locked {
			out = append(out, s)
		}
	}
	return out
}
