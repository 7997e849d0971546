package app

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/core"
	"github.com/evhenko/tunesync/internal/domain"
)

const eventRoomState = "room-state"

// Room is a named, independently synchronized playback session. All
// mutations to its membership, playlist and playback state run under mu:
// one logical owner, one event at a time.
//
// Persistence is decoupled: mutations enqueue a full-state snapshot into
// persist, and a per-room saver goroutine writes it out after the
// in-memory change and its broadcasts have already completed. The queue
// coalesces to the latest snapshot, so a slow store never delays clients.
type Room struct {
	ID string

	mu        sync.Mutex
	members   map[SessionID]string    // session id -> display name
	byAccount map[string]SessionID    // one live session per account
	playlist  *core.Playlist
	playback  *core.Playback
	visibility   domain.Visibility
	passwordHash string
	locked       bool
	destroyed    bool

	draw func(int) int // shuffle source, injectable for tests

	persist chan domain.RoomState
	stop    chan struct{}
}

func newRoom(id string, st *domain.RoomState, now time.Time) *Room {
	r := &Room{
		ID:         id,
		members:    make(map[SessionID]string),
		byAccount:  make(map[string]SessionID),
		playlist:   core.NewPlaylist(nil),
		playback:   core.NewPlayback(now),
		visibility: domain.VisibilityPublic,
		draw:       rand.IntN,
		persist:    make(chan domain.RoomState, 1),
		stop:       make(chan struct{}),
	}
	if st != nil {
		r.playlist = core.NewPlaylist(st.Playlist)
		r.playback.Mode = st.PlayMode
		r.playback.Index = st.CurrentIndex
		r.visibility = st.Visibility
		r.passwordHash = st.PasswordHash
		r.locked = st.Locked
		r.clampIndexLocked()
	}
	return r
}

// clampIndexLocked restores the index invariant: -1 on an empty
// playlist, otherwise a valid index with the url mirroring it.
func (r *Room) clampIndexLocked() {
	n := r.playlist.Len()
	switch {
	case n == 0:
		r.playback.Index = -1
		r.playback.URL = nil
	case r.playback.Index < 0:
		r.playback.Index = 0
	case r.playback.Index >= n:
		r.playback.Index = n - 1
	}
	if r.playback.Index >= 0 {
		r.playback.URL = r.playlist.URLAt(r.playback.Index)
	}
}

func (r *Room) stateLocked() domain.RoomState {
	return domain.RoomState{
		Playlist:     r.playlist.Tracks(),
		CurrentIndex: r.playback.Index,
		PlayMode:     r.playback.Mode,
		Visibility:   r.visibility,
		PasswordHash: r.passwordHash,
		Locked:       r.locked,
	}
}

func (r *Room) stateFrameLocked() RoomStateFrame {
	return RoomStateFrame{
		Type:         eventRoomState,
		URL:          r.playback.URL,
		Playing:      r.playback.Playing,
		CurrentTime:  r.playback.Position,
		UpdatedAt:    r.playback.Anchor.UnixMilli(),
		PlayMode:     r.playback.Mode,
		CurrentIndex: r.playback.Index,
		Locked:       r.locked,
		Visibility:   r.visibility,
	}
}

func (r *Room) memberNamesLocked() []string {
	names := make([]string, 0, len(r.members))
	for _, n := range r.members {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Room) aliveCountLocked(tracker *Tracker, window time.Duration) int {
	alive := 0
	for sid := range r.members {
		if tracker.Alive(sid, window) {
			alive++
		}
	}
	return alive
}

// enqueuePersistLocked schedules a best-effort durability write. If an
// older snapshot is still queued it is replaced by the newer one.
func (r *Room) enqueuePersistLocked() {
	st := r.stateLocked()
	for {
		select {
		case r.persist <- st:
			return
		default:
		}
		select {
		case <-r.persist:
		default:
		}
	}
}

// saver drains the persist queue. Every dispatched write ends in a
// terminal log line; failures are swallowed because in-memory state is
// the source of truth for live behavior.
func (r *Room) saver(store RoomStore) {
	write := func(st domain.RoomState) {
		if err := store.Save(r.ID, st); err != nil {
			log.Error().Err(err).Str("module", "app.room").Str("room", r.ID).Msg("persist failed")
			return
		}
		log.Debug().Str("module", "app.room").Str("room", r.ID).Msg("persisted")
	}
	for {
		select {
		case st := <-r.persist:
			write(st)
		case <-r.stop:
			select {
			case st := <-r.persist:
				write(st)
			default:
			}
			return
		}
	}
}
