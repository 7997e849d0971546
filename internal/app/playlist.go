package app

import (
	"errors"

	"github.com/evhenko/tunesync/internal/core"
	"github.com/evhenko/tunesync/internal/domain"
)

// Playlist mutation and navigation. Every successful change broadcasts
// the full updated playlist; navigation additionally emits an explicit
// track-change + play pair so clients reliably reload the new source.

func (g *Registry) PlaylistAdd(sid SessionID, in core.TrackInput) (domain.Track, error) {
	r, err := g.currentRoom(sid)
	if err != nil {
		return domain.Track{}, err
	}
	now := g.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.playlist.Append(in, g.tracker.Name(sid), now)
	if err != nil {
		return domain.Track{}, ErrMissingURL
	}
	g.afterPlaylistChangeLocked(r)
	return t, nil
}

func (g *Registry) PlaylistAddBatch(sid SessionID, in []core.TrackInput) (int, error) {
	r, err := g.currentRoom(sid)
	if err != nil {
		return 0, err
	}
	now := g.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	added, err := r.playlist.AppendBatch(in, g.tracker.Name(sid), now)
	switch {
	case errors.Is(err, core.ErrMissingTracks):
		return 0, ErrMissingTracks
	case errors.Is(err, core.ErrNoValidTracks):
		return 0, ErrNoValidTracks
	}
	g.afterPlaylistChangeLocked(r)
	return len(added), nil
}

// afterPlaylistChangeLocked restores the index invariant (first append
// to an empty list points the playback at index 0 without starting it),
// broadcasts and schedules persistence.
func (g *Registry) afterPlaylistChangeLocked(r *Room) {
	wasEmpty := r.playback.Index == -1
	r.clampIndexLocked()
	g.broadcastLocked(r, PlaylistFrame{Type: "playlist-updated", Playlist: r.playlist.Tracks()}, "")
	if wasEmpty && r.playback.Index != -1 {
		g.broadcastLocked(r, r.stateFrameLocked(), "")
	}
	r.enqueuePersistLocked()
}

func (g *Registry) PlaylistRemove(sid SessionID, trackID string) error {
	r, err := g.currentRoom(sid)
	if err != nil {
		return err
	}
	now := g.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removedIdx, err := r.playlist.Remove(trackID)
	if err != nil {
		return ErrTrackNotFound
	}
	r.playback.ReconcileRemoval(removedIdx, r.playlist.Len(), r.playlist.URLAt, now)
	g.broadcastLocked(r, PlaylistFrame{Type: "playlist-updated", Playlist: r.playlist.Tracks()}, "")
	g.broadcastLocked(r, r.stateFrameLocked(), "")
	r.enqueuePersistLocked()
	return nil
}

func (g *Registry) Next(sid SessionID) (int, error) {
	return g.navigate(sid, func(r *Room) int {
		return core.NextIndex(r.playback.Mode, r.playback.Index, r.playlist.Len(), r.draw)
	})
}

func (g *Registry) Prev(sid SessionID) (int, error) {
	return g.navigate(sid, func(r *Room) int {
		return core.PrevIndex(r.playback.Index)
	})
}

func (g *Registry) navigate(sid SessionID, pick func(*Room) int) (int, error) {
	r, err := g.currentRoom(sid)
	if err != nil {
		return 0, err
	}
	now := g.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.playlist.Len() == 0 {
		return 0, ErrEmptyPlaylist
	}
	next := pick(r)
	r.playback.MoveTo(next, r.playlist.URLAt(next), now)
	g.broadcastLocked(r, PlaylistFrame{Type: "playlist-updated", Playlist: r.playlist.Tracks()}, "")
	g.announceTrackLocked(r)
	r.enqueuePersistLocked()
	return next, nil
}

func (g *Registry) SetIndex(sid SessionID, idx int) error {
	r, err := g.currentRoom(sid)
	if err != nil {
		return err
	}
	now := g.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= r.playlist.Len() {
		return ErrInvalidIndex
	}
	r.playback.MoveTo(idx, r.playlist.URLAt(idx), now)
	g.announceTrackLocked(r)
	r.enqueuePersistLocked()
	return nil
}

// announceTrackLocked emits the track-change + play pair and the fresh
// snapshot after a navigation commit.
func (g *Registry) announceTrackLocked(r *Room) {
	if r.playback.URL != nil {
		g.broadcastLocked(r, SetTrackFrame{Type: "set-track", URL: *r.playback.URL}, "")
	}
	g.broadcastLocked(r, TransportFrame{Type: "play", CurrentTime: 0}, "")
	g.broadcastLocked(r, r.stateFrameLocked(), "")
}

func (g *Registry) SetMode(sid SessionID, mode string) error {
	r, err := g.currentRoom(sid)
	if err != nil {
		return err
	}
	m, err := domain.ParsePlayMode(mode)
	if err != nil {
		return ErrInvalidMode
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playback.Mode = m
	g.broadcastLocked(r, PlayModeFrame{Type: "play-mode", Mode: m}, "")
	r.enqueuePersistLocked()
	return nil
}
