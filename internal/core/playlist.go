// Package core holds the room synchronization logic: ordered playlist
// mutation, the playback clock, and the password gate. No transport or
// storage concerns live here.
package core

import (
	"errors"
	"time"

	"github.com/evhenko/tunesync/internal/domain"
)

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrMissingTracks = errors.New("missing tracks")
	ErrNoValidTracks = errors.New("no valid tracks")
)

// TrackInput is a caller-supplied track before id assignment.
type TrackInput struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Cover string `json:"cover"`
}

// Playlist is an ordered track list.
type Playlist struct {
	tracks []domain.Track
}

func NewPlaylist(tracks []domain.Track) *Playlist {
	return &Playlist{tracks: tracks}
}

func (p *Playlist) Len() int { return len(p.tracks) }

// Tracks returns a copy so callers can hold the slice across mutations.
func (p *Playlist) Tracks() []domain.Track {
	out := make([]domain.Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// URLAt returns the source url for a valid index, nil otherwise.
func (p *Playlist) URLAt(i int) *string {
	if i < 0 || i >= len(p.tracks) {
		return nil
	}
	u := p.tracks[i].URL
	return &u
}

// Append validates, assigns a fresh id and appends to the end.
func (p *Playlist) Append(in TrackInput, addedBy string, now time.Time) (domain.Track, error) {
	t, err := domain.NewTrack(in.URL, in.Title, in.Cover, addedBy, now)
	if err != nil {
		return domain.Track{}, err
	}
	p.tracks = append(p.tracks, t)
	return t, nil
}

// AppendBatch appends every entry that carries a url, preserving input
// order. Entries without a url are skipped; an all-invalid batch fails.
func (p *Playlist) AppendBatch(in []TrackInput, addedBy string, now time.Time) ([]domain.Track, error) {
	if len(in) == 0 {
		return nil, ErrMissingTracks
	}
	added := make([]domain.Track, 0, len(in))
	for _, item := range in {
		t, err := domain.NewTrack(item.URL, item.Title, item.Cover, addedBy, now)
		if err != nil {
			continue
		}
		p.tracks = append(p.tracks, t)
		added = append(added, t)
	}
	if len(added) == 0 {
		return nil, ErrNoValidTracks
	}
	return added, nil
}

// Remove splices out the track with the given id and returns its former
// index so the playback pointer can be reconciled.
func (p *Playlist) Remove(id string) (int, error) {
	for i, t := range p.tracks {
		if t.ID == id {
			p.tracks = append(p.tracks[:i], p.tracks[i+1:]...)
			return i, nil
		}
	}
	return -1, ErrTrackNotFound
}
