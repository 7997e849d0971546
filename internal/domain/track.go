package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrMissingURL = errors.New("track url missing")

// Track is a playlist entry. Immutable once created; entries are only
// ever removed, never edited.
type Track struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Cover   string `json:"cover,omitempty"`
	AddedBy string `json:"addedBy"`
	TS      int64  `json:"ts"`
}

// NewTrack assigns a fresh id and creation timestamp.
func NewTrack(url, title, cover, addedBy string, now time.Time) (Track, error) {
	if url == "" {
		return Track{}, ErrMissingURL
	}
	return Track{
		ID:      uuid.NewString(),
		URL:     url,
		Title:   title,
		Cover:   cover,
		AddedBy: addedBy,
		TS:      now.UnixMilli(),
	}, nil
}
