package core

import (
	"errors"
	"time"

	"github.com/evhenko/tunesync/internal/domain"
)

var (
	ErrEmptyPlaylist = errors.New("empty playlist")
	ErrInvalidIndex  = errors.New("invalid index")
)

// Playback is the authoritative play/pause/seek/track state for a room.
// Every transition re-stamps Anchor; clients extrapolate the live
// position as Position + (Playing ? now-Anchor : 0). Index is -1 only
// while the playlist is empty.
type Playback struct {
	URL      *string
	Playing  bool
	Position float64
	Anchor   time.Time
	Index    int
	Mode     domain.PlayMode
}

func NewPlayback(now time.Time) *Playback {
	return &Playback{
		Anchor: now,
		Index:  -1,
		Mode:   domain.ModeSequence,
	}
}

func (p *Playback) Play(pos float64, now time.Time) {
	p.Playing = true
	p.Position = pos
	p.Anchor = now
}

func (p *Playback) Pause(pos float64, now time.Time) {
	p.Playing = false
	p.Position = pos
	p.Anchor = now
}

func (p *Playback) Seek(pos float64, now time.Time) {
	p.Position = pos
	p.Anchor = now
}

func (p *Playback) SetTrack(url string, now time.Time) {
	u := url
	p.URL = &u
	p.Position = 0
	p.Playing = false
	p.Anchor = now
}

// EffectivePosition reconstructs the live position at the given moment.
func (p *Playback) EffectivePosition(now time.Time) float64 {
	if !p.Playing {
		return p.Position
	}
	return p.Position + now.Sub(p.Anchor).Seconds()
}

// NextIndex applies the navigation tie-break rules for the mode. draw
// supplies a uniform random index for shuffle; a draw that repeats the
// current index with more than one track is resampled once as
// (draw+1) mod n to avoid immediate repeats.
func NextIndex(mode domain.PlayMode, idx, n int, draw func(int) int) int {
	switch mode {
	case domain.ModeSingle:
		return idx
	case domain.ModeLoop:
		return (idx + 1) % n
	case domain.ModeShuffle:
		d := draw(n)
		if n > 1 && d == idx {
			d = (d + 1) % n
		}
		return d
	default: // sequence
		if idx+1 < n {
			return idx + 1
		}
		return n - 1
	}
}

// PrevIndex steps back one track regardless of mode, flooring at 0.
func PrevIndex(idx int) int {
	if idx > 0 {
		return idx - 1
	}
	return 0
}

// MoveTo commits a navigation to newIndex: resets the position, marks
// playing when the track actually changed (single mode always replays)
// and re-anchors the clock.
func (p *Playback) MoveTo(newIndex int, url *string, now time.Time) {
	prev := p.Index
	p.Index = newIndex
	p.URL = url
	p.Position = 0
	p.Playing = newIndex != prev || p.Mode == domain.ModeSingle
	p.Anchor = now
}

// ReconcileRemoval repairs the playback pointer after the track at
// removedIdx was spliced out of a playlist now n entries long. Removing
// an earlier track shifts the pointer down so it keeps naming the same
// track; removing the current track clamps the index and stops playback.
func (p *Playback) ReconcileRemoval(removedIdx, n int, url func(int) *string, now time.Time) {
	switch {
	case removedIdx > p.Index:
		// pointer untouched
	case removedIdx < p.Index:
		p.Index--
	default:
		if n == 0 {
			p.Index = -1
		} else if p.Index >= n {
			p.Index = n - 1
		}
		p.URL = url(p.Index)
		p.Position = 0
		p.Playing = false
		p.Anchor = now
	}
}
