package core

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/evhenko/tunesync/internal/domain"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEffectivePosition(t *testing.T) {
	p := NewPlayback(t0)

	t.Run("paused holds position", func(t *testing.T) {
		p.Pause(42.5, t0)
		if got := p.EffectivePosition(t0.Add(10 * time.Second)); got != 42.5 {
			t.Fatalf("paused position = %v, want 42.5", got)
		}
	})

	t.Run("playing extrapolates from anchor", func(t *testing.T) {
		p.Play(100, t0)
		if got := p.EffectivePosition(t0.Add(3 * time.Second)); got != 103 {
			t.Fatalf("playing position = %v, want 103", got)
		}
	})

	t.Run("seek re-anchors without toggling play state", func(t *testing.T) {
		p.Play(0, t0)
		p.Seek(60, t0.Add(time.Second))
		if !p.Playing {
			t.Fatal("seek must not pause")
		}
		if got := p.EffectivePosition(t0.Add(3 * time.Second)); got != 62 {
			t.Fatalf("position after seek = %v, want 62", got)
		}
	})
}

func TestNextIndex(t *testing.T) {
	noDraw := func(int) int { t.Fatal("draw must not be called"); return 0 }

	t.Run("single stays put", func(t *testing.T) {
		if got := NextIndex(domain.ModeSingle, 2, 5, noDraw); got != 2 {
			t.Fatalf("got %d, want 2", got)
		}
	})

	t.Run("sequence advances", func(t *testing.T) {
		if got := NextIndex(domain.ModeSequence, 1, 5, noDraw); got != 2 {
			t.Fatalf("got %d, want 2", got)
		}
	})

	t.Run("sequence clamps at the last track", func(t *testing.T) {
		if got := NextIndex(domain.ModeSequence, 4, 5, noDraw); got != 4 {
			t.Fatalf("got %d, want 4", got)
		}
	})

	t.Run("loop wraps", func(t *testing.T) {
		if got := NextIndex(domain.ModeLoop, 4, 5, noDraw); got != 0 {
			t.Fatalf("got %d, want 0", got)
		}
	})

	t.Run("shuffle never repeats with more than one track", func(t *testing.T) {
		draw := func(n int) int { return rand.IntN(n) }
		for i := 0; i < 1000; i++ {
			if got := NextIndex(domain.ModeShuffle, 3, 8, draw); got == 3 {
				t.Fatal("shuffle repeated the current index")
			}
		}
	})

	t.Run("shuffle resamples the colliding draw once", func(t *testing.T) {
		if got := NextIndex(domain.ModeShuffle, 2, 5, func(int) int { return 2 }); got != 3 {
			t.Fatalf("got %d, want 3", got)
		}
	})

	t.Run("shuffle with one track returns it", func(t *testing.T) {
		if got := NextIndex(domain.ModeShuffle, 0, 1, func(int) int { return 0 }); got != 0 {
			t.Fatalf("got %d, want 0", got)
		}
	})
}

func TestPrevIndex(t *testing.T) {
	if got := PrevIndex(3); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
	if got := PrevIndex(0); got != 0 {
		t.Fatalf("got %d, want 0 at the floor", got)
	}
}

func TestMoveTo(t *testing.T) {
	url := func(s string) *string { return &s }

	t.Run("changing track starts playback at zero", func(t *testing.T) {
		p := NewPlayback(t0)
		p.Index = 1
		p.Pause(30, t0)
		p.MoveTo(2, url("u2"), t0.Add(time.Second))
		if !p.Playing || p.Position != 0 || p.Index != 2 {
			t.Fatalf("state = playing:%v pos:%v idx:%d", p.Playing, p.Position, p.Index)
		}
	})

	t.Run("same index without single mode does not start", func(t *testing.T) {
		p := NewPlayback(t0)
		p.Index = 2
		p.MoveTo(2, url("u2"), t0)
		if p.Playing {
			t.Fatal("sequence landing on the same index must not start playback")
		}
	})

	t.Run("single mode replays the same track", func(t *testing.T) {
		p := NewPlayback(t0)
		p.Index = 2
		p.Mode = domain.ModeSingle
		p.MoveTo(2, url("u2"), t0)
		if !p.Playing || p.Position != 0 {
			t.Fatalf("single replay: playing:%v pos:%v", p.Playing, p.Position)
		}
	})
}

func TestReconcileRemoval(t *testing.T) {
	urls := []string{"a", "b", "c", "d"}
	urlAt := func(i int) *string {
		if i < 0 || i >= len(urls) {
			return nil
		}
		return &urls[i]
	}

	t.Run("removing a later track leaves the pointer alone", func(t *testing.T) {
		p := NewPlayback(t0)
		p.Index = 1
		p.Play(10, t0)
		p.ReconcileRemoval(3, 3, urlAt, t0)
		if p.Index != 1 || !p.Playing {
			t.Fatalf("idx:%d playing:%v", p.Index, p.Playing)
		}
	})

	t.Run("removing an earlier track shifts the pointer down", func(t *testing.T) {
		p := NewPlayback(t0)
		p.Index = 2
		p.Play(10, t0)
		p.ReconcileRemoval(0, 3, urlAt, t0)
		if p.Index != 1 || !p.Playing {
			t.Fatalf("idx:%d playing:%v", p.Index, p.Playing)
		}
	})

	t.Run("removing the current track stops at the clamped index", func(t *testing.T) {
		p := NewPlayback(t0)
		p.Index = 3
		p.Play(10, t0)
		p.ReconcileRemoval(3, 3, urlAt, t0)
		if p.Index != 2 || p.Playing || p.Position != 0 {
			t.Fatalf("idx:%d playing:%v pos:%v", p.Index, p.Playing, p.Position)
		}
		if p.URL == nil || *p.URL != "c" {
			t.Fatalf("url = %v, want c", p.URL)
		}
	})

	t.Run("removing the only track empties the pointer", func(t *testing.T) {
		p := NewPlayback(t0)
		p.Index = 0
		p.ReconcileRemoval(0, 0, func(int) *string { return nil }, t0)
		if p.Index != -1 || p.URL != nil {
			t.Fatalf("idx:%d url:%v", p.Index, p.URL)
		}
	})
}
