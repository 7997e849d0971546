package domain

import "errors"

var ErrInvalidPlayMode = errors.New("invalid play mode")

// PlayMode governs which track plays next.
type PlayMode string

const (
	ModeSingle   PlayMode = "single"
	ModeSequence PlayMode = "sequence"
	ModeLoop     PlayMode = "loop"
	ModeShuffle  PlayMode = "shuffle"
)

func ParsePlayMode(s string) (PlayMode, error) {
	switch PlayMode(s) {
	case ModeSingle, ModeSequence, ModeLoop, ModeShuffle:
		return PlayMode(s), nil
	}
	return "", ErrInvalidPlayMode
}
