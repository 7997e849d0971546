// Package domain contains entity types without logic, just meta-data.
package domain

import (
	"errors"
	"strings"
)

const MaxRoomIDLen = 64

var ErrInvalidRoomID = errors.New("invalid room id")

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility treats anything other than "private" as public,
// so an absent field on room creation defaults safely.
func ParseVisibility(s string) Visibility {
	if s == string(VisibilityPrivate) {
		return VisibilityPrivate
	}
	return VisibilityPublic
}

// ValidRoomID checks a caller-supplied room id.
func ValidRoomID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && len(id) <= MaxRoomIDLen
}

// RoomState is the persisted shape of a room, exchanged with the store
// as an idempotent full-state upsert.
type RoomState struct {
	Playlist     []Track    `json:"playlist"`
	CurrentIndex int        `json:"currentIndex"`
	PlayMode     PlayMode   `json:"playMode"`
	Visibility   Visibility `json:"visibility"`
	PasswordHash string     `json:"-"`
	Locked       bool       `json:"locked"`
}

// RoomSummary is one directory entry. Joined is personalized per
// subscriber, so summaries are computed per recipient.
type RoomSummary struct {
	ID         string     `json:"id"`
	Members    int        `json:"members"`
	URL        *string    `json:"url"`
	Playing    bool       `json:"playing"`
	Joined     bool       `json:"joined"`
	Visibility Visibility `json:"visibility"`
	Locked     bool       `json:"locked"`
}
