package app

import "github.com/evhenko/tunesync/internal/domain"

// Server-to-client frames. Every frame carries its event name in Type so
// the client can dispatch on a single envelope field.

type UserListFrame struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// RoomStateFrame is the playback snapshot plus the room flags, sent to a
// joiner and rebroadcast after navigation.
type RoomStateFrame struct {
	Type         string            `json:"type"`
	URL          *string           `json:"url"`
	Playing      bool              `json:"playing"`
	CurrentTime  float64           `json:"currentTime"`
	UpdatedAt    int64             `json:"updatedAt"`
	PlayMode     domain.PlayMode   `json:"playMode"`
	CurrentIndex int               `json:"currentIndex"`
	Locked       bool              `json:"locked"`
	Visibility   domain.Visibility `json:"visibility"`
}

type PlaylistFrame struct {
	Type     string         `json:"type"`
	Playlist []domain.Track `json:"playlist"`
}

type PlayModeFrame struct {
	Type string          `json:"type"`
	Mode domain.PlayMode `json:"mode"`
}

type RoomLockFrame struct {
	Type   string `json:"type"`
	Locked bool   `json:"locked"`
}

type RoomVisibilityFrame struct {
	Type       string            `json:"type"`
	Visibility domain.Visibility `json:"visibility"`
}

type SetTrackFrame struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// TransportFrame relays play/pause/seek with the originator's position.
type TransportFrame struct {
	Type        string  `json:"type"`
	CurrentTime float64 `json:"currentTime"`
}

type HeartbeatFrame struct {
	Type string `json:"type"`
	TS   int64  `json:"ts"`
}

type RoomsListFrame struct {
	Type  string               `json:"type"`
	Rooms []domain.RoomSummary `json:"rooms"`
}

type RoomsDiffFrame struct {
	Type    string               `json:"type"`
	Added   []domain.RoomSummary `json:"added"`
	Updated []domain.RoomSummary `json:"updated"`
	Removed []string             `json:"removed"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
