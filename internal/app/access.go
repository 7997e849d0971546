package app

import (
	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/core"
	"github.com/evhenko/tunesync/internal/domain"
)

// resolveRoom prefers an explicit room id and falls back to the
// connection's current room.
func (g *Registry) resolveRoom(sid SessionID, roomID string) (*Room, error) {
	if roomID == "" {
		roomID, _ = g.tracker.RoomOf(sid)
	}
	r, ok := g.room(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// SetLocked toggles whether the room survives emptiness. The new flag is
// persisted and announced to the room and to directory subscribers.
func (g *Registry) SetLocked(sid SessionID, roomID string, locked bool) (bool, error) {
	r, err := g.resolveRoom(sid, roomID)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	r.locked = locked
	g.broadcastLocked(r, RoomLockFrame{Type: "room-lock", Locked: locked}, "")
	r.enqueuePersistLocked()
	r.mu.Unlock()

	log.Info().Str("module", "app.access").Str("room", r.ID).Bool("locked", locked).Msg("room lock changed")
	g.notify()
	return locked, nil
}

// SetVisibility flips the room between public and private. Going
// private stores a salted hash of the password, never the plaintext;
// going public clears the stored hash.
func (g *Registry) SetVisibility(sid SessionID, roomID, visibility, password string) (domain.Visibility, error) {
	r, err := g.resolveRoom(sid, roomID)
	if err != nil {
		return "", err
	}
	vis := domain.ParseVisibility(visibility)
	var hash string
	if vis == domain.VisibilityPrivate {
		if password == "" {
			return "", ErrPasswordRequired
		}
		if hash, err = core.HashPassword(password, g.bcryptCost); err != nil {
			return "", err
		}
	}

	r.mu.Lock()
	r.visibility = vis
	r.passwordHash = hash
	g.broadcastLocked(r, RoomVisibilityFrame{Type: "room-visibility", Visibility: vis}, "")
	r.enqueuePersistLocked()
	r.mu.Unlock()

	log.Info().Str("module", "app.access").Str("room", r.ID).Str("visibility", string(vis)).Msg("room visibility changed")
	g.notify()
	return vis, nil
}
