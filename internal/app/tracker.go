package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SessionID identifies one live transport connection.
type SessionID string

// Sender is the transport endpoint of a connection. Owned by the
// adapter; the adapter must Close() it. TrySend never blocks.
type Sender interface {
	TrySend([]byte) error
	Close()
}

type conn struct {
	sender   Sender
	name     string
	account  string
	room     string
	lastSeen time.Time
}

// Tracker indexes live connections by session id. Rooms reference
// members by id through the tracker, never by pointer, so ownership
// stays acyclic.
type Tracker struct {
	mu    sync.RWMutex
	conns map[SessionID]*conn

	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{conns: make(map[SessionID]*conn), now: time.Now}
}

func (t *Tracker) Register(sid SessionID, s Sender) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[sid] = &conn{sender: s, name: "Anonymous", lastSeen: t.now()}
	log.Info().Str("module", "app.tracker").Str("sid", string(sid)).Msg("connection registered")
}

func (t *Tracker) Unregister(sid SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, sid)
	log.Info().Str("module", "app.tracker").Str("sid", string(sid)).Msg("connection unregistered")
}

// Touch refreshes the last-activity timestamp. Called for every inbound
// event, including heartbeat pongs.
func (t *Tracker) Touch(sid SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.conns[sid]; ok {
		c.lastSeen = t.now()
	}
}

func (t *Tracker) SetIdentity(sid SessionID, name, account string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.conns[sid]; ok {
		c.name = name
		if account != "" {
			c.account = account
		}
	}
}

func (t *Tracker) SetRoom(sid SessionID, room string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.conns[sid]; ok {
		c.room = room
	}
}

func (t *Tracker) RoomOf(sid SessionID) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.conns[sid]; ok && c.room != "" {
		return c.room, true
	}
	return "", false
}

func (t *Tracker) Name(sid SessionID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.conns[sid]; ok {
		return c.name
	}
	return "Anonymous"
}

func (t *Tracker) Account(sid SessionID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.conns[sid]; ok {
		return c.account
	}
	return ""
}

func (t *Tracker) Connected(sid SessionID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.conns[sid]
	return ok
}

// Alive reports whether the connection was seen within the freshness
// window.
func (t *Tracker) Alive(sid SessionID, window time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.conns[sid]
	return ok && t.now().Sub(c.lastSeen) < window
}

// Send marshals v and hands it to the connection's sender. Failures
// (closed or backpressured connections) are logged and dropped; the
// liveness sweep reaps connections that stop consuming.
func (t *Tracker) Send(sid SessionID, v any) {
	t.mu.RLock()
	c, ok := t.conns[sid]
	t.mu.RUnlock()
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.tracker").Msg("frame marshal")
		return
	}
	if err := c.sender.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "app.tracker").Str("sid", string(sid)).Msg("frame dropped")
	}
}
