// Package signal is the WebSocket adapter for the room event surface.
// It parses and validates inbound payloads at the boundary and forwards
// them to the registry; it owns the sockets and their pumps.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/app"
	"github.com/evhenko/tunesync/internal/auth"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Registry  *app.Registry
	Directory *app.Directory
	Tracker   *app.Tracker
	Tokens    *auth.TokenManager

	SendBuffer int
}

// WsConn implements app.Sender over one gorilla socket. TrySend drops
// into a buffered channel and reports backpressure instead of blocking
// the room mutation that triggered the send.
type WsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and runs the connection until it drops.
// Each socket gets a fresh session id; identity beyond that arrives
// with join-room / subscribe-rooms payloads.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sid := app.SessionID(uuid.NewString())
	buf := ctl.SendBuffer
	if buf <= 0 {
		buf = 32
	}
	conn := &WsConn{conn: ws, send: make(chan []byte, buf)}
	ctl.Tracker.Register(sid, conn)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	ctl.readPump(ctx, sid, conn)
	cancel()

	// disconnect cleanup: leave the current room, drop the lobby
	// subscription, then forget the connection
	ctl.Registry.Leave(sid, "")
	ctl.Directory.Unsubscribe(sid)
	ctl.Tracker.Unregister(sid)
	conn.Close()
}
