package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/app"
)

const writeDeadline = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid app.SessionID, c *WsConn) {
	defer log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			// any inbound event counts as liveness
			ctl.Tracker.Touch(sid)
			ctl.dispatch(sid, data)
		}
	}
}

// envelope is the common prefix of every client frame. Seq, when
// present, requests an ack carrying the result.
type envelope struct {
	Type string `json:"type"`
	Seq  *int64 `json:"seq"`
}

func (ctl *Controller) dispatch(sid app.SessionID, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "join-room":
		ctl.handleJoin(sid, env.Seq, data)
	case "leave-room":
		ctl.handleLeave(sid, env.Seq, data)
	case "play", "pause", "seek":
		ctl.handleTransport(sid, env.Type, data)
	case "set-track":
		ctl.handleSetTrack(sid, data)
	case "playlist-add":
		ctl.handlePlaylistAdd(sid, env.Seq, data)
	case "playlist-add-batch":
		ctl.handlePlaylistAddBatch(sid, env.Seq, data)
	case "playlist-remove":
		ctl.handlePlaylistRemove(sid, env.Seq, data)
	case "set-current-index":
		ctl.handleSetIndex(sid, env.Seq, data)
	case "playlist-next":
		ctl.handleNavigate(sid, env.Seq, ctl.Registry.Next)
	case "playlist-prev":
		ctl.handleNavigate(sid, env.Seq, ctl.Registry.Prev)
	case "set-play-mode":
		ctl.handleSetMode(sid, env.Seq, data)
	case "set-room-locked":
		ctl.handleSetLocked(sid, env.Seq, data)
	case "set-room-visibility":
		ctl.handleSetVisibility(sid, env.Seq, data)
	case "subscribe-rooms":
		ctl.handleSubscribeRooms(sid, data)
	case "unsubscribe-rooms":
		ctl.Directory.Unsubscribe(sid)
	case "heartbeat-pong":
		// Touch already happened above
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

// ack reports an operation result. With a seq the structured result is
// echoed on an ack frame; without one, only failures surface, as an
// out-of-band error frame. Events from outside any room are dropped
// silently either way.
func (ctl *Controller) ack(sid app.SessionID, seq *int64, err error, extra map[string]any) {
	if errors.Is(err, app.ErrNoCurrentRoom) {
		return
	}
	code, message := "", ""
	var op *app.OpError
	if errors.As(err, &op) {
		code, message = op.Code, op.Message
	} else if err != nil {
		code, message = "error", err.Error()
	}

	if seq == nil {
		if err != nil {
			ctl.Tracker.Send(sid, app.ErrorFrame{Type: "error", Code: code, Message: message})
		}
		return
	}
	frame := map[string]any{"type": "ack", "seq": *seq, "ok": err == nil}
	if err != nil {
		frame["code"] = code
		frame["message"] = message
	}
	for k, v := range extra {
		frame[k] = v
	}
	ctl.Tracker.Send(sid, frame)
}
