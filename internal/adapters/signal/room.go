package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/app"
)

func (ctl *Controller) handleJoin(sid app.SessionID, seq *int64, data []byte) {
	var p struct {
		RoomID       string `json:"roomId"`
		Name         string `json:"name"`
		AccountToken string `json:"accountToken"`
		Visibility   string `json:"visibility"`
		Password     string `json:"password"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.ack(sid, seq, app.ErrInvalidRoom, nil)
		return
	}

	err := ctl.Registry.Join(sid, app.JoinParams{
		RoomID:     p.RoomID,
		Name:       p.Name,
		Account:    ctl.Tokens.Identify(p.AccountToken),
		Visibility: p.Visibility,
		Password:   p.Password,
	})
	ctl.ack(sid, seq, err, map[string]any{"roomId": p.RoomID})
}

func (ctl *Controller) handleLeave(sid app.SessionID, seq *int64, data []byte) {
	var p struct {
		RoomID string `json:"roomId"`
	}
	_ = json.Unmarshal(data, &p)
	ctl.Registry.Leave(sid, p.RoomID)
	ctl.ack(sid, seq, nil, nil)
}

func (ctl *Controller) handleSetLocked(sid app.SessionID, seq *int64, data []byte) {
	var p struct {
		RoomID string `json:"roomId"`
		Locked bool   `json:"locked"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.ack(sid, seq, app.ErrRoomNotFound, nil)
		return
	}
	locked, err := ctl.Registry.SetLocked(sid, p.RoomID, p.Locked)
	ctl.ack(sid, seq, err, map[string]any{"locked": locked})
}

func (ctl *Controller) handleSetVisibility(sid app.SessionID, seq *int64, data []byte) {
	var p struct {
		RoomID     string `json:"roomId"`
		Visibility string `json:"visibility"`
		Password   string `json:"password"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.ack(sid, seq, app.ErrRoomNotFound, nil)
		return
	}
	vis, err := ctl.Registry.SetVisibility(sid, p.RoomID, p.Visibility, p.Password)
	ctl.ack(sid, seq, err, map[string]any{"visibility": vis})
}
