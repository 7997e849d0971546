package signal

import (
	"encoding/json"

	"github.com/evhenko/tunesync/internal/app"
	"github.com/evhenko/tunesync/internal/core"
)

func (ctl *Controller) handlePlaylistAdd(sid app.SessionID, seq *int64, data []byte) {
	var p core.TrackInput
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.ack(sid, seq, app.ErrMissingURL, nil)
		return
	}
	item, err := ctl.Registry.PlaylistAdd(sid, p)
	extra := map[string]any{}
	if err == nil {
		extra["item"] = item
	}
	ctl.ack(sid, seq, err, extra)
}

func (ctl *Controller) handlePlaylistAddBatch(sid app.SessionID, seq *int64, data []byte) {
	var p struct {
		Tracks []core.TrackInput `json:"tracks"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.ack(sid, seq, app.ErrMissingTracks, nil)
		return
	}
	count, err := ctl.Registry.PlaylistAddBatch(sid, p.Tracks)
	ctl.ack(sid, seq, err, map[string]any{"count": count})
}

func (ctl *Controller) handlePlaylistRemove(sid app.SessionID, seq *int64, data []byte) {
	var p struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.ack(sid, seq, app.ErrTrackNotFound, nil)
		return
	}
	ctl.ack(sid, seq, ctl.Registry.PlaylistRemove(sid, p.ID), nil)
}

func (ctl *Controller) handleSetIndex(sid app.SessionID, seq *int64, data []byte) {
	var p struct {
		Index *int `json:"index"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Index == nil {
		ctl.ack(sid, seq, app.ErrInvalidIndex, nil)
		return
	}
	ctl.ack(sid, seq, ctl.Registry.SetIndex(sid, *p.Index), nil)
}

func (ctl *Controller) handleNavigate(sid app.SessionID, seq *int64, op func(app.SessionID) (int, error)) {
	index, err := op(sid)
	extra := map[string]any{}
	if err == nil {
		extra["index"] = index
	}
	ctl.ack(sid, seq, err, extra)
}

func (ctl *Controller) handleSetMode(sid app.SessionID, seq *int64, data []byte) {
	var p struct {
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.ack(sid, seq, app.ErrInvalidMode, nil)
		return
	}
	ctl.ack(sid, seq, ctl.Registry.SetMode(sid, p.Mode), nil)
}
