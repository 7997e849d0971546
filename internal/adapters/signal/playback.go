package signal

import (
	"encoding/json"

	"github.com/evhenko/tunesync/internal/app"
)

// play/pause/seek carry only the originator's position; the server
// re-anchors its clock and relays to the rest of the room. These events
// are never acked and failures outside a room are silent.
func (ctl *Controller) handleTransport(sid app.SessionID, kind string, data []byte) {
	var p struct {
		CurrentTime float64 `json:"currentTime"`
	}
	_ = json.Unmarshal(data, &p)

	switch kind {
	case "play":
		_ = ctl.Registry.Play(sid, p.CurrentTime)
	case "pause":
		_ = ctl.Registry.Pause(sid, p.CurrentTime)
	case "seek":
		_ = ctl.Registry.Seek(sid, p.CurrentTime)
	}
}

func (ctl *Controller) handleSetTrack(sid app.SessionID, data []byte) {
	var p struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(data, &p)
	_ = ctl.Registry.SetTrack(sid, p.URL)
}
