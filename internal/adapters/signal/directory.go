package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/app"
)

// handleSubscribeRooms puts the connection on the lobby feed. A token,
// when valid, personalizes the joined-by-me flag on every entry.
func (ctl *Controller) handleSubscribeRooms(sid app.SessionID, data []byte) {
	var p struct {
		AccountToken string `json:"accountToken"`
	}
	_ = json.Unmarshal(data, &p)

	if account := ctl.Tokens.Identify(p.AccountToken); account != "" {
		ctl.Tracker.SetIdentity(sid, ctl.Tracker.Name(sid), account)
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("subscriber identified")
	}
	ctl.Directory.Subscribe(sid)
}
