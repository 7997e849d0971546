package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Directory feeds lobby subscribers the active-room list. Each
// subscriber keeps the serialized snapshot it was last sent; on every
// registry mutation only the delta against that snapshot goes out.
type Directory struct {
	mu   sync.Mutex
	subs map[SessionID]map[string]string // sid -> room id -> serialized summary

	reg     *Registry
	tracker *Tracker
}

func NewDirectory(reg *Registry, tracker *Tracker) *Directory {
	d := &Directory{
		subs:    make(map[SessionID]map[string]string),
		reg:     reg,
		tracker: tracker,
	}
	reg.OnChange(d.Refresh)
	return d
}

// Subscribe registers the connection and sends it the full current
// list. Re-subscribing resets the snapshot, so the full list is sent
// again.
func (d *Directory) Subscribe(sid SessionID) {
	d.mu.Lock()
	d.subs[sid] = nil
	d.mu.Unlock()
	log.Info().Str("module", "app.directory").Str("sid", string(sid)).Msg("subscribed")
	d.refreshOne(sid)
}

func (d *Directory) Unsubscribe(sid SessionID) {
	d.mu.Lock()
	delete(d.subs, sid)
	d.mu.Unlock()
}

// Refresh recomputes the room list for every subscriber and emits
// per-subscriber diffs. Dead subscribers are dropped.
func (d *Directory) Refresh() {
	d.mu.Lock()
	sids := make([]SessionID, 0, len(d.subs))
	for sid := range d.subs {
		sids = append(sids, sid)
	}
	d.mu.Unlock()

	for _, sid := range sids {
		if !d.tracker.Connected(sid) {
			d.Unsubscribe(sid)
			continue
		}
		d.refreshOne(sid)
	}
}

func (d *Directory) refreshOne(sid SessionID) {
	list := d.reg.Summaries(d.tracker.Account(sid))
	next := make(map[string]string, len(list))
	for _, s := range list {
		b, err := json.Marshal(s)
		if err != nil {
			log.Error().Err(err).Str("module", "app.directory").Msg("summary marshal")
			return
		}
		next[s.ID] = string(b)
	}

	d.mu.Lock()
	prev, subscribed := d.subs[sid]
	if subscribed && len(prev) == 0 {
		// first send after (re)subscription: full list
		d.subs[sid] = next
		d.mu.Unlock()
		d.tracker.Send(sid, RoomsListFrame{Type: "rooms-list", Rooms: list})
		return
	}
	if !subscribed {
		d.mu.Unlock()
		return
	}

	diff := RoomsDiffFrame{Type: "rooms-diff", Removed: []string{}}
	byID := make(map[string]int, len(list))
	for i, s := range list {
		byID[s.ID] = i
	}
	for id, ser := range next {
		old, existed := prev[id]
		switch {
		case !existed:
			diff.Added = append(diff.Added, list[byID[id]])
		case old != ser:
			diff.Updated = append(diff.Updated, list[byID[id]])
		}
	}
	for id := range prev {
		if _, ok := next[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}
	if len(diff.Added) == 0 && len(diff.Updated) == 0 && len(diff.Removed) == 0 {
		d.mu.Unlock()
		return
	}
	d.subs[sid] = next
	d.mu.Unlock()
	d.tracker.Send(sid, diff)
}
