package app

// Playback clock transitions. Each one re-anchors the room's clock and
// relays the event to every other member; the originator already knows
// its own state. Events from connections outside any room are dropped.

func (g *Registry) Play(sid SessionID, pos float64) error {
	r, err := g.currentRoom(sid)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playback.Play(pos, g.now())
	g.broadcastLocked(r, TransportFrame{Type: "play", CurrentTime: pos}, sid)
	return nil
}

func (g *Registry) Pause(sid SessionID, pos float64) error {
	r, err := g.currentRoom(sid)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playback.Pause(pos, g.now())
	g.broadcastLocked(r, TransportFrame{Type: "pause", CurrentTime: pos}, sid)
	return nil
}

func (g *Registry) Seek(sid SessionID, pos float64) error {
	r, err := g.currentRoom(sid)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playback.Seek(pos, g.now())
	g.broadcastLocked(r, TransportFrame{Type: "seek", CurrentTime: pos}, sid)
	return nil
}

func (g *Registry) SetTrack(sid SessionID, url string) error {
	r, err := g.currentRoom(sid)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playback.SetTrack(url, g.now())
	g.broadcastLocked(r, SetTrackFrame{Type: "set-track", URL: url}, sid)
	return nil
}
