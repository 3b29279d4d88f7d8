package realtime

import "sort"

// Presence is the set of users currently inside a chat context. Marking is
// idempotent; it is a set, not a counter.
type Presence struct {
	online map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{online: make(map[string]struct{})}
}

// MarkPresent adds userID and returns the resulting snapshot.
func (p *Presence) MarkPresent(userID string) []string {
	if userID != "" {
		p.online[userID] = struct{}{}
	}
	return p.Snapshot()
}

// MarkAbsent removes userID and returns the resulting snapshot.
func (p *Presence) MarkAbsent(userID string) []string {
	delete(p.online, userID)
	return p.Snapshot()
}

// Snapshot returns the online ids sorted ascending. The slice is never nil.
func (p *Presence) Snapshot() []string {
	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Retain drops every id for which keep returns false and returns the dropped ids.
func (p *Presence) Retain(keep func(userID string) bool) []string {
	var dropped []string
	for id := range p.online {
		if !keep(id) {
			delete(p.online, id)
			dropped = append(dropped, id)
		}
	}
	sort.Strings(dropped)
	return dropped
}

func (p *Presence) Len() int {
	return len(p.online)
}
