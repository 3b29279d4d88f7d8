package realtime

import "sync"

// State holds the registry and the online set behind a single lock so that a
// lifecycle transition never interleaves with another.
type State struct {
	mu       sync.Mutex
	registry *Registry
	presence *Presence
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		registry: NewRegistry(),
		presence: NewPresence(),
	}
}

func (s *State) register(userID string, handle Handle) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Register(userID, handle)
}

// release unregisters handle and, when it still held the user's entry,
// removes the user from the online set. The returned snapshot is only
// meaningful when released is true.
func (s *State) release(userID string, handle Handle) (released bool, snapshot []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registry.Unregister(userID, handle) {
		return false, nil
	}
	return true, s.presence.MarkAbsent(userID)
}

// markPresent only admits registered users.
func (s *State) markPresent(userID string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registry.Lookup(userID); !ok {
		return s.presence.Snapshot(), false
	}
	return s.presence.MarkPresent(userID), true
}

func (s *State) markAbsent(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence.MarkAbsent(userID)
}

// Resolve returns the live handles of userIDs.
func (s *State) Resolve(userIDs []string) []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Resolve(userIDs)
}

// Handles returns every registered handle.
func (s *State) Handles() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Handles()
}

// Lookup returns the handle currently bound to userID.
func (s *State) Lookup(userID string) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Lookup(userID)
}

// OnlineUsers returns the sorted online set.
func (s *State) OnlineUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence.Snapshot()
}

// ConnectedUsers returns the sorted registered user ids.
func (s *State) ConnectedUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Users()
}

// Connections returns the number of registered users.
func (s *State) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Len()
}

// Reconcile removes online ids that no longer have a registry entry and
// returns them. markPresent and release keep presence a subset of the
// registry, so a non-empty result means that invariant was broken.
func (s *State) Reconcile() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence.Retain(func(userID string) bool {
		_, ok := s.registry.Lookup(userID)
		return ok
	})
}
