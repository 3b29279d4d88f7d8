package realtime

import "sort"

// Registry maps a user id to the handle that most recently registered for it.
// It is not safe for concurrent use; State serialises access.
type Registry struct {
	handles map[string]Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Register binds userID to handle, replacing any previous binding. The
// replaced handle, if any, is returned.
func (r *Registry) Register(userID string, handle Handle) Handle {
	if userID == "" || handle == nil {
		return nil
	}
	previous := r.handles[userID]
	r.handles[userID] = handle
	if previous == handle {
		return nil
	}
	return previous
}

// Unregister removes the binding for userID when it is held by handle.
// A nil handle removes whatever is bound. It reports whether an entry was removed.
func (r *Registry) Unregister(userID string, handle Handle) bool {
	current, ok := r.handles[userID]
	if !ok {
		return false
	}
	if handle != nil && current != handle {
		return false
	}
	delete(r.handles, userID)
	return true
}

// Lookup returns the handle bound to userID.
func (r *Registry) Lookup(userID string) (Handle, bool) {
	handle, ok := r.handles[userID]
	return handle, ok
}

// Resolve returns the current handle of each known id. Unknown ids are
// skipped and repeated ids resolve once.
func (r *Registry) Resolve(userIDs []string) []Handle {
	if len(userIDs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(userIDs))
	handles := make([]Handle, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if handle, ok := r.handles[id]; ok {
			handles = append(handles, handle)
		}
	}
	return handles
}

// Handles returns every registered handle.
func (r *Registry) Handles() []Handle {
	handles := make([]Handle, 0, len(r.handles))
	for _, handle := range r.handles {
		handles = append(handles, handle)
	}
	return handles
}

// Users returns the registered user ids in ascending order.
func (r *Registry) Users() []string {
	users := make([]string, 0, len(r.handles))
	for id := range r.handles {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

func (r *Registry) Len() int {
	return len(r.handles)
}
