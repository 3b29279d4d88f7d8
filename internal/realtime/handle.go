package realtime

// Handle is one open transport session owned by a user.
//
// Send must not block. Once the transport closes every Send returns
// ErrHandleClosed; a handle never reopens.
type Handle interface {
	ID() string
	UserID() string
	Send(Envelope) error
	Close()
}
