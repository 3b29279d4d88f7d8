package realtime

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailure marks a handshake whose credential could not be verified.
	ErrAuthFailure = errors.New("realtime: authentication failed")
	// ErrMalformedEvent marks an inbound event whose payload is missing or invalid.
	ErrMalformedEvent = errors.New("realtime: malformed event")
	// ErrDeliveryFailure is the parent of every per-handle send failure.
	ErrDeliveryFailure = errors.New("realtime: delivery failed")
	// ErrHandleClosed is returned by Send once the transport has closed.
	ErrHandleClosed = fmt.Errorf("%w: handle closed", ErrDeliveryFailure)
	// ErrBackpressure is returned by Send when the outbound queue is full.
	ErrBackpressure = fmt.Errorf("%w: send queue full", ErrDeliveryFailure)
	// ErrPersistenceFailure wraps errors returned by a message sink.
	ErrPersistenceFailure = errors.New("realtime: persistence failed")
	// ErrSessionInactive is returned when dispatching on a session that is not active.
	ErrSessionInactive = errors.New("realtime: session is not active")
	// ErrEventNotAllowed is returned by Hub.Emit for events outside the server-emitted set.
	ErrEventNotAllowed = errors.New("realtime: event cannot be emitted by the server")
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedEvent, fmt.Sprintf(format, args...))
}

// ErrHubClosed is returned by Connect once shutdown has begun.
var ErrHubClosed = errors.New("realtime: hub is shutting down")
