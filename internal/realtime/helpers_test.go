package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id     string
	userID string

	mu      sync.Mutex
	sent    []Envelope
	closed  bool
	failErr error
	closes  int
}

func newFakeHandle(id, userID string) *fakeHandle {
	return &fakeHandle{id: id, userID: userID}
}

func (f *fakeHandle) ID() string     { return f.id }
func (f *fakeHandle) UserID() string { return f.userID }

func (f *fakeHandle) Send(envelope Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrHandleClosed
	}
	if f.failErr != nil {
		return f.failErr
	}
	f.sent = append(f.sent, envelope)
	return nil
}

func (f *fakeHandle) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closes++
}

func (f *fakeHandle) envelopes() []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Envelope(nil), f.sent...)
}

func (f *fakeHandle) events() []string {
	var names []string
	for _, envelope := range f.envelopes() {
		names = append(names, envelope.Event)
	}
	return names
}

func (f *fakeHandle) last(t *testing.T, event string) Envelope {
	t.Helper()
	envelopes := f.envelopes()
	for i := len(envelopes) - 1; i >= 0; i-- {
		if envelopes[i].Event == event {
			return envelopes[i]
		}
	}
	t.Fatalf("handle %s never received %q (got %v)", f.id, event, f.events())
	return Envelope{}
}

type recordingSink struct {
	mu      sync.Mutex
	records []MessageRecord
	ctxErrs []error
	err     error
}

func (s *recordingSink) PersistMessage(ctx context.Context, record MessageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.err
}

func (s *recordingSink) calls() []MessageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MessageRecord(nil), s.records...)
}

var errSinkDown = errors.New("sink down")

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"event": event, "data": data})
	require.NoError(t, err)
	return payload
}
