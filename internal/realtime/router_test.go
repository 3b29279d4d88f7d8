package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(t *testing.T) (*State, *Router, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	state := NewState()
	return state, NewRouter(state, zap.New(core)), logs
}

func TestRouterDeliverReachesLiveRecipientsOnly(t *testing.T) {
	state, router, _ := newTestRouter(t)
	h1 := newFakeHandle("h1", "u1")
	h2 := newFakeHandle("h2", "u2")
	state.register("u1", h1)
	state.register("u2", h2)

	report := router.Deliver([]string{"u1", "u2", "offline"}, EventNewMessageAlert, ChatPayload{ChatID: "c1"})

	require.Equal(t, DeliveryReport{Attempted: 2, Delivered: 2}, report)
	require.Equal(t, []string{EventNewMessageAlert}, h1.events())
	require.Equal(t, ChatPayload{ChatID: "c1"}, h2.last(t, EventNewMessageAlert).Data)
}

func TestRouterStaleHandleDoesNotAffectSiblings(t *testing.T) {
	state, router, logs := newTestRouter(t)
	stale := newFakeHandle("h1", "u1")
	live := newFakeHandle("h2", "u2")
	state.register("u1", stale)
	state.register("u2", live)
	stale.Close()

	report := router.Deliver([]string{"u1", "u2"}, EventTypingStart, ChatPayload{ChatID: "c1"})

	require.Equal(t, DeliveryReport{Attempted: 2, Delivered: 1, Failed: 1}, report)
	require.Equal(t, []string{EventTypingStart}, live.events())
	require.Equal(t, 1, logs.FilterMessage("delivery to stale connection failed").Len())
}

func TestRouterLogsBackpressureAsWarning(t *testing.T) {
	state, router, logs := newTestRouter(t)
	slow := newFakeHandle("h1", "u1")
	slow.failErr = ErrBackpressure
	state.register("u1", slow)

	report := router.Deliver([]string{"u1"}, EventNewMessage, nil)

	require.Equal(t, 1, report.Failed)
	entries := logs.FilterMessage("dropping backpressured connection").All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.WarnLevel, entries[0].Level)
	require.Equal(t, "u1", entries[0].ContextMap()["user_id"])
}

func TestRouterDeliverExceptSkipsOrigin(t *testing.T) {
	state, router, _ := newTestRouter(t)
	origin := newFakeHandle("h1", "u1")
	other := newFakeHandle("h2", "u2")
	state.register("u1", origin)
	state.register("u2", other)

	report := router.DeliverExcept(origin, []string{"u1", "u2"}, EventTypingStart, ChatPayload{ChatID: "c1"})

	require.Equal(t, DeliveryReport{Attempted: 1, Delivered: 1}, report)
	require.Empty(t, origin.events())
	require.Equal(t, []string{EventTypingStart}, other.events())
}

func TestRouterBroadcast(t *testing.T) {
	state, router, _ := newTestRouter(t)
	h1 := newFakeHandle("h1", "u1")
	h2 := newFakeHandle("h2", "u2")
	h3 := newFakeHandle("h3", "u3")
	state.register("u1", h1)
	state.register("u2", h2)
	state.register("u3", h3)

	require.Equal(t, 3, router.Broadcast(EventOnlineUsers, []string{}).Delivered)
	report := router.BroadcastExcept(h2, EventOnlineUsers, []string{"u1"})
	require.Equal(t, DeliveryReport{Attempted: 2, Delivered: 2}, report)
	require.Len(t, h2.events(), 1)
	require.Len(t, h1.events(), 2)
}

func TestRouterReply(t *testing.T) {
	_, router, _ := newTestRouter(t)
	h1 := newFakeHandle("h1", "u1")

	require.Equal(t, 1, router.Reply(h1, EventPong, nil).Delivered)
	require.Equal(t, []string{EventPong}, h1.events())
	require.Zero(t, router.Reply(nil, EventPong, nil).Attempted)
}

func TestRouterEmptyRecipients(t *testing.T) {
	_, router, _ := newTestRouter(t)
	require.Equal(t, DeliveryReport{}, router.Deliver(nil, EventNewMessage, nil))
}
