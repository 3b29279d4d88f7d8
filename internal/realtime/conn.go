package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 1 << 20 // 1 MiB
	defaultSendBuffer     = 64
)

// ConnOptions tunes a websocket connection.
type ConnOptions struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

func (o ConnOptions) withDefaults() ConnOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.WriteWait <= 0 {
		o.WriteWait = defaultWriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = defaultPongWait
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = defaultMaxMessageSize
	}
	return o
}

func (o ConnOptions) pingPeriod() time.Duration {
	return (o.PongWait * 9) / 10
}

// Conn is a Handle backed by a gorilla websocket. Outbound frames go through
// a bounded queue drained by a single writer goroutine.
type Conn struct {
	id     string
	userID string
	socket *websocket.Conn
	opts   ConnOptions
	log    *zap.Logger

	send   chan Envelope
	done   chan struct{}
	once   sync.Once
	closed atomic.Bool
}

// NewConn wraps an upgraded socket for userID.
func NewConn(socket *websocket.Conn, userID string, opts ConnOptions, log *zap.Logger) *Conn {
	opts = opts.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{
		id:     uuid.NewString(),
		userID: userID,
		socket: socket,
		opts:   opts,
		log:    log,
		send:   make(chan Envelope, opts.SendBuffer),
		done:   make(chan struct{}),
	}
}

func (c *Conn) ID() string     { return c.id }
func (c *Conn) UserID() string { return c.userID }

// Send queues envelope without blocking. A full queue closes the connection.
func (c *Conn) Send(envelope Envelope) error {
	if c.closed.Load() {
		return ErrHandleClosed
	}
	select {
	case <-c.done:
		return ErrHandleClosed
	default:
	}
	select {
	case c.send <- envelope:
		return nil
	default:
		c.Close()
		return ErrBackpressure
	}
}

// Close marks the connection closed and signals the writer, which sends a
// close frame and releases the socket. It never blocks.
func (c *Conn) Close() {
	c.once.Do(func() {
		c.closed.Store(true)
		close(c.done)
	})
}

// Done is closed when the connection shuts down.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Run starts the writer and reads frames until the socket fails, handing
// each non-empty text frame to onFrame in receipt order. The connection is
// closed when Run returns.
func (c *Conn) Run(onFrame func([]byte)) {
	go c.writeLoop()
	c.readLoop(onFrame)
}

func (c *Conn) readLoop(onFrame func([]byte)) {
	defer c.Close()

	c.socket.SetReadLimit(c.opts.MaxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Debug("unexpected websocket close", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
		if len(payload) == 0 {
			continue
		}
		_ = c.socket.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		onFrame(payload)
	}
}

func (c *Conn) writeLoop() {
	ticker := time.NewTicker(c.opts.pingPeriod())
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.socket.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.socket.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			_ = c.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case envelope := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.socket.WriteJSON(envelope); err != nil {
				c.log.Debug("websocket write failed", zap.String("user_id", c.userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
