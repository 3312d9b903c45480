package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/readhive/liveroom/internal/app"
	"github.com/readhive/liveroom/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the websocket endpoint: one connection id per
// socket, a read pump feeding the coordinator, a write pump draining
// the send buffer.
type Controller struct {
	Coord      *app.Coordinator
	Limiter    *EventRateLimiter
	ReadLimit  int64
	SendBuffer int
}

func NewController(coord *app.Coordinator, limiter *EventRateLimiter, readLimit int64, sendBuffer int) *Controller {
	return &Controller{Coord: coord, Limiter: limiter, ReadLimit: readLimit, SendBuffer: sendBuffer}
}

// WsSignalConn implements core.SignalConnection over gorilla/websocket.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and admits the connection. The
// connection stays unauthenticated until its authenticate event
// verifies.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.ReadLimit)

	connID := core.ConnectionID(uuid.NewString())
	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.SendBuffer),
	}
	ctl.Coord.Registry.Register(connID, conn)
	log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		// Closing the conn unblocks the read pump, which runs the
		// disconnect cascade.
		defer cancel()
		defer conn.Close()
		ctl.writePump(ctx, conn)
	}()
	go ctl.readPump(ctx, connID, conn)
}
