package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/readhive/liveroom/internal/app"
	"github.com/readhive/liveroom/internal/auth"
	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/domain"
	"github.com/readhive/liveroom/internal/metrics"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump processes the connection's events strictly in arrival
// order; on exit it is the single place the disconnect cascade starts.
func (ctl *Controller) readPump(ctx context.Context, connID core.ConnectionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("readPump closing")
		ctl.Coord.OnDisconnect(connID)
		ctl.Limiter.Forget(connID)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleEvent(ctx, connID, c, data)
		}
	}
}

func (ctl *Controller) handleEvent(ctx context.Context, connID core.ConnectionID, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}
	metrics.EventsInbound.WithLabelValues(env.Type).Inc()

	switch env.Type {
	case "comment", "reaction", "chat_message", "typing_start":
		if !ctl.Limiter.Allow(connID) {
			ctl.sendError(c, "rate_limited")
			return
		}
	}

	switch env.Type {
	case "authenticate":
		ctl.handleAuthenticate(ctx, connID, c, data)
	case "join_room":
		ctl.handleJoin(connID, c, data)
	case "leave_room":
		ctl.handleLeave(connID, c, data)
	case "comment":
		ctl.handleComment(ctx, connID, c, data)
	case "reaction":
		ctl.handleReaction(ctx, connID, c, data)
	case "chat_message":
		ctl.handleChat(connID, c, data)
	case "typing_start":
		ctl.handleTyping(connID, c, data, true)
	case "typing_stop":
		ctl.handleTyping(connID, c, data, false)
	case "set_status":
		ctl.handleSetStatus(connID, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
		ctl.sendError(c, "unknown_event")
	}
}

func (ctl *Controller) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *WsSignalConn, code string) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": code,
	})
}

// surface maps coordinator errors onto wire error codes, always to the
// offending connection only.
func (ctl *Controller) surface(c *WsSignalConn, err error) {
	switch {
	case errors.Is(err, app.ErrStorage):
		ctl.sendJSON(c, map[string]any{
			"type":   "comment_error",
			"reason": "storage_unavailable",
		})
	case errors.Is(err, auth.ErrInvalidClaim):
		ctl.sendError(c, "authentication_failed")
	case errors.Is(err, app.ErrNotAuthenticated):
		ctl.sendError(c, "not_authenticated")
	case errors.Is(err, app.ErrNotInRoom):
		ctl.sendError(c, "not_in_room")
	case errors.Is(err, app.ErrAlreadyAuthenticated):
		ctl.sendError(c, "already_authenticated")
	case errors.Is(err, app.ErrInvalidStatus):
		ctl.sendError(c, "invalid_status")
	case errors.Is(err, app.ErrInvalidTarget):
		ctl.sendError(c, "invalid_target")
	case errors.Is(err, domain.ErrTextEmpty), errors.Is(err, domain.ErrTextTooLong):
		ctl.sendError(c, "invalid_text")
	default:
		ctl.sendError(c, "internal")
	}
}
