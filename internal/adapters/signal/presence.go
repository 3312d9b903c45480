package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/domain"
)

func (ctl *Controller) handleAuthenticate(ctx context.Context, connID core.ConnectionID, c *WsSignalConn, data []byte) {
	var p struct {
		Type          string `json:"type"`
		IdentityClaim string `json:"identityClaim"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.IdentityClaim == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	identity, err := ctl.Coord.Authenticate(ctx, connID, p.IdentityClaim)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("authentication rejected")
		ctl.surface(c, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("identity", string(identity.ID)).Msg("authenticated")
}

func (ctl *Controller) handleSetStatus(connID core.ConnectionID, c *WsSignalConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := ctl.Coord.SetStatus(connID, domain.Status(p.Status)); err != nil {
		ctl.surface(c, err)
	}
}

func (ctl *Controller) handlePing(c *WsSignalConn) {
	ctl.sendJSON(c, map[string]any{"type": "pong"})
}
