package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/domain"
)

type roomPayload struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

func (ctl *Controller) handleJoin(connID core.ConnectionID, c *WsSignalConn, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("room", p.RoomID).Msg("join_room")
	if err := ctl.Coord.Join(connID, domain.RoomID(p.RoomID)); err != nil {
		ctl.surface(c, err)
	}
}

func (ctl *Controller) handleLeave(connID core.ConnectionID, c *WsSignalConn, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("room", p.RoomID).Msg("leave_room")
	if err := ctl.Coord.Leave(connID, domain.RoomID(p.RoomID)); err != nil {
		ctl.surface(c, err)
	}
}
