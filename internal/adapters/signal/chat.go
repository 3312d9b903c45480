package signal

import (
	"context"
	"encoding/json"

	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/domain"
)

func (ctl *Controller) handleComment(ctx context.Context, connID core.ConnectionID, c *WsSignalConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
		Text   string `json:"text"`
		Rating *int   `json:"rating,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := ctl.Coord.Comment(ctx, connID, domain.RoomID(p.RoomID), p.Text, p.Rating); err != nil {
		ctl.surface(c, err)
	}
}

func (ctl *Controller) handleReaction(ctx context.Context, connID core.ConnectionID, c *WsSignalConn, data []byte) {
	var p struct {
		Type         string `json:"type"`
		TargetID     string `json:"targetId"`
		TargetType   string `json:"targetType"`
		ReactionKind string `json:"reactionKind"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := ctl.Coord.Reaction(ctx, connID, p.TargetID, domain.TargetType(p.TargetType), p.ReactionKind); err != nil {
		ctl.surface(c, err)
	}
}

func (ctl *Controller) handleChat(connID core.ConnectionID, c *WsSignalConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := ctl.Coord.ChatMessage(connID, domain.RoomID(p.RoomID), p.Text); err != nil {
		ctl.surface(c, err)
	}
}

func (ctl *Controller) handleTyping(connID core.ConnectionID, c *WsSignalConn, data []byte, start bool) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	var err error
	if start {
		err = ctl.Coord.TypingStart(connID, domain.RoomID(p.RoomID))
	} else {
		err = ctl.Coord.TypingStop(connID, domain.RoomID(p.RoomID))
	}
	if err != nil {
		ctl.surface(c, err)
	}
}
