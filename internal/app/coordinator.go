package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/domain"
	"github.com/readhive/liveroom/internal/metrics"
	"github.com/readhive/liveroom/internal/store"
)

// Coordinator routes inbound events: it validates and enriches them,
// calls persistence collaborators where required, and publishes the
// resulting outbound events with an explicit scope. All room and
// presence side effects of a disconnect key off the registry's atomic
// DisconnectOutcome.
type Coordinator struct {
	Registry *Registry
	Rooms    *core.RoomIndex
	Presence *PresenceTracker
	Typing   *core.TypingTracker
	Comments store.CommentStore
	Bcast    core.Broadcaster

	// CommentTimeout bounds the only blocking call in the event path.
	CommentTimeout time.Duration
	SweepInterval  time.Duration
}

// Authenticate admits the connection and announces a new session.
func (c *Coordinator) Authenticate(ctx context.Context, connID core.ConnectionID, claim string) (domain.Identity, error) {
	res, err := c.Registry.Authenticate(ctx, connID, claim)
	if err != nil {
		return domain.Identity{}, err
	}
	if res.NewSession {
		c.Presence.MarkOnline(res.Identity)
	}
	c.Bcast.Publish(core.Authenticated(connID, res.Identity))
	return res.Identity, nil
}

func (c *Coordinator) identityFor(connID core.ConnectionID) (domain.Identity, error) {
	id, ok := c.Registry.IdentityOf(connID)
	if !ok {
		return domain.Identity{}, ErrNotAuthenticated
	}
	return id, nil
}

// Join adds the identity to the room, tells the existing members, and
// answers the joiner with a point-in-time snapshot. A repeat join is
// idempotent: no duplicate broadcast, snapshot still returned.
func (c *Coordinator) Join(connID core.ConnectionID, roomID domain.RoomID) error {
	id, err := c.identityFor(connID)
	if err != nil {
		return err
	}
	if c.Rooms.Join(roomID, id.ID) {
		c.Bcast.Publish(core.JoinedRoom(id.ID, roomID))
		c.syncRoomGauge()
	}
	members := make([]domain.IdentityID, 0)
	for _, m := range c.Rooms.Members(roomID) {
		if m != id.ID {
			members = append(members, m)
		}
	}
	c.Bcast.Publish(core.RoomSnapshot(connID, roomID, members))
	return nil
}

func (c *Coordinator) Leave(connID core.ConnectionID, roomID domain.RoomID) error {
	id, err := c.identityFor(connID)
	if err != nil {
		return err
	}
	if c.Typing.Stop(roomID, id.ID) {
		c.Bcast.Publish(core.IdentityTyping(roomID, "", id.ID, false))
	}
	if !c.Rooms.Leave(roomID, id.ID) {
		return ErrNotInRoom
	}
	c.Bcast.Publish(core.LeftRoom(id.ID, roomID))
	c.syncRoomGauge()
	return nil
}

func (c *Coordinator) SetStatus(connID core.ConnectionID, status domain.Status) error {
	id, err := c.identityFor(connID)
	if err != nil {
		return err
	}
	return c.Presence.SetStatus(id.ID, status)
}

// Comment durably stores the comment first; only a persisted comment
// is broadcast, and it goes to the whole room including the poster.
// On failure or timeout the room observes nothing.
func (c *Coordinator) Comment(ctx context.Context, connID core.ConnectionID, roomID domain.RoomID, text string, rating *int) error {
	id, err := c.identityFor(connID)
	if err != nil {
		return err
	}
	if err := domain.ValidateText(text); err != nil {
		return err
	}
	if !c.Rooms.Contains(roomID, id.ID) {
		return ErrNotInRoom
	}

	ctx, cancel := context.WithTimeout(ctx, c.CommentTimeout)
	defer cancel()
	stored, err := c.Comments.InsertComment(ctx, roomID, id.ID, text, rating)
	if err != nil {
		metrics.CommentStoreFailures.Inc()
		log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(roomID)).Str("identity", string(id.ID)).Msg("comment persistence failed")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	c.Bcast.Publish(core.CommentPosted(roomID, id.ID, stored.ID, stored.Text, stored.Rating, stored.CreatedAt))
	return nil
}

// Reaction is stateless; persistence, if any, is an external concern.
// Content targets map to the content's own room; comment targets
// resolve their room through the comment store.
func (c *Coordinator) Reaction(ctx context.Context, connID core.ConnectionID, targetID string, targetType domain.TargetType, reactionKind string) error {
	id, err := c.identityFor(connID)
	if err != nil {
		return err
	}
	if targetID == "" || reactionKind == "" || !targetType.Valid() {
		return ErrInvalidTarget
	}

	var roomID domain.RoomID
	switch targetType {
	case domain.TargetContent:
		roomID = domain.RoomID(targetID)
	case domain.TargetComment:
		ctx, cancel := context.WithTimeout(ctx, c.CommentTimeout)
		defer cancel()
		roomID, err = c.Comments.CommentRoom(ctx, targetID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
	}
	if !c.Rooms.Contains(roomID, id.ID) {
		return ErrNotInRoom
	}

	c.Bcast.Publish(core.ReactionPosted(roomID, connID, id.ID, targetID, targetType, reactionKind, time.Now().UTC()))
	return nil
}

// ChatMessage is ephemeral: never persisted, sequenced per room for
// client-side ordering, not delivered back to the sending connection.
func (c *Coordinator) ChatMessage(connID core.ConnectionID, roomID domain.RoomID, text string) error {
	id, err := c.identityFor(connID)
	if err != nil {
		return err
	}
	if err := domain.ValidateText(text); err != nil {
		return err
	}
	if !c.Rooms.Contains(roomID, id.ID) {
		return ErrNotInRoom
	}
	seq := c.Rooms.NextSeq(roomID)
	c.Bcast.Publish(core.ChatMessage(roomID, connID, id.ID, seq, text))
	return nil
}

func (c *Coordinator) TypingStart(connID core.ConnectionID, roomID domain.RoomID) error {
	id, err := c.identityFor(connID)
	if err != nil {
		return err
	}
	if !c.Rooms.Contains(roomID, id.ID) {
		return ErrNotInRoom
	}
	if c.Typing.Start(roomID, id.ID) {
		c.Bcast.Publish(core.IdentityTyping(roomID, connID, id.ID, true))
	}
	return nil
}

func (c *Coordinator) TypingStop(connID core.ConnectionID, roomID domain.RoomID) error {
	id, err := c.identityFor(connID)
	if err != nil {
		return err
	}
	if c.Typing.Stop(roomID, id.ID) {
		c.Bcast.Publish(core.IdentityTyping(roomID, connID, id.ID, false))
	}
	return nil
}

// OnDisconnect reacts to the registry's outcome. Only the identity's
// last connection cascades: typing stops, then room leaves, then the
// offline announcement — leaves strictly before offline, so listeners
// keyed on presence still see the identity online while it leaves.
func (c *Coordinator) OnDisconnect(connID core.ConnectionID) {
	out := c.Registry.OnDisconnect(connID)
	if !out.Authenticated || !out.FullyOffline {
		return
	}

	for _, roomID := range c.Typing.EvictIdentity(out.Identity.ID) {
		c.Bcast.Publish(core.IdentityTyping(roomID, "", out.Identity.ID, false))
	}
	for _, roomID := range c.Rooms.EvictIdentity(out.Identity.ID) {
		c.Bcast.Publish(core.LeftRoom(out.Identity.ID, roomID))
	}
	c.syncRoomGauge()
	c.Presence.MarkOffline(out.Identity)
}

// Run drives the periodic typing sweep until the context ends. An
// entry never outlives its timeout plus one sweep interval.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.SweepInterval)
	defer ticker.Stop()
	log.Info().Str("module", "app.coordinator").Dur("interval", c.SweepInterval).Msg("typing sweep started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.coordinator").Msg("typing sweep stopped")
			return
		case <-ticker.C:
			c.SweepTyping()
		}
	}
}

// SweepTyping collects expired typing entries and broadcasts their
// stop events exactly once.
func (c *Coordinator) SweepTyping() {
	for _, key := range c.Typing.Sweep() {
		c.Bcast.Publish(core.IdentityTyping(key.Room, "", key.Identity, false))
	}
}

func (c *Coordinator) syncRoomGauge() {
	metrics.RoomsActive.Set(float64(len(c.Rooms.List())))
}
