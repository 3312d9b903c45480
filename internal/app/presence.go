package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/domain"
)

// PresenceTracker derives online/reading/away status per identity. An
// entry exists exactly while the identity holds a non-empty session in
// the registry: MarkOnline is called once per new session, MarkOffline
// only on the registry's fully-offline outcome, so offline is never
// announced while a connection remains and online is never announced
// twice.
type PresenceTracker struct {
	bcast core.Broadcaster

	mu       sync.RWMutex
	statuses map[domain.IdentityID]domain.Status
}

func NewPresenceTracker(bcast core.Broadcaster) *PresenceTracker {
	return &PresenceTracker{
		bcast:    bcast,
		statuses: make(map[domain.IdentityID]domain.Status),
	}
}

func (p *PresenceTracker) MarkOnline(id domain.Identity) {
	p.mu.Lock()
	p.statuses[id.ID] = domain.StatusOnline
	p.mu.Unlock()
	log.Info().Str("module", "app.presence").Str("identity", string(id.ID)).Msg("identity online")
	p.bcast.Publish(core.IdentityOnline(id))
}

// SetStatus is an explicit client-driven change; it never touches
// registry state.
func (p *PresenceTracker) SetStatus(identityID domain.IdentityID, status domain.Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	p.mu.Lock()
	if _, online := p.statuses[identityID]; !online {
		p.mu.Unlock()
		return ErrNotAuthenticated
	}
	p.statuses[identityID] = status
	p.mu.Unlock()
	log.Info().Str("module", "app.presence").Str("identity", string(identityID)).Str("status", string(status)).Msg("status changed")
	p.bcast.Publish(core.StatusChanged(identityID, status))
	return nil
}

func (p *PresenceTracker) MarkOffline(id domain.Identity) {
	p.mu.Lock()
	delete(p.statuses, id.ID)
	p.mu.Unlock()
	log.Info().Str("module", "app.presence").Str("identity", string(id.ID)).Msg("identity offline")
	p.bcast.Publish(core.IdentityOffline(id))
}

func (p *PresenceTracker) Online(identityID domain.IdentityID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.statuses[identityID]
	return ok
}

// Statuses is a point-in-time copy for the diagnostics API.
func (p *PresenceTracker) Statuses() map[domain.IdentityID]domain.Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[domain.IdentityID]domain.Status, len(p.statuses))
	for id, s := range p.statuses {
		out[id] = s
	}
	return out
}
