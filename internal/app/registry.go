package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/readhive/liveroom/internal/auth"
	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/domain"
	"github.com/readhive/liveroom/internal/metrics"
)

// AuthResult reports a successful claim verification. NewSession is
// true only for the identity's first live connection; a second tab or
// device of the same identity does not open a new session.
type AuthResult struct {
	Identity   domain.Identity
	NewSession bool
}

// DisconnectOutcome is computed atomically with the removal so two
// closing connections of the same identity can never both observe
// "last" (or both observe "not last"). It is the sole trigger for
// presence-offline and room-eviction side effects.
type DisconnectOutcome struct {
	Identity      domain.Identity
	Authenticated bool
	FullyOffline  bool
}

// ConnRef pairs a connection id with its transport handle for fan-out.
type ConnRef struct {
	ID   core.ConnectionID
	Conn core.SignalConnection
}

type connEntry struct {
	conn     core.SignalConnection
	identity domain.IdentityID
	authed   bool
}

// Registry exclusively owns the connection→identity mapping and the
// reverse identity→connections multimap. It is pure bookkeeping: it
// emits no broadcasts itself.
type Registry struct {
	verifier auth.Verifier

	mu         sync.RWMutex
	conns      map[core.ConnectionID]*connEntry
	byIdentity map[domain.IdentityID]map[core.ConnectionID]struct{}
	identities map[domain.IdentityID]domain.Identity
}

func NewRegistry(verifier auth.Verifier) *Registry {
	return &Registry{
		verifier:   verifier,
		conns:      make(map[core.ConnectionID]*connEntry),
		byIdentity: make(map[domain.IdentityID]map[core.ConnectionID]struct{}),
		identities: make(map[domain.IdentityID]domain.Identity),
	}
}

// Register records a freshly accepted transport connection. The
// connection stays unauthenticated until a claim verifies.
func (r *Registry) Register(id core.ConnectionID, conn core.SignalConnection) {
	r.mu.Lock()
	r.conns[id] = &connEntry{conn: conn}
	r.mu.Unlock()
	metrics.ConnectionsActive.Inc()
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("connection registered")
}

// Authenticate verifies the claim through the external verifier and
// binds the connection to the resolved identity. On failure the
// connection is left unauthenticated, not closed, so the client can
// retry.
func (r *Registry) Authenticate(ctx context.Context, id core.ConnectionID, claim string) (AuthResult, error) {
	// Verification may reach out to the auth collaborator; never hold
	// the registry lock across it.
	identity, err := r.verifier.Verify(ctx, claim)
	if err != nil {
		return AuthResult{}, fmt.Errorf("authenticate: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[id]
	if !ok {
		return AuthResult{}, ErrUnknownConnection
	}
	if entry.authed {
		if entry.identity == identity.ID {
			return AuthResult{Identity: r.identities[identity.ID]}, nil
		}
		return AuthResult{}, ErrAlreadyAuthenticated
	}

	entry.authed = true
	entry.identity = identity.ID
	set, existed := r.byIdentity[identity.ID]
	if !existed {
		set = make(map[core.ConnectionID]struct{})
		r.byIdentity[identity.ID] = set
		r.identities[identity.ID] = identity
		metrics.IdentitiesOnline.Inc()
	}
	set[id] = struct{}{}

	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("identity", string(identity.ID)).Bool("new_session", !existed).Msg("connection authenticated")
	return AuthResult{Identity: r.identities[identity.ID], NewSession: !existed}, nil
}

// OnDisconnect removes the connection and reports, atomically with the
// removal, whether it was the identity's last one.
func (r *Registry) OnDisconnect(id core.ConnectionID) DisconnectOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[id]
	if !ok {
		return DisconnectOutcome{}
	}
	delete(r.conns, id)
	metrics.ConnectionsActive.Dec()

	if !entry.authed {
		log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unauthenticated connection closed")
		return DisconnectOutcome{}
	}

	out := DisconnectOutcome{
		Identity:      r.identities[entry.identity],
		Authenticated: true,
	}
	if set, ok := r.byIdentity[entry.identity]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.byIdentity, entry.identity)
			delete(r.identities, entry.identity)
			out.FullyOffline = true
			metrics.IdentitiesOnline.Dec()
		}
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("identity", string(out.Identity.ID)).Bool("fully_offline", out.FullyOffline).Msg("connection closed")
	return out
}

// IdentityOf resolves a connection to its identity; ok is false while
// the connection is unauthenticated or unknown.
func (r *Registry) IdentityOf(id core.ConnectionID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[id]
	if !ok || !entry.authed {
		return domain.Identity{}, false
	}
	return r.identities[entry.identity], true
}

// ActiveConnections is a diagnostics surface.
func (r *Registry) ActiveConnections(identityID domain.IdentityID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdentity[identityID])
}

func (r *Registry) Connection(id core.ConnectionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return entry.conn, true
}

// Connections returns the transport handles of every connection the
// identity currently holds.
func (r *Registry) Connections(identityID domain.IdentityID) []ConnRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.byIdentity[identityID]
	if !ok {
		return nil
	}
	out := make([]ConnRef, 0, len(set))
	for id := range set {
		if entry, ok := r.conns[id]; ok {
			out = append(out, ConnRef{ID: id, Conn: entry.conn})
		}
	}
	return out
}

// AllConnections returns every registered connection, authenticated or
// not. Global presence broadcasts go to all of them.
func (r *Registry) AllConnections() []ConnRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ConnRef, 0, len(r.conns))
	for id, entry := range r.conns {
		out = append(out, ConnRef{ID: id, Conn: entry.conn})
	}
	return out
}
