package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readhive/liveroom/internal/auth"
	"github.com/readhive/liveroom/internal/core"
)

func TestRegistry_Authenticate_NewSessionOnce(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testVerifier())
	ctx := context.Background()

	r.Register("c1", &fakeConn{})
	r.Register("c2", &fakeConn{})

	res, err := r.Authenticate(ctx, "c1", "tok-u1")
	req.NoError(err)
	req.True(res.NewSession)
	req.Equal("Alice", res.Identity.DisplayName)

	// Second connection of the same identity is not a new session.
	res, err = r.Authenticate(ctx, "c2", "tok-u1")
	req.NoError(err)
	req.False(res.NewSession)
	req.Equal(2, r.ActiveConnections("U1"))
}

func TestRegistry_Authenticate_BadClaimLeavesConnectionUsable(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testVerifier())
	ctx := context.Background()

	r.Register("c1", &fakeConn{})

	_, err := r.Authenticate(ctx, "c1", "garbage")
	req.ErrorIs(err, auth.ErrInvalidClaim)

	_, ok := r.IdentityOf("c1")
	req.False(ok)

	// Retrying on the same connection works.
	res, err := r.Authenticate(ctx, "c1", "tok-u1")
	req.NoError(err)
	req.True(res.NewSession)
}

func TestRegistry_Authenticate_ReauthRules(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testVerifier())
	ctx := context.Background()

	r.Register("c1", &fakeConn{})
	_, err := r.Authenticate(ctx, "c1", "tok-u1")
	req.NoError(err)

	// Same identity again is idempotent.
	res, err := r.Authenticate(ctx, "c1", "tok-u1")
	req.NoError(err)
	req.False(res.NewSession)
	req.Equal(1, r.ActiveConnections("U1"))

	// Switching identity on a live connection is rejected.
	_, err = r.Authenticate(ctx, "c1", "tok-u2")
	req.ErrorIs(err, ErrAlreadyAuthenticated)

	_, err = r.Authenticate(ctx, "unknown", "tok-u1")
	req.ErrorIs(err, ErrUnknownConnection)
}

func TestRegistry_Disconnect_LastConnectionComputedAtomically(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testVerifier())
	ctx := context.Background()

	conns := []core.ConnectionID{"c1", "c2", "c3"}
	for _, id := range conns {
		r.Register(id, &fakeConn{})
		_, err := r.Authenticate(ctx, id, "tok-u1")
		req.NoError(err)
	}
	req.Equal(3, r.ActiveConnections("U1"))

	// Closing all but the last never reports fully offline.
	out := r.OnDisconnect("c1")
	req.True(out.Authenticated)
	req.False(out.FullyOffline)
	out = r.OnDisconnect("c2")
	req.False(out.FullyOffline)
	req.Equal(1, r.ActiveConnections("U1"))

	out = r.OnDisconnect("c3")
	req.True(out.Authenticated)
	req.True(out.FullyOffline)
	req.Equal("U1", string(out.Identity.ID))
	req.Equal(0, r.ActiveConnections("U1"))

	// A repeat disconnect of a gone connection reports nothing.
	out = r.OnDisconnect("c3")
	req.False(out.Authenticated)
	req.False(out.FullyOffline)
}

func TestRegistry_Disconnect_Unauthenticated(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testVerifier())

	r.Register("c1", &fakeConn{})
	out := r.OnDisconnect("c1")
	req.False(out.Authenticated)
	req.False(out.FullyOffline)
}

func TestRegistry_ConnectionLookups(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testVerifier())
	ctx := context.Background()

	c1, c2 := &fakeConn{}, &fakeConn{}
	r.Register("c1", c1)
	r.Register("c2", c2)
	_, err := r.Authenticate(ctx, "c1", "tok-u1")
	req.NoError(err)

	got, ok := r.Connection("c1")
	req.True(ok)
	req.Same(c1, got.(*fakeConn))

	refs := r.Connections("U1")
	req.Len(refs, 1)
	req.Equal(core.ConnectionID("c1"), refs[0].ID)

	req.Len(r.AllConnections(), 2)
	req.Nil(r.Connections("U2"))
}
