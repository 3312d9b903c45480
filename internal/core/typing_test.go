package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readhive/liveroom/internal/domain"
)

func newTestTracker(timeout time.Duration) (*TypingTracker, *time.Time) {
	tr := NewTypingTracker(timeout)
	now := time.Unix(1700000000, 0)
	tr.now = func() time.Time { return now }
	return tr, &now
}

func TestTypingTracker_StartAndStop(t *testing.T) {
	req := require.New(t)
	tr, _ := newTestTracker(5 * time.Second)

	req.True(tr.Start("r1", "u1"))
	// Refresh, not a new transition.
	req.False(tr.Start("r1", "u1"))
	req.Equal([]domain.IdentityID{"u1"}, tr.Active("r1"))

	req.True(tr.Stop("r1", "u1"))
	req.Empty(tr.Active("r1"))
	// Second stop must not report a transition again.
	req.False(tr.Stop("r1", "u1"))
}

func TestTypingTracker_RefreshExtendsDeadline(t *testing.T) {
	req := require.New(t)
	tr, now := newTestTracker(5 * time.Second)

	tr.Start("r1", "u1")
	*now = now.Add(4 * time.Second)
	tr.Start("r1", "u1")
	*now = now.Add(4 * time.Second)

	// 8s after the first start but only 4s after the refresh.
	req.Equal([]domain.IdentityID{"u1"}, tr.Active("r1"))
	req.Empty(tr.Sweep())
}

func TestTypingTracker_SweepCollectsExpiredOnce(t *testing.T) {
	req := require.New(t)
	tr, now := newTestTracker(5 * time.Second)

	tr.Start("r1", "u1")
	tr.Start("r2", "u2")
	*now = now.Add(6 * time.Second)

	// Expired entries are invisible to readers but still sweepable.
	req.Empty(tr.Active("r1"))

	expired := tr.Sweep()
	req.ElementsMatch([]TypingKey{
		{Room: "r1", Identity: "u1"},
		{Room: "r2", Identity: "u2"},
	}, expired)

	// No duplicate stop on the next sweep.
	req.Empty(tr.Sweep())
}

func TestTypingTracker_StopAfterExpiry_NoDuplicate(t *testing.T) {
	req := require.New(t)
	tr, now := newTestTracker(5 * time.Second)

	tr.Start("r1", "u1")
	*now = now.Add(6 * time.Second)

	// The entry already aged out; an explicit stop is not a visible
	// transition and the entry is gone for the sweep too.
	req.False(tr.Stop("r1", "u1"))
	req.Empty(tr.Sweep())
}

func TestTypingTracker_EvictIdentity(t *testing.T) {
	req := require.New(t)
	tr, now := newTestTracker(5 * time.Second)

	tr.Start("r1", "u1")
	tr.Start("r2", "u1")
	tr.Start("r1", "u2")
	tr.Start("r3", "u3")
	*now = now.Add(6 * time.Second)
	tr.Start("r2", "u1") // refreshed, still visible

	affected := tr.EvictIdentity("u1")
	req.Equal([]domain.RoomID{"r2"}, affected)

	req.Empty(tr.Active("r1"))
	req.Empty(tr.Active("r2"))

	// u1's expired r1 entry was evicted, not swept.
	req.ElementsMatch([]TypingKey{
		{Room: "r1", Identity: "u2"},
		{Room: "r3", Identity: "u3"},
	}, tr.Sweep())
}
