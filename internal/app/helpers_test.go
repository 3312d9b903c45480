package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readhive/liveroom/internal/auth"
	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/domain"
)

// fakeConn records every frame it is handed.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

// events decodes the recorded frames into generic maps.
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) kinds(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, ev := range f.events(t) {
		out = append(out, ev["type"].(string))
	}
	return out
}

func (f *fakeConn) countKind(t *testing.T, kind string) int {
	t.Helper()
	n := 0
	for _, k := range f.kinds(t) {
		if k == kind {
			n++
		}
	}
	return n
}

func (f *fakeConn) lastOfKind(t *testing.T, kind string) map[string]any {
	t.Helper()
	var found map[string]any
	for _, ev := range f.events(t) {
		if ev["type"] == kind {
			found = ev
		}
	}
	return found
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	f.frames = nil
	f.mu.Unlock()
}

func testTime() time.Time {
	return time.Unix(1700000000, 0).UTC()
}

// stubVerifier resolves claims from a fixed table; unknown claims fail
// the way a bad token does.
type stubVerifier struct {
	identities map[string]domain.Identity
}

func (s stubVerifier) Verify(_ context.Context, claim string) (domain.Identity, error) {
	id, ok := s.identities[claim]
	if !ok {
		return domain.Identity{}, auth.ErrInvalidClaim
	}
	return id, nil
}

func testVerifier() stubVerifier {
	return stubVerifier{identities: map[string]domain.Identity{
		"tok-u1": {ID: "U1", DisplayName: "Alice", Role: domain.RoleReader},
		"tok-u2": {ID: "U2", DisplayName: "Bob", Role: domain.RoleCreator},
		"tok-u3": {ID: "U3", DisplayName: "Carol", Role: domain.RoleAdmin},
	}}
}
