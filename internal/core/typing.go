package core

import (
	"sync"
	"time"

	"github.com/readhive/liveroom/internal/domain"
)

// TypingKey identifies one active typing entry.
type TypingKey struct {
	Room     domain.RoomID
	Identity domain.IdentityID
}

// TypingTracker holds the short-lived per-room set of identities
// currently typing. Each entry carries a deadline; an entry past its
// deadline is invisible to readers and is collected by the next sweep,
// so a client that crashes mid-type never leaves a permanent
// indicator. At most one entry exists per (room, identity).
type TypingTracker struct {
	mu        sync.Mutex
	timeout   time.Duration
	deadlines map[domain.RoomID]map[domain.IdentityID]time.Time
	now       func() time.Time
}

func NewTypingTracker(timeout time.Duration) *TypingTracker {
	return &TypingTracker{
		timeout:   timeout,
		deadlines: make(map[domain.RoomID]map[domain.IdentityID]time.Time),
		now:       time.Now,
	}
}

// Start inserts or refreshes the entry. It reports whether the
// identity transitioned to typing, so callers broadcast once per
// burst instead of once per keystroke.
func (t *TypingTracker) Start(roomID domain.RoomID, identityID domain.IdentityID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	room := t.deadlines[roomID]
	if room == nil {
		room = make(map[domain.IdentityID]time.Time)
		t.deadlines[roomID] = room
	}
	deadline, had := room[identityID]
	room[identityID] = now.Add(t.timeout)
	return !had || !deadline.After(now)
}

// Stop removes the entry immediately. Reports whether the identity
// was visibly typing (a stop for an expired or absent entry must not
// broadcast a duplicate).
func (t *TypingTracker) Stop(roomID domain.RoomID, identityID domain.IdentityID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	room, ok := t.deadlines[roomID]
	if !ok {
		return false
	}
	deadline, had := room[identityID]
	if !had {
		return false
	}
	delete(room, identityID)
	if len(room) == 0 {
		delete(t.deadlines, roomID)
	}
	return deadline.After(t.now())
}

// Active returns the identities visibly typing in the room. Expired
// entries are excluded but left in place for Sweep to collect, so the
// stop broadcast is emitted exactly once.
func (t *TypingTracker) Active(roomID domain.RoomID) []domain.IdentityID {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	var out []domain.IdentityID
	for identityID, deadline := range t.deadlines[roomID] {
		if deadline.After(now) {
			out = append(out, identityID)
		}
	}
	return out
}

// Sweep deletes every expired entry and returns its key. The caller
// broadcasts the corresponding stop events.
func (t *TypingTracker) Sweep() []TypingKey {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	var expired []TypingKey
	for roomID, room := range t.deadlines {
		for identityID, deadline := range room {
			if deadline.After(now) {
				continue
			}
			delete(room, identityID)
			expired = append(expired, TypingKey{Room: roomID, Identity: identityID})
		}
		if len(room) == 0 {
			delete(t.deadlines, roomID)
		}
	}
	return expired
}

// EvictIdentity drops the identity's entries in every room and
// returns the rooms where it was visibly typing.
func (t *TypingTracker) EvictIdentity(identityID domain.IdentityID) []domain.RoomID {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	var affected []domain.RoomID
	for roomID, room := range t.deadlines {
		deadline, had := room[identityID]
		if !had {
			continue
		}
		delete(room, identityID)
		if len(room) == 0 {
			delete(t.deadlines, roomID)
		}
		if deadline.After(now) {
			affected = append(affected, roomID)
		}
	}
	return affected
}
