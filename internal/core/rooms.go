package core

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/readhive/liveroom/internal/domain"
)

// RoomInfo is a read-only view for diagnostics APIs.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"memberCount"`
}

// RoomIndex owns room membership exclusively. Membership is a set of
// identity ids per room: one identity with several connections counts
// once. Both a forward (room → identities) and a reverse
// (identity → rooms) index are kept so a full disconnect evicts the
// identity from all its rooms without scanning the whole index.
//
// A room whose member set becomes empty is deleted from the index on
// every removal path; empty rooms never linger.
type RoomIndex struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]map[domain.IdentityID]struct{}
	byIdent map[domain.IdentityID]map[domain.RoomID]struct{}
	seq     map[domain.RoomID]uint64
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{
		rooms:   make(map[domain.RoomID]map[domain.IdentityID]struct{}),
		byIdent: make(map[domain.IdentityID]map[domain.RoomID]struct{}),
		seq:     make(map[domain.RoomID]uint64),
	}
}

// Join adds the identity to the room. It reports whether membership
// actually changed; a repeat join is a no-op and must not broadcast.
func (x *RoomIndex) Join(roomID domain.RoomID, identityID domain.IdentityID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if members, ok := x.rooms[roomID]; ok {
		if _, already := members[identityID]; already {
			return false
		}
	} else {
		x.rooms[roomID] = make(map[domain.IdentityID]struct{})
	}
	x.rooms[roomID][identityID] = struct{}{}
	if x.byIdent[identityID] == nil {
		x.byIdent[identityID] = make(map[domain.RoomID]struct{})
	}
	x.byIdent[identityID][roomID] = struct{}{}
	log.Debug().Str("module", "core.rooms").Str("room", string(roomID)).Str("identity", string(identityID)).Msg("member joined")
	return true
}

// Leave removes the identity from the room, deleting the room entry
// when its member set becomes empty. Reports whether the identity was
// a member at all.
func (x *RoomIndex) Leave(roomID domain.RoomID, identityID domain.IdentityID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.removeLocked(roomID, identityID)
}

func (x *RoomIndex) removeLocked(roomID domain.RoomID, identityID domain.IdentityID) bool {
	members, ok := x.rooms[roomID]
	if !ok {
		return false
	}
	if _, present := members[identityID]; !present {
		return false
	}
	delete(members, identityID)
	if len(members) == 0 {
		delete(x.rooms, roomID)
	}
	if rooms, ok := x.byIdent[identityID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(x.byIdent, identityID)
		}
	}
	log.Debug().Str("module", "core.rooms").Str("room", string(roomID)).Str("identity", string(identityID)).Msg("member left")
	return true
}

// EvictIdentity removes the identity from every room it is in and
// returns the affected room ids. Used when the identity's last
// connection is gone.
func (x *RoomIndex) EvictIdentity(identityID domain.IdentityID) []domain.RoomID {
	x.mu.Lock()
	defer x.mu.Unlock()
	rooms, ok := x.byIdent[identityID]
	if !ok {
		return nil
	}
	affected := lo.Keys(rooms)
	for _, roomID := range affected {
		x.removeLocked(roomID, identityID)
	}
	return affected
}

// Members returns a point-in-time member list, not a live view.
func (x *RoomIndex) Members(roomID domain.RoomID) []domain.IdentityID {
	x.mu.RLock()
	defer x.mu.RUnlock()
	members, ok := x.rooms[roomID]
	if !ok {
		return nil
	}
	return lo.Keys(members)
}

func (x *RoomIndex) Contains(roomID domain.RoomID, identityID domain.IdentityID) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.rooms[roomID][identityID]
	return ok
}

func (x *RoomIndex) MemberCount(roomID domain.RoomID) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.rooms[roomID])
}

// RoomsOf returns every room the identity is currently in.
func (x *RoomIndex) RoomsOf(identityID domain.IdentityID) []domain.RoomID {
	x.mu.RLock()
	defer x.mu.RUnlock()
	rooms, ok := x.byIdent[identityID]
	if !ok {
		return nil
	}
	return lo.Keys(rooms)
}

// NextSeq hands out the next per-room chat sequence number. Counters
// survive room deletion so ordering never restarts for rejoining
// clients.
func (x *RoomIndex) NextSeq(roomID domain.RoomID) uint64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.seq[roomID]++
	return x.seq[roomID]
}

func (x *RoomIndex) List() []RoomInfo {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]RoomInfo, 0, len(x.rooms))
	for id, members := range x.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: len(members)})
	}
	return out
}
