package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readhive/liveroom/internal/domain"
)

func TestRoomIndex_Join_Idempotent(t *testing.T) {
	req := require.New(t)
	idx := NewRoomIndex()

	req.True(idx.Join("r1", "u1"))
	req.False(idx.Join("r1", "u1"))

	req.Equal(1, idx.MemberCount("r1"))
	req.Equal([]domain.IdentityID{"u1"}, idx.Members("r1"))
}

func TestRoomIndex_Leave_DeletesEmptyRoom(t *testing.T) {
	req := require.New(t)
	idx := NewRoomIndex()

	idx.Join("r1", "u1")
	idx.Join("r1", "u2")

	req.True(idx.Leave("r1", "u1"))
	req.Equal(1, idx.MemberCount("r1"))
	req.Len(idx.List(), 1)

	req.True(idx.Leave("r1", "u2"))
	req.Empty(idx.List())
	req.Nil(idx.Members("r1"))

	// Leaving a room you are not in reports nothing removed.
	req.False(idx.Leave("r1", "u2"))
	req.False(idx.Leave("nope", "u1"))
}

func TestRoomIndex_EvictIdentity_RemovesFromAllRooms(t *testing.T) {
	req := require.New(t)
	idx := NewRoomIndex()

	idx.Join("a", "u1")
	idx.Join("b", "u1")
	idx.Join("b", "u2")

	affected := idx.EvictIdentity("u1")
	req.ElementsMatch([]domain.RoomID{"a", "b"}, affected)

	// Room "a" emptied and must be gone; "b" keeps u2.
	req.Len(idx.List(), 1)
	req.Equal([]domain.IdentityID{"u2"}, idx.Members("b"))
	req.Empty(idx.RoomsOf("u1"))

	req.Nil(idx.EvictIdentity("u1"))
}

func TestRoomIndex_Contains(t *testing.T) {
	req := require.New(t)
	idx := NewRoomIndex()

	idx.Join("r1", "u1")
	req.True(idx.Contains("r1", "u1"))
	req.False(idx.Contains("r1", "u2"))
	req.False(idx.Contains("r2", "u1"))
}

func TestRoomIndex_NextSeq_MonotonicPerRoom(t *testing.T) {
	req := require.New(t)
	idx := NewRoomIndex()

	req.Equal(uint64(1), idx.NextSeq("r1"))
	req.Equal(uint64(2), idx.NextSeq("r1"))
	req.Equal(uint64(1), idx.NextSeq("r2"))

	// The counter survives the room emptying out.
	idx.Join("r1", "u1")
	idx.Leave("r1", "u1")
	req.Equal(uint64(3), idx.NextSeq("r1"))
}
