package core

import (
	"time"

	"github.com/readhive/liveroom/internal/domain"
)

// Scope names exactly which connections receive an outbound event.
// It is an explicit attribute of every event, never an accidental
// property of which broadcast call was used.
type Scope int

const (
	// ScopeConnection targets one transport connection.
	ScopeConnection Scope = iota
	// ScopeIdentity targets every connection of one identity.
	ScopeIdentity
	// ScopeRoom targets every connection of every room member.
	ScopeRoom
	// ScopeRoomOthers is ScopeRoom minus the sender's originating connection.
	ScopeRoomOthers
	// ScopeGlobal targets every registered connection.
	ScopeGlobal
)

// OutboundEvent is an immutable fan-out message. Routing is a pure
// function of its scope and target fields.
type OutboundEvent struct {
	Kind  string
	Scope Scope

	Conn     ConnectionID // target for ScopeConnection
	Identity domain.IdentityID
	Room     domain.RoomID

	// SenderConn is excluded under ScopeRoomOthers.
	SenderConn ConnectionID
	// ExcludeIdentity, when set, is skipped in room scopes.
	ExcludeIdentity domain.IdentityID

	Payload any
}

// Broadcaster is the fan-out transport the coordinator publishes to.
// The in-process implementation resolves scopes against local state;
// a multi-process deployment backs the same interface with a broker.
type Broadcaster interface {
	Publish(OutboundEvent)
}

const (
	KindIdentityOnline  = "identity_online"
	KindIdentityOffline = "identity_offline"
	KindStatusChanged   = "identity_status_changed"
	KindJoinedRoom      = "identity_joined_room"
	KindLeftRoom        = "identity_left_room"
	KindRoomSnapshot    = "room_snapshot"
	KindCommentPosted   = "comment_posted"
	KindReactionPosted  = "reaction_posted"
	KindChatMessage     = "chat_message"
	KindIdentityTyping  = "identity_typing"
	KindAuthenticated   = "authenticated"
)

type identityPresencePayload struct {
	Type        string            `json:"type"`
	IdentityID  domain.IdentityID `json:"identityId"`
	DisplayName string            `json:"displayName"`
}

type statusChangedPayload struct {
	Type       string            `json:"type"`
	IdentityID domain.IdentityID `json:"identityId"`
	Status     domain.Status     `json:"status"`
}

type roomMembershipPayload struct {
	Type       string            `json:"type"`
	IdentityID domain.IdentityID `json:"identityId"`
	RoomID     domain.RoomID     `json:"roomId"`
}

type roomSnapshotPayload struct {
	Type    string              `json:"type"`
	RoomID  domain.RoomID       `json:"roomId"`
	Members []domain.IdentityID `json:"members"`
}

type commentPostedPayload struct {
	Type       string            `json:"type"`
	CommentID  string            `json:"commentId"`
	RoomID     domain.RoomID     `json:"roomId"`
	IdentityID domain.IdentityID `json:"identityId"`
	Text       string            `json:"text"`
	Rating     *int              `json:"rating,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

type reactionPostedPayload struct {
	Type         string            `json:"type"`
	TargetID     string            `json:"targetId"`
	TargetType   domain.TargetType `json:"targetType"`
	ReactionKind string            `json:"reactionKind"`
	IdentityID   domain.IdentityID `json:"identityId"`
	Timestamp    time.Time         `json:"timestamp"`
}

type chatMessagePayload struct {
	Type       string            `json:"type"`
	Seq        uint64            `json:"seq"`
	RoomID     domain.RoomID     `json:"roomId"`
	IdentityID domain.IdentityID `json:"identityId"`
	Text       string            `json:"text"`
}

type identityTypingPayload struct {
	Type       string            `json:"type"`
	IdentityID domain.IdentityID `json:"identityId"`
	RoomID     domain.RoomID     `json:"roomId"`
	IsTyping   bool              `json:"isTyping"`
}

type authenticatedPayload struct {
	Type     string          `json:"type"`
	Identity domain.Identity `json:"identity"`
}

func IdentityOnline(id domain.Identity) OutboundEvent {
	return OutboundEvent{
		Kind:  KindIdentityOnline,
		Scope: ScopeGlobal,
		Payload: identityPresencePayload{
			Type:        KindIdentityOnline,
			IdentityID:  id.ID,
			DisplayName: id.DisplayName,
		},
	}
}

func IdentityOffline(id domain.Identity) OutboundEvent {
	return OutboundEvent{
		Kind:  KindIdentityOffline,
		Scope: ScopeGlobal,
		Payload: identityPresencePayload{
			Type:        KindIdentityOffline,
			IdentityID:  id.ID,
			DisplayName: id.DisplayName,
		},
	}
}

func StatusChanged(identityID domain.IdentityID, status domain.Status) OutboundEvent {
	return OutboundEvent{
		Kind:  KindStatusChanged,
		Scope: ScopeGlobal,
		Payload: statusChangedPayload{
			Type:       KindStatusChanged,
			IdentityID: identityID,
			Status:     status,
		},
	}
}

// JoinedRoom is delivered to existing members only; the joiner gets
// the snapshot instead.
func JoinedRoom(identityID domain.IdentityID, roomID domain.RoomID) OutboundEvent {
	return OutboundEvent{
		Kind:            KindJoinedRoom,
		Scope:           ScopeRoom,
		Room:            roomID,
		ExcludeIdentity: identityID,
		Payload: roomMembershipPayload{
			Type:       KindJoinedRoom,
			IdentityID: identityID,
			RoomID:     roomID,
		},
	}
}

func LeftRoom(identityID domain.IdentityID, roomID domain.RoomID) OutboundEvent {
	return OutboundEvent{
		Kind:            KindLeftRoom,
		Scope:           ScopeRoom,
		Room:            roomID,
		ExcludeIdentity: identityID,
		Payload: roomMembershipPayload{
			Type:       KindLeftRoom,
			IdentityID: identityID,
			RoomID:     roomID,
		},
	}
}

func RoomSnapshot(conn ConnectionID, roomID domain.RoomID, members []domain.IdentityID) OutboundEvent {
	if members == nil {
		members = []domain.IdentityID{}
	}
	return OutboundEvent{
		Kind:  KindRoomSnapshot,
		Scope: ScopeConnection,
		Conn:  conn,
		Payload: roomSnapshotPayload{
			Type:    KindRoomSnapshot,
			RoomID:  roomID,
			Members: members,
		},
	}
}

// CommentPosted goes to the whole room including the poster, so all of
// the poster's own connections stay in sync.
func CommentPosted(roomID domain.RoomID, identityID domain.IdentityID, commentID, text string, rating *int, createdAt time.Time) OutboundEvent {
	return OutboundEvent{
		Kind:  KindCommentPosted,
		Scope: ScopeRoom,
		Room:  roomID,
		Payload: commentPostedPayload{
			Type:       KindCommentPosted,
			CommentID:  commentID,
			RoomID:     roomID,
			IdentityID: identityID,
			Text:       text,
			Rating:     rating,
			CreatedAt:  createdAt,
		},
	}
}

func ReactionPosted(roomID domain.RoomID, sender ConnectionID, identityID domain.IdentityID, targetID string, targetType domain.TargetType, reactionKind string, at time.Time) OutboundEvent {
	return OutboundEvent{
		Kind:       KindReactionPosted,
		Scope:      ScopeRoomOthers,
		Room:       roomID,
		SenderConn: sender,
		Payload: reactionPostedPayload{
			Type:         KindReactionPosted,
			TargetID:     targetID,
			TargetType:   targetType,
			ReactionKind: reactionKind,
			IdentityID:   identityID,
			Timestamp:    at,
		},
	}
}

func ChatMessage(roomID domain.RoomID, sender ConnectionID, identityID domain.IdentityID, seq uint64, text string) OutboundEvent {
	return OutboundEvent{
		Kind:       KindChatMessage,
		Scope:      ScopeRoomOthers,
		Room:       roomID,
		SenderConn: sender,
		Payload: chatMessagePayload{
			Type:       KindChatMessage,
			Seq:        seq,
			RoomID:     roomID,
			IdentityID: identityID,
			Text:       text,
		},
	}
}

// IdentityTyping with a zero sender excludes the typer's identity
// instead; that variant is used for timeout-driven stops, which have
// no originating connection.
func IdentityTyping(roomID domain.RoomID, sender ConnectionID, identityID domain.IdentityID, isTyping bool) OutboundEvent {
	ev := OutboundEvent{
		Kind:       KindIdentityTyping,
		Scope:      ScopeRoomOthers,
		Room:       roomID,
		SenderConn: sender,
		Payload: identityTypingPayload{
			Type:       KindIdentityTyping,
			IdentityID: identityID,
			RoomID:     roomID,
			IsTyping:   isTyping,
		},
	}
	if sender == "" {
		ev.Scope = ScopeRoom
		ev.ExcludeIdentity = identityID
	}
	return ev
}

func Authenticated(conn ConnectionID, id domain.Identity) OutboundEvent {
	return OutboundEvent{
		Kind:  KindAuthenticated,
		Scope: ScopeConnection,
		Conn:  conn,
		Payload: authenticatedPayload{
			Type:     KindAuthenticated,
			Identity: id,
		},
	}
}
