// Package store adapts the external comment-persistence collaborator.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/readhive/liveroom/internal/domain"
)

var (
	ErrUnavailable     = errors.New("comment store unavailable")
	ErrCommentNotFound = errors.New("comment not found")
)

// StoredComment is what the collaborator durably assigned: an
// ordering-stable id and a timestamp.
type StoredComment struct {
	ID        string
	RoomID    domain.RoomID
	Identity  domain.IdentityID
	Text      string
	Rating    *int
	CreatedAt time.Time
}

// CommentStore is the narrow interface this subsystem consumes.
// CommentRoom resolves a comment id back to its room, which reactions
// targeting a comment need for fan-out.
type CommentStore interface {
	InsertComment(ctx context.Context, roomID domain.RoomID, identityID domain.IdentityID, text string, rating *int) (StoredComment, error)
	CommentRoom(ctx context.Context, commentID string) (domain.RoomID, error)
	Close() error
}
