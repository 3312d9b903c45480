package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/readhive/liveroom/internal/domain"
)

// MemoryStore keeps comments in process memory. Meant for development
// and tests; durability is someone else's problem there.
type MemoryStore struct {
	mu       sync.RWMutex
	comments map[string]StoredComment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comments: make(map[string]StoredComment)}
}

func (s *MemoryStore) InsertComment(_ context.Context, roomID domain.RoomID, identityID domain.IdentityID, text string, rating *int) (StoredComment, error) {
	c := StoredComment{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Identity:  identityID,
		Text:      text,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.comments[c.ID] = c
	s.mu.Unlock()
	return c, nil
}

func (s *MemoryStore) CommentRoom(_ context.Context, commentID string) (domain.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[commentID]
	if !ok {
		return "", ErrCommentNotFound
	}
	return c.RoomID, nil
}

func (s *MemoryStore) Close() error { return nil }
