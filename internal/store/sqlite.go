package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/readhive/liveroom/internal/domain"
)

// SQLiteStore persists comments in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database.
// If dbPath is empty, defaults to "./data/liveroom.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/liveroom.db"
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL,
		identity_id TEXT NOT NULL,
		text TEXT NOT NULL,
		rating INTEGER,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_comments_room ON comments(room_id, created_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLiteStore) InsertComment(ctx context.Context, roomID domain.RoomID, identityID domain.IdentityID, text string, rating *int) (StoredComment, error) {
	c := StoredComment{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Identity:  identityID,
		Text:      text,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, room_id, identity_id, text, rating, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.RoomID), string(c.Identity), c.Text, c.Rating, c.CreatedAt,
	)
	if err != nil {
		return StoredComment{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return c, nil
}

func (s *SQLiteStore) CommentRoom(ctx context.Context, commentID string) (domain.RoomID, error) {
	var roomID string
	err := s.db.QueryRowContext(ctx, `SELECT room_id FROM comments WHERE id = ?`, commentID).Scan(&roomID)
	if err == sql.ErrNoRows {
		return "", ErrCommentNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return domain.RoomID(roomID), nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
