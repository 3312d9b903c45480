package domain

// RoomID is the content-item id the reading room is keyed by.
type RoomID string

// Status is the derived presence state of an identity.
type Status string

const (
	StatusOnline  Status = "online"
	StatusReading Status = "reading"
	StatusAway    Status = "away"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusReading, StatusAway:
		return true
	}
	return false
}

// TargetType scopes a reaction to a content item or a single comment.
type TargetType string

const (
	TargetContent TargetType = "content"
	TargetComment TargetType = "comment"
)

func (t TargetType) Valid() bool {
	return t == TargetContent || t == TargetComment
}
