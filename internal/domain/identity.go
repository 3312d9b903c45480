// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const (
	MaxDisplayNameLen = 64
	MaxTextLen        = 2000
)

var (
	ErrTextEmpty   = errors.New("text empty")
	ErrTextTooLong = errors.New("text too long")
)

type IdentityID string

// Role is assigned by the external auth collaborator.
type Role string

const (
	RoleReader  Role = "reader"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated principal. The auth collaborator is
// authoritative for its attributes; this subsystem only borrows them.
type Identity struct {
	ID          IdentityID `json:"id"`
	DisplayName string     `json:"displayName"`
	Role        Role       `json:"role"`
}

// ValidateText bounds-checks user supplied chat/comment text.
func ValidateText(text string) error {
	if len(text) == 0 {
		return ErrTextEmpty
	}
	if len(text) > MaxTextLen {
		return ErrTextTooLong
	}
	return nil
}
