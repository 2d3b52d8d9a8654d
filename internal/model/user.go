package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a principal synchronised from the identity provider. Events only
// reference it as their creator.
type User struct {
	ID          uuid.UUID `json:"id"`
	ExternalID  string    `json:"external_id"`
	DisplayName string    `json:"display_name"`
	Email       *string   `json:"email,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Principal is the authenticated caller as extracted from a bearer token.
type Principal struct {
	Subject string
	Roles   []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserID returns the subject as a user id when it is a UUID.
func (p Principal) UserID() *uuid.UUID {
	id, err := uuid.Parse(p.Subject)
	if err != nil {
		return nil
	}
	return &id
}
