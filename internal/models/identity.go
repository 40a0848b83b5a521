package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity providers
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

type IdentityMetadata struct {
	Name string `json:"name,omitempty"`
	Role Role   `json:"role,omitempty"`
}

type Identity struct {
	ID               uuid.UUID        `json:"id"`
	Email            string           `json:"email"`
	PasswordHash     string           `json:"-"`
	Metadata         IdentityMetadata `json:"user_metadata"`
	Provider         string           `json:"provider"`
	EmailConfirmedAt *time.Time       `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time       `json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (i *Identity) IsConfirmed() bool {
	return i.EmailConfirmedAt != nil
}

// NewIdentity describes an identity to be created.
type NewIdentity struct {
	Email     string
	Password  string
	Metadata  IdentityMetadata
	Provider  string
	Confirmed bool
}
