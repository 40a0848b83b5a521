package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated identity's token pair.
type Session struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SignUpResult is returned by sign-up. User is nil while the email confirmation
// is pending.
type SignUpResult struct {
	User             *Identity
	ConfirmationSent bool
}
