package dto

import "github.com/google/uuid"

type ConsentURLResponse struct {
	URL string `json:"url"`
}

type SignUpData struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type SignUpRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Data     SignUpData `json:"data"`
}

type SignUpResponse struct {
	User             *UserResponse `json:"user,omitempty"`
	ConfirmationSent bool          `json:"confirmation_sent"`
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	User         *UserResponse `json:"user,omitempty"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ExchangeCodeRequest struct {
	Code string `json:"code"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

// UserResponse is the public view of an identity.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Provider string    `json:"provider"`
}
