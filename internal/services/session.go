package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/salesdesk/internal/database"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/google/uuid"
)

var ErrInvalidRefreshToken = errors.New("refresh token not found or expired")

// SessionService issues token pairs and tracks their refresh tokens.
type SessionService struct {
	db  *database.DB
	jwt *JWTService
}

func NewSessionService(db *database.DB, jwt *JWTService) *SessionService {
	return &SessionService{db: db, jwt: jwt}
}

func (s *SessionService) Issue(ctx context.Context, identityID uuid.UUID, email string) (*models.Session, error) {
	pair, err := s.jwt.GenerateTokenPair(identityID, email)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.jwt.RefreshExpiry())
	if err := s.StoreRefreshToken(ctx, identityID, HashToken(pair.RefreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.Session{
		UserID:       identityID,
		Email:        email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		ExpiresAt:    time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second),
	}, nil
}

// Refresh rotates a refresh token: the old one is revoked and a new pair issued.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	identityID, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	tokenHash := HashToken(refreshToken)
	var storedID uuid.UUID
	var email string
	err = s.db.Pool.QueryRow(ctx, `
		SELECT r.identity_id, i.email
		FROM refresh_tokens r
		JOIN identities i ON i.id = r.identity_id
		WHERE r.token_hash = $1 AND r.expires_at > NOW()
	`, tokenHash).Scan(&storedID, &email)
	if err != nil || storedID != identityID {
		return nil, ErrInvalidRefreshToken
	}

	if err := s.RevokeRefreshToken(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.Issue(ctx, identityID, email)
}

// Revoke ends the session the refresh token belongs to.
func (s *SessionService) Revoke(ctx context.Context, refreshToken string) error {
	return s.RevokeRefreshToken(ctx, HashToken(refreshToken))
}

func (s *SessionService) StoreRefreshToken(ctx context.Context, identityID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (identity_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, identityID, tokenHash, expiresAt)
	return err
}

func (s *SessionService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

func (s *SessionService) RevokeAll(ctx context.Context, identityID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE identity_id = $1`, identityID)
	return err
}

func (s *SessionService) CleanupExpired(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	return err
}
