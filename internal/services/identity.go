package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dimitrije/salesdesk/internal/database"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrIdentityExists     = errors.New("a user with this email address has already been registered")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrEmailRequired      = errors.New("email is required")
)

const identityColumns = `id, email, password_hash, metadata, provider, email_confirmed_at, last_sign_in_at, created_at, updated_at`

type IdentityService struct {
	db *database.DB
}

func NewIdentityService(db *database.DB) *IdentityService {
	return &IdentityService{db: db}
}

func (s *IdentityService) Create(ctx context.Context, in models.NewIdentity) (*models.Identity, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	provider := in.Provider
	if provider == "" {
		provider = models.ProviderEmail
	}

	var passwordHash *string
	if provider == models.ProviderEmail || in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	metadata, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	identity, err := scanIdentity(s.db.Pool.QueryRow(ctx, `
		INSERT INTO identities (email, password_hash, metadata, provider, email_confirmed_at)
		VALUES ($1, $2, $3, $4, CASE WHEN $5 THEN NOW() END)
		RETURNING `+identityColumns,
		email, passwordHash, metadata, provider, in.Confirmed))
	if err != nil {
		if database.HasCode(err, database.CodeUniqueViolation) {
			return nil, ErrIdentityExists
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}
	return identity, nil
}

// Authenticate checks an email/password pair and records the sign-in.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	identity, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if identity.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(identity.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !identity.IsConfirmed() {
		return nil, ErrEmailNotConfirmed
	}

	if err := s.TouchSignIn(ctx, identity.ID); err != nil {
		return nil, err
	}
	now := time.Now()
	identity.LastSignInAt = &now

	return identity, nil
}

func (s *IdentityService) TouchSignIn(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE identities SET last_sign_in_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to record sign-in: %w", err)
	}
	return nil
}

func (s *IdentityService) GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	identity, err := scanIdentity(s.db.Pool.QueryRow(ctx, `
		SELECT `+identityColumns+` FROM identities WHERE id = $1
	`, id))
	if database.IsNoRows(err) {
		return nil, ErrIdentityNotFound
	}
	return identity, err
}

func (s *IdentityService) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	identity, err := scanIdentity(s.db.Pool.QueryRow(ctx, `
		SELECT `+identityColumns+` FROM identities WHERE LOWER(email) = $1
	`, normalizeEmail(email)))
	if database.IsNoRows(err) {
		return nil, ErrIdentityNotFound
	}
	return identity, err
}

func (s *IdentityService) List(ctx context.Context) ([]models.Identity, error) {
	return s.list(ctx, `
		SELECT `+identityColumns+` FROM identities ORDER BY created_at
	`)
}

// ListWithoutProfile returns identities that have no profile row yet.
func (s *IdentityService) ListWithoutProfile(ctx context.Context) ([]models.Identity, error) {
	return s.list(ctx, `
		SELECT i.id, i.email, i.password_hash, i.metadata, i.provider, i.email_confirmed_at,
		       i.last_sign_in_at, i.created_at, i.updated_at
		FROM identities i
		LEFT JOIN profiles p ON p.id = i.id
		WHERE p.id IS NULL
		ORDER BY i.created_at
	`)
}

func (s *IdentityService) Confirm(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE identities SET email_confirmed_at = COALESCE(email_confirmed_at, NOW()), updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to confirm identity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (s *IdentityService) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (s *IdentityService) list(ctx context.Context, query string) ([]models.Identity, error) {
	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	identities := []models.Identity{}
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, *identity)
	}
	return identities, rows.Err()
}

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var identity models.Identity
	var passwordHash *string
	var metadata []byte

	if err := row.Scan(
		&identity.ID, &identity.Email, &passwordHash, &metadata, &identity.Provider,
		&identity.EmailConfirmedAt, &identity.LastSignInAt, &identity.CreatedAt, &identity.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if passwordHash != nil {
		identity.PasswordHash = *passwordHash
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &identity.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode identity metadata: %w", err)
		}
	}
	return &identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
