package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/salesdesk/internal/database"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileOrphan   = errors.New("profile has no backing identity")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidStatus   = errors.New("invalid status")
)

const profileColumns = `id, email, name, role, status, phone, allowed_provinces, allowed_brands, avatar_url, created_at, updated_at`

// ProfileService is the raw profile table. Ownership checks live in the backend package.
type ProfileService struct {
	db *database.DB
}

func NewProfileService(db *database.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := scanProfile(s.db.Pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE id = $1
	`, id))
	if database.IsNoRows(err) {
		return nil, ErrProfileNotFound
	}
	return profile, err
}

func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+profileColumns+` FROM profiles ORDER BY name, email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

// Insert stores a new profile. Missing status and scope lists are defaulted
// before the write, so stored rows never carry NULL lists.
func (s *ProfileService) Insert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	p.Normalize()
	if !p.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if !p.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	profile, err := scanProfile(s.db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email, name, role, status, phone, allowed_provinces, allowed_brands, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+profileColumns,
		p.ID, p.Email, p.Name, string(p.Role), string(p.Status), p.Phone,
		p.AllowedProvinces, p.AllowedBrands, p.AvatarURL))
	if err != nil {
		return nil, classifyProfileError(err, "failed to insert profile")
	}
	return profile, nil
}

func (s *ProfileService) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Profile, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.updateOne(ctx, `
		UPDATE profiles SET role = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+profileColumns, string(role), id)
}

func (s *ProfileService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Profile, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.updateOne(ctx, `
		UPDATE profiles SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+profileColumns, string(status), id)
}

func (s *ProfileService) UpdateScopes(ctx context.Context, id uuid.UUID, provinces, brands []string) (*models.Profile, error) {
	if provinces == nil {
		provinces = []string{}
	}
	if brands == nil {
		brands = []string{}
	}
	return s.updateOne(ctx, `
		UPDATE profiles SET allowed_provinces = $1, allowed_brands = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+profileColumns, provinces, brands, id)
}

func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error) {
	return s.updateOne(ctx, `
		UPDATE profiles SET
			name = COALESCE($1, name),
			phone = COALESCE($2, phone),
			avatar_url = COALESCE($3, avatar_url),
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+profileColumns, upd.Name, upd.Phone, upd.AvatarURL, id)
}

func (s *ProfileService) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *ProfileService) updateOne(ctx context.Context, query string, args ...any) (*models.Profile, error) {
	profile, err := scanProfile(s.db.Pool.QueryRow(ctx, query, args...))
	if database.IsNoRows(err) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, classifyProfileError(err, "failed to update profile")
	}
	return profile, nil
}

func classifyProfileError(err error, msg string) error {
	switch {
	case database.HasCode(err, database.CodeUniqueViolation):
		return ErrProfileExists
	case database.HasCode(err, database.CodeForeignKeyViolation):
		return ErrProfileOrphan
	case database.HasCode(err, database.CodeCheckViolation):
		return ErrInvalidRole
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	var role, status string
	if err := row.Scan(
		&p.ID, &p.Email, &p.Name, &role, &status, &p.Phone,
		&p.AllowedProvinces, &p.AllowedBrands, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Role = models.Role(role)
	p.Status = models.Status(status)
	p.Normalize()
	return &p, nil
}
