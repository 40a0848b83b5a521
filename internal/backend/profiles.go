package backend

import (
	"context"
	"errors"

	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/google/uuid"
)

// ProfileTable is the profile store seen through the handle's key and session.
//
// The service role may do anything. Otherwise the caller needs a session and
// may only touch the row whose id is its own user id: other rows read as
// missing, writes to them fail with ErrPolicyViolation. Deletes always need the
// service role.
type ProfileTable struct {
	client *Client
}

func (t *ProfileTable) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if err := t.canRead(id); err != nil {
		return nil, err
	}
	profile, err := t.store().GetByID(ctx, id)
	return profile, mapNotFound(err)
}

// List returns every row the caller may read.
func (t *ProfileTable) List(ctx context.Context) ([]models.Profile, error) {
	if t.client.IsPrivileged() {
		return t.store().List(ctx)
	}

	session := t.client.currentSession()
	if session == nil {
		return nil, ErrNoSession
	}
	profile, err := t.store().GetByID(ctx, session.UserID)
	if errors.Is(err, services.ErrProfileNotFound) {
		return []models.Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []models.Profile{*profile}, nil
}

func (t *ProfileTable) Insert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if err := t.canWrite(p.ID); err != nil {
		return nil, err
	}
	return t.store().Insert(ctx, p)
}

func (t *ProfileTable) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Profile, error) {
	if err := t.canWrite(id); err != nil {
		return nil, err
	}
	profile, err := t.store().UpdateRole(ctx, id, role)
	return profile, mapNotFound(err)
}

func (t *ProfileTable) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Profile, error) {
	if err := t.canWrite(id); err != nil {
		return nil, err
	}
	profile, err := t.store().UpdateStatus(ctx, id, status)
	return profile, mapNotFound(err)
}

func (t *ProfileTable) UpdateScopes(ctx context.Context, id uuid.UUID, provinces, brands []string) (*models.Profile, error) {
	if err := t.canWrite(id); err != nil {
		return nil, err
	}
	profile, err := t.store().UpdateScopes(ctx, id, provinces, brands)
	return profile, mapNotFound(err)
}

func (t *ProfileTable) Update(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error) {
	if err := t.canWrite(id); err != nil {
		return nil, err
	}
	profile, err := t.store().Update(ctx, id, upd)
	return profile, mapNotFound(err)
}

func (t *ProfileTable) Delete(ctx context.Context, id uuid.UUID) error {
	if !t.client.IsPrivileged() {
		return ErrPrivilegedKeyRequired
	}
	return mapNotFound(t.store().Delete(ctx, id))
}

func (t *ProfileTable) store() ProfileStore {
	return t.client.deps.Profiles
}

func (t *ProfileTable) canRead(id uuid.UUID) error {
	if t.client.IsPrivileged() {
		return nil
	}
	session := t.client.currentSession()
	if session == nil {
		return ErrNoSession
	}
	if session.UserID != id {
		return ErrNotFound
	}
	return nil
}

func (t *ProfileTable) canWrite(id uuid.UUID) error {
	if t.client.IsPrivileged() {
		return nil
	}
	session := t.client.currentSession()
	if session == nil {
		return ErrNoSession
	}
	if session.UserID != id {
		return ErrPolicyViolation
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, services.ErrProfileNotFound) {
		return ErrNotFound
	}
	return err
}
