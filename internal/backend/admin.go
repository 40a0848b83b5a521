package backend

import (
	"context"

	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/google/uuid"
)

// AdminUserAttributes describes an identity created by an administrator.
type AdminUserAttributes struct {
	Email        string
	Password     string
	EmailConfirm bool
	Metadata     models.IdentityMetadata
}

type AdminAPI struct {
	client *Client
}

func (a *AdminAPI) CreateUser(ctx context.Context, attrs AdminUserAttributes) (*models.Identity, error) {
	return a.client.deps.Identities.Create(ctx, models.NewIdentity{
		Email:     attrs.Email,
		Password:  attrs.Password,
		Metadata:  attrs.Metadata,
		Provider:  models.ProviderEmail,
		Confirmed: attrs.EmailConfirm,
	})
}

// DeleteUser removes the identity. Its profile goes with it.
func (a *AdminAPI) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return a.client.deps.Identities.Delete(ctx, id)
}

func (a *AdminAPI) GetUser(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return a.client.deps.Identities.GetByID(ctx, id)
}

func (a *AdminAPI) ListUsers(ctx context.Context) ([]models.Identity, error) {
	return a.client.deps.Identities.List(ctx)
}

// ListUsersWithoutProfile returns the identities no profile row points at.
func (a *AdminAPI) ListUsersWithoutProfile(ctx context.Context) ([]models.Identity, error) {
	return a.client.deps.Identities.ListWithoutProfile(ctx)
}
