package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/salesdesk/internal/database"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/services"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateIdentity creates a confirmed email identity with password "secret-password"
func (f *Fixtures) CreateIdentity(t *testing.T, opts ...IdentityOption) *models.Identity {
	t.Helper()
	f.counter++

	in := models.NewIdentity{
		Email:     fmt.Sprintf("user%d@example.com", f.counter),
		Password:  "secret-password",
		Metadata:  models.IdentityMetadata{Name: fmt.Sprintf("Test User %d", f.counter)},
		Confirmed: true,
	}
	for _, opt := range opts {
		opt(&in)
	}

	identity, err := services.NewIdentityService(f.db).Create(context.Background(), in)
	if err != nil {
		t.Fatalf("failed to create identity: %v", err)
	}
	return identity
}

// IdentityOption configures a test identity
type IdentityOption func(*models.NewIdentity)

// WithEmail sets the identity's email
func WithEmail(email string) IdentityOption {
	return func(in *models.NewIdentity) {
		in.Email = email
	}
}

// Unconfirmed leaves the identity's email unconfirmed
func Unconfirmed() IdentityOption {
	return func(in *models.NewIdentity) {
		in.Confirmed = false
	}
}

// CreateProfile creates an identity with a profile of the given role
func (f *Fixtures) CreateProfile(t *testing.T, role models.Role, opts ...ProfileOption) *models.Profile {
	t.Helper()
	identity := f.CreateIdentity(t)

	profile := &models.Profile{
		ID:    identity.ID,
		Email: identity.Email,
		Name:  identity.Metadata.Name,
		Role:  role,
	}
	for _, opt := range opts {
		opt(profile)
	}

	created, err := services.NewProfileService(f.db).Insert(context.Background(), profile)
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return created
}

// ProfileOption configures a test profile
type ProfileOption func(*models.Profile)

// WithProvinces sets the profile's allowed provinces
func WithProvinces(provinces ...string) ProfileOption {
	return func(p *models.Profile) {
		p.AllowedProvinces = provinces
	}
}

// WithStatus sets the profile's status
func WithStatus(status models.Status) ProfileOption {
	return func(p *models.Profile) {
		p.Status = status
	}
}

// CreateClient creates a client owned by owner
func (f *Fixtures) CreateClient(t *testing.T, owner *models.Profile, opts ...ClientOption) *models.Client {
	t.Helper()
	f.counter++

	client := &models.Client{
		Name:  fmt.Sprintf("Client %d", f.counter),
		Stage: models.StageLead,
		Value: 1000,
	}
	if owner != nil {
		client.OwnerID = &owner.ID
		client.CreatedBy = &owner.ID
	}
	for _, opt := range opts {
		opt(client)
	}

	created, err := services.NewClientService(f.db).Create(context.Background(), client)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return created
}

// ClientOption configures a test client
type ClientOption func(*models.Client)

// WithStage sets the client's stage
func WithStage(stage models.Stage) ClientOption {
	return func(c *models.Client) {
		c.Stage = stage
	}
}

// WithProvince sets the client's province
func WithProvince(province string) ClientOption {
	return func(c *models.Client) {
		c.Province = &province
	}
}
