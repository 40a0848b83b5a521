package provision

import (
	"context"

	"github.com/dimitrije/salesdesk/internal/backend"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) SignUp(ctx context.Context, email, password string, metadata models.IdentityMetadata) (*models.SignUpResult, error) {
	args := m.Called(ctx, email, password, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignUpResult), args.Error(1)
}

func (m *mockAuth) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockAuth) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfiles) Insert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfiles) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Profile, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfiles) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Profile, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfiles) UpdateScopes(ctx context.Context, id uuid.UUID, provinces, brands []string) (*models.Profile, error) {
	args := m.Called(ctx, id, provinces, brands)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

type mockAdmin struct {
	mock.Mock
}

func (m *mockAdmin) CreateUser(ctx context.Context, attrs backend.AdminUserAttributes) (*models.Identity, error) {
	args := m.Called(ctx, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *mockAdmin) DeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) BroadcastTeamUpdated(memberID uuid.UUID, action string) {
	m.Called(memberID, action)
}

type mockWelcome struct {
	mock.Mock
}

func (m *mockWelcome) SendWelcome(to, name, password, loginURL string) error {
	args := m.Called(to, name, password, loginURL)
	return args.Error(0)
}

type mockOrphans struct {
	mock.Mock
}

func (m *mockOrphans) ListUsersWithoutProfile(ctx context.Context) ([]models.Identity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Identity), args.Error(1)
}
