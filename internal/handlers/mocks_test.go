package handlers

import (
	"context"

	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/oauth"
	"github.com/dimitrije/salesdesk/internal/provision"
	"github.com/dimitrije/salesdesk/internal/sse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockSignUp struct {
	mock.Mock
}

func (m *mockSignUp) SignUp(ctx context.Context, email, password string, metadata models.IdentityMetadata) (*models.SignUpResult, error) {
	args := m.Called(ctx, email, password, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignUpResult), args.Error(1)
}

func (m *mockSignUp) ConfirmEmail(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type mockClientService struct {
	mock.Mock
}

func (m *mockClientService) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientService) GetByID(ctx context.Context, scope models.ClientScope, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientService) List(ctx context.Context, scope models.ClientScope, filter models.ClientFilter) ([]models.Client, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Client), args.Error(1)
}

func (m *mockClientService) Update(ctx context.Context, scope models.ClientScope, id uuid.UUID, upd models.ClientUpdate) (*models.Client, error) {
	args := m.Called(ctx, scope, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientService) Delete(ctx context.Context, scope models.ClientScope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func (m *mockClientService) Pipeline(ctx context.Context, scope models.ClientScope) ([]models.StageSummary, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StageSummary), args.Error(1)
}

func (m *mockClientService) OwnerSummaries(ctx context.Context) ([]models.OwnerSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OwnerSummary), args.Error(1)
}

type mockTeamCache struct {
	mock.Mock
}

func (m *mockTeamCache) Get(ctx context.Context) ([]models.Profile, bool, error) {
	args := m.Called(ctx)
	var profiles []models.Profile
	if args.Get(0) != nil {
		profiles = args.Get(0).([]models.Profile)
	}
	return profiles, args.Bool(1), args.Error(2)
}

func (m *mockTeamCache) Set(ctx context.Context, profiles []models.Profile) error {
	args := m.Called(ctx, profiles)
	return args.Error(0)
}

type mockMembers struct {
	mock.Mock
}

func (m *mockMembers) Create(ctx context.Context, req provision.MemberRequest) provision.Result {
	args := m.Called(ctx, req)
	return args.Get(0).(provision.Result)
}

func (m *mockMembers) Update(ctx context.Context, id uuid.UUID, upd provision.MemberUpdate) (*models.Profile, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockMembers) Delete(ctx context.Context, id uuid.UUID) provision.Result {
	args := m.Called(ctx, id)
	return args.Get(0).(provision.Result)
}

type mockClientEvents struct {
	mock.Mock
}

func (m *mockClientEvents) BroadcastClientCreated(c *models.Client) {
	m.Called(c)
}

func (m *mockClientEvents) BroadcastClientUpdated(c *models.Client) {
	m.Called(c)
}

func (m *mockClientEvents) BroadcastClientDeleted(c *models.Client, deletedBy uuid.UUID) {
	m.Called(c, deletedBy)
}

type mockSSEHub struct {
	mock.Mock
}

func (m *mockSSEHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *mockSSEHub) Unregister(client *sse.Client) {
	m.Called(client)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) GetConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}

func (m *mockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
