package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/dimitrije/salesdesk/internal/backend"
	"github.com/dimitrije/salesdesk/internal/metrics"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memberMocks struct {
	admin    *mockAdmin
	profiles *mockProfiles
	cache    *mockCache
	events   *mockPublisher
	mailer   *mockWelcome
}

func setupMembers(t *testing.T) (*Members, *memberMocks) {
	t.Helper()
	mm := &memberMocks{
		admin:    new(mockAdmin),
		profiles: new(mockProfiles),
		cache:    new(mockCache),
		events:   new(mockPublisher),
		mailer:   new(mockWelcome),
	}
	members := NewMembers(MemberDeps{
		Admin:    mm.admin,
		Profiles: mm.profiles,
		Cache:    mm.cache,
		Events:   mm.events,
		Mailer:   mm.mailer,
		LoginURL: "http://localhost:3000/login",
		Metrics:  metrics.New(prometheus.NewRegistry()),
	})
	return members, mm
}

func repRequest() MemberRequest {
	return MemberRequest{
		Name:     "Sam Rep",
		Email:    "sam@example.com",
		Password: "secret-password",
		Role:     models.RoleSalesRep,
	}
}

func TestMembers_Create_Success(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()

	mm.admin.On("CreateUser", mock.Anything, backend.AdminUserAttributes{
		Email:        "sam@example.com",
		Password:     "secret-password",
		EmailConfirm: true,
		Metadata:     models.IdentityMetadata{Name: "Sam Rep", Role: models.RoleSalesRep},
	}).Return(&models.Identity{ID: id, Email: "sam@example.com"}, nil)
	mm.profiles.On("Insert", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.ID == id && p.Email == "sam@example.com" && p.Role == models.RoleSalesRep && p.Status == models.StatusActive
	})).Return(&models.Profile{ID: id}, nil)
	mm.cache.On("Invalidate", mock.Anything).Return(nil)
	mm.events.On("BroadcastTeamUpdated", id, "created").Return()
	mm.mailer.On("SendWelcome", "sam@example.com", "Sam Rep", "", "http://localhost:3000/login").Return(nil)

	result := members.Create(context.Background(), repRequest())

	require.True(t, result.Success, result.Error)
	require.NotNil(t, result.UserID)
	assert.Equal(t, id, *result.UserID)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, result.Error)
	mm.admin.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	mm.cache.AssertExpectations(t)
	mm.events.AssertExpectations(t)
	mm.mailer.AssertExpectations(t)
}

func TestMembers_Create_GeneratesPassword(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()
	req := repRequest()
	req.Password = ""

	var generated string
	mm.admin.On("CreateUser", mock.Anything, mock.MatchedBy(func(attrs backend.AdminUserAttributes) bool {
		generated = attrs.Password
		return len(attrs.Password) >= services.MinPasswordLength && attrs.EmailConfirm
	})).Return(&models.Identity{ID: id, Email: "sam@example.com"}, nil)
	mm.profiles.On("Insert", mock.Anything, mock.Anything).Return(&models.Profile{ID: id}, nil)
	mm.cache.On("Invalidate", mock.Anything).Return(nil)
	mm.events.On("BroadcastTeamUpdated", id, "created").Return()
	mm.mailer.On("SendWelcome", "sam@example.com", "Sam Rep", mock.AnythingOfType("string"), mock.Anything).Return(nil)

	result := members.Create(context.Background(), req)

	require.True(t, result.Success, result.Error)
	mm.mailer.AssertCalled(t, "SendWelcome", "sam@example.com", "Sam Rep", generated, "http://localhost:3000/login")
}

func TestMembers_Create_OmittedScopesAreEmpty(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()

	mm.admin.On("CreateUser", mock.Anything, mock.Anything).Return(&models.Identity{ID: id, Email: "sam@example.com"}, nil)
	mm.profiles.On("Insert", mock.Anything, mock.Anything).Return(&models.Profile{ID: id}, nil)
	mm.cache.On("Invalidate", mock.Anything).Return(nil)
	mm.events.On("BroadcastTeamUpdated", id, "created").Return()
	mm.mailer.On("SendWelcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result := members.Create(context.Background(), repRequest())
	require.True(t, result.Success)

	inserted := mm.profiles.Calls[0].Arguments.Get(1).(*models.Profile)
	assert.Equal(t, []string{}, inserted.AllowedProvinces)
	assert.Equal(t, []string{}, inserted.AllowedBrands)
}

func TestMembers_Create_NotConfigured(t *testing.T) {
	members := NewMembers(MemberDeps{})

	result := members.Create(context.Background(), repRequest())

	assert.False(t, result.Success)
	assert.Nil(t, result.UserID)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, StageConfig, StageOf(result.Err))
	assert.ErrorIs(t, result.Err, ErrNoPrivilegedBackend)
}

func TestMembers_Create_NotConfigured_NoBackendCall(t *testing.T) {
	profiles := new(mockProfiles)
	members := NewMembers(MemberDeps{Profiles: profiles})

	result := members.Create(context.Background(), repRequest())

	assert.False(t, result.Success)
	assert.Empty(t, profiles.Calls)
}

func TestMembersFor_RestrictedHandleIsNotConfigured(t *testing.T) {
	assert.False(t, MembersFor(nil, MemberDeps{}).Configured())
}

func TestMembers_Create_IdentityFailure(t *testing.T) {
	members, mm := setupMembers(t)

	mm.admin.On("CreateUser", mock.Anything, mock.Anything).Return(nil, services.ErrIdentityExists)

	result := members.Create(context.Background(), repRequest())

	assert.False(t, result.Success)
	assert.Equal(t, StageIdentity, StageOf(result.Err))
	assert.Contains(t, result.Error, services.ErrIdentityExists.Error())
	assert.Empty(t, mm.profiles.Calls)
	mm.admin.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestMembers_Create_ProfileFailureRollsBackOnce(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()

	mm.admin.On("CreateUser", mock.Anything, mock.Anything).Return(&models.Identity{ID: id, Email: "sam@example.com"}, nil)
	mm.profiles.On("Insert", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed"))
	mm.admin.On("DeleteUser", mock.Anything, id).Return(nil)

	result := members.Create(context.Background(), repRequest())

	assert.False(t, result.Success)
	assert.Nil(t, result.UserID)
	assert.Equal(t, StageProfileWrite, StageOf(result.Err))
	mm.admin.AssertNumberOfCalls(t, "DeleteUser", 1)
	mm.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	mm.events.AssertNotCalled(t, "BroadcastTeamUpdated", mock.Anything, mock.Anything)
	mm.mailer.AssertNotCalled(t, "SendWelcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMembers_Create_RollbackFailureStillReportsProfileError(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()

	mm.admin.On("CreateUser", mock.Anything, mock.Anything).Return(&models.Identity{ID: id, Email: "sam@example.com"}, nil)
	mm.profiles.On("Insert", mock.Anything, mock.Anything).Return(nil, services.ErrInvalidRole)
	mm.admin.On("DeleteUser", mock.Anything, id).Return(errors.New("delete failed"))

	result := members.Create(context.Background(), repRequest())

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, services.ErrInvalidRole)
	mm.admin.AssertNumberOfCalls(t, "DeleteUser", 1)
}

func TestMembers_Create_Validation(t *testing.T) {
	members, mm := setupMembers(t)

	cases := map[string]func(r *MemberRequest){
		"missing name":   func(r *MemberRequest) { r.Name = " " },
		"invalid email":  func(r *MemberRequest) { r.Email = "not-an-email" },
		"display name":   func(r *MemberRequest) { r.Email = "Sam Rep <sam@example.com>" },
		"angle brackets": func(r *MemberRequest) { r.Email = "<sam@example.com>" },
		"unknown role":   func(r *MemberRequest) { r.Role = "owner" },
		"short password": func(r *MemberRequest) { r.Password = "abc" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := repRequest()
			mutate(&req)

			result := members.Create(context.Background(), req)

			assert.False(t, result.Success)
			assert.ErrorIs(t, result.Err, ErrInvalidRequest)
		})
	}
	assert.Empty(t, mm.admin.Calls)
}

func TestMembers_Update(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()
	status := models.StatusInactive
	role := models.RoleDataEntry

	mm.profiles.On("UpdateRole", mock.Anything, id, role).Return(&models.Profile{ID: id, Role: role, Status: models.StatusActive}, nil)
	mm.profiles.On("UpdateStatus", mock.Anything, id, status).Return(&models.Profile{ID: id, Role: role, Status: status}, nil)
	mm.cache.On("Invalidate", mock.Anything).Return(nil)
	mm.events.On("BroadcastTeamUpdated", id, "updated").Return()

	profile, err := members.Update(context.Background(), id, MemberUpdate{Role: &role, Status: &status})

	require.NoError(t, err)
	assert.Equal(t, status, profile.Status)
	assert.Equal(t, role, profile.Role)
	mm.cache.AssertExpectations(t)
}

func TestMembers_Update_ScopesKeepOtherList(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()
	role := models.RoleSalesRep
	provinces := []string{"ON", "QC"}

	mm.profiles.On("UpdateRole", mock.Anything, id, role).
		Return(&models.Profile{ID: id, Role: role, AllowedBrands: []string{"Acme"}}, nil)
	mm.profiles.On("UpdateScopes", mock.Anything, id, provinces, []string{"Acme"}).
		Return(&models.Profile{ID: id, Role: role, AllowedProvinces: provinces, AllowedBrands: []string{"Acme"}}, nil)
	mm.cache.On("Invalidate", mock.Anything).Return(nil)
	mm.events.On("BroadcastTeamUpdated", id, "updated").Return()

	profile, err := members.Update(context.Background(), id, MemberUpdate{Role: &role, AllowedProvinces: &provinces})

	require.NoError(t, err)
	assert.Equal(t, provinces, profile.AllowedProvinces)
}

func TestMembers_Update_ScopesOnlyReadsCurrentProfile(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()
	brands := []string{"Acme"}

	mm.profiles.On("Get", mock.Anything, id).
		Return(&models.Profile{ID: id, AllowedProvinces: []string{"ON"}, AllowedBrands: []string{}}, nil)
	mm.profiles.On("UpdateScopes", mock.Anything, id, []string{"ON"}, brands).
		Return(&models.Profile{ID: id, AllowedProvinces: []string{"ON"}, AllowedBrands: brands}, nil)
	mm.cache.On("Invalidate", mock.Anything).Return(nil)
	mm.events.On("BroadcastTeamUpdated", id, "updated").Return()

	profile, err := members.Update(context.Background(), id, MemberUpdate{AllowedBrands: &brands})

	require.NoError(t, err)
	assert.Equal(t, []string{"ON"}, profile.AllowedProvinces)
	mm.profiles.AssertExpectations(t)
}

func TestMembers_Update_Empty(t *testing.T) {
	members, _ := setupMembers(t)

	_, err := members.Update(context.Background(), uuid.New(), MemberUpdate{})

	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestMembers_Delete(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()

	mm.admin.On("DeleteUser", mock.Anything, id).Return(nil)
	mm.cache.On("Invalidate", mock.Anything).Return(nil)
	mm.events.On("BroadcastTeamUpdated", id, "deleted").Return()

	result := members.Delete(context.Background(), id)

	assert.True(t, result.Success)
	mm.admin.AssertExpectations(t)
	mm.events.AssertExpectations(t)
}

func TestMembers_Delete_NotFound(t *testing.T) {
	members, mm := setupMembers(t)
	id := uuid.New()

	mm.admin.On("DeleteUser", mock.Anything, id).Return(services.ErrIdentityNotFound)

	result := members.Delete(context.Background(), id)

	assert.False(t, result.Success)
	assert.True(t, IsNotFound(result.Err))
	mm.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestMembers_Delete_NotConfigured(t *testing.T) {
	result := NewMembers(MemberDeps{}).Delete(context.Background(), uuid.New())

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, ErrNoPrivilegedBackend)
}
