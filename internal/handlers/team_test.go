package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/salesdesk/internal/backend"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/provision"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/dimitrije/salesdesk/internal/testutil"
	"github.com/dimitrije/salesdesk/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type teamMocks struct {
	profiles *testutil.MockProfileStore
	cache    *mockTeamCache
	members  *mockMembers
}

func setupTeamTest(t *testing.T) (*teamMocks, *TeamHandler, *models.Profile) {
	t.Helper()
	m := &teamMocks{
		profiles: new(testutil.MockProfileStore),
		cache:    new(mockTeamCache),
		members:  new(mockMembers),
	}
	return m, NewTeamHandler(m.profiles, m.cache, m.members, discardLogger()), testProfile(models.RoleAdmin)
}

func teamApp(h *TeamHandler, caller *models.Profile) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(withProfile(caller))
	app.Get("/team", h.List)
	app.Post("/team", h.Create)
	app.Patch("/team/:id", h.Update)
	app.Delete("/team/:id", h.Delete)
	return app
}

func TestTeamHandler_List_CacheHit(t *testing.T) {
	m, handler, admin := setupTeamTest(t)
	cached := []models.Profile{*admin}
	m.cache.On("Get", mock.Anything).Return(cached, true, nil)

	rec := serve(teamApp(handler, admin), httptest.NewRequest(http.MethodGet, "/team", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Profile](t, rec), 1)
	m.profiles.AssertNotCalled(t, "List", mock.Anything)
}

func TestTeamHandler_List_CacheMissFillsCache(t *testing.T) {
	m, handler, admin := setupTeamTest(t)
	listed := []models.Profile{*admin, *testProfile(models.RoleSalesRep)}
	m.cache.On("Get", mock.Anything).Return(nil, false, errors.New("redis down"))
	m.profiles.On("List", mock.Anything).Return(listed, nil)
	m.cache.On("Set", mock.Anything, listed).Return(nil)

	rec := serve(teamApp(handler, admin), httptest.NewRequest(http.MethodGet, "/team", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Profile](t, rec), 2)
	m.cache.AssertExpectations(t)
}

func TestTeamHandler_Create_Success(t *testing.T) {
	m, handler, admin := setupTeamTest(t)
	userID := uuid.New()
	phone := "+1 555 0100"

	m.members.On("Create", mock.Anything, provision.MemberRequest{
		Name:             "New Rep",
		Email:            "rep@example.com",
		Role:             models.RoleSalesRep,
		Phone:            &phone,
		AllowedProvinces: []string{"ON"},
	}).Return(provision.Result{Success: true, UserID: &userID, Message: "User rep@example.com created successfully"})

	rec := serve(teamApp(handler, admin), jsonRequest(t, http.MethodPost, "/team", dto.CreateMemberRequest{
		Name: "New Rep", Email: "rep@example.com", Role: "sales_rep", Phone: &phone, AllowedProvinces: []string{"ON"},
	}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[dto.ActionResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, &userID, resp.UserID)
	m.members.AssertExpectations(t)
}

func TestTeamHandler_Create_FailureStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing privileged key", &provision.Error{Stage: provision.StageConfig, Err: provision.ErrNoPrivilegedBackend}, http.StatusServiceUnavailable},
		{"invalid request", fmt.Errorf("%w: name is required", provision.ErrInvalidRequest), http.StatusBadRequest},
		{"existing identity", &provision.Error{Stage: provision.StageIdentity, Err: services.ErrIdentityExists}, http.StatusConflict},
		{"profile write rolled back", &provision.Error{Stage: provision.StageProfileWrite, Err: services.ErrInvalidRole}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, handler, admin := setupTeamTest(t)
			m.members.On("Create", mock.Anything, mock.Anything).
				Return(provision.Result{Success: false, Error: tc.err.Error(), Err: tc.err})

			rec := serve(teamApp(handler, admin), jsonRequest(t, http.MethodPost, "/team", dto.CreateMemberRequest{
				Name: "X", Email: "x@example.com", Role: "admin",
			}))

			assert.Equal(t, tc.status, rec.Code)
			resp := decode[dto.ActionResponse](t, rec)
			assert.False(t, resp.Success)
			assert.Nil(t, resp.UserID)
			assert.Equal(t, tc.err.Error(), resp.Error)
		})
	}
}

func TestTeamHandler_Update(t *testing.T) {
	m, handler, admin := setupTeamTest(t)
	memberID := uuid.New()
	role := models.RoleDataEntry
	provinces := []string{"QC"}

	m.members.On("Update", mock.Anything, memberID, provision.MemberUpdate{Role: &role, AllowedProvinces: &provinces}).
		Return(&models.Profile{ID: memberID, Role: role, AllowedProvinces: provinces}, nil)

	roleStr := "data_entry"
	rec := serve(teamApp(handler, admin), jsonRequest(t, http.MethodPatch, "/team/"+memberID.String(),
		dto.UpdateMemberRequest{Role: &roleStr, AllowedProvinces: &provinces}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, role, decode[models.Profile](t, rec).Role)
	m.members.AssertExpectations(t)
}

func TestTeamHandler_Update_Rejections(t *testing.T) {
	_, handler, admin := setupTeamTest(t)
	bad := "owner"
	inactive := "inactive"

	cases := []struct {
		name string
		path string
		body dto.UpdateMemberRequest
		msg  string
	}{
		{"invalid id", "/team/not-a-uuid", dto.UpdateMemberRequest{}, "invalid member id"},
		{"invalid role", "/team/" + uuid.NewString(), dto.UpdateMemberRequest{Role: &bad}, "invalid role"},
		{"invalid status", "/team/" + uuid.NewString(), dto.UpdateMemberRequest{Status: &bad}, "invalid status"},
		{"self deactivation", "/team/" + admin.ID.String(), dto.UpdateMemberRequest{Status: &inactive}, "cannot deactivate your own account"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(teamApp(handler, admin), jsonRequest(t, http.MethodPatch, tc.path, tc.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.msg)
		})
	}
}

func TestTeamHandler_Update_NotFound(t *testing.T) {
	m, handler, admin := setupTeamTest(t)
	memberID := uuid.New()
	status := "inactive"

	m.members.On("Update", mock.Anything, memberID, mock.Anything).
		Return(nil, &provision.Error{Stage: provision.StageProfileWrite, Err: backend.ErrNotFound})

	rec := serve(teamApp(handler, admin), jsonRequest(t, http.MethodPatch, "/team/"+memberID.String(),
		dto.UpdateMemberRequest{Status: &status}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeamHandler_Delete(t *testing.T) {
	m, handler, admin := setupTeamTest(t)
	memberID := uuid.New()

	m.members.On("Delete", mock.Anything, memberID).
		Return(provision.Result{Success: true, UserID: &memberID, Message: "User deleted successfully"})

	rec := serve(teamApp(handler, admin), httptest.NewRequest(http.MethodDelete, "/team/"+memberID.String(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.ActionResponse](t, rec).Success)
	m.members.AssertExpectations(t)
}

func TestTeamHandler_Delete_Self(t *testing.T) {
	m, handler, admin := setupTeamTest(t)

	rec := serve(teamApp(handler, admin), httptest.NewRequest(http.MethodDelete, "/team/"+admin.ID.String(), nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.members.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTeamHandler_Delete_NotConfigured(t *testing.T) {
	m, handler, admin := setupTeamTest(t)
	memberID := uuid.New()
	err := &provision.Error{Stage: provision.StageConfig, Err: provision.ErrNoPrivilegedBackend}

	m.members.On("Delete", mock.Anything, memberID).Return(provision.Result{Error: err.Error(), Err: err})

	rec := serve(teamApp(handler, admin), httptest.NewRequest(http.MethodDelete, "/team/"+memberID.String(), nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
