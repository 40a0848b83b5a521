package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/dimitrije/salesdesk/internal/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiKeyApp(role *services.KeyRole) http.Handler {
	app := drift.New()
	app.Use(APIKey(testutil.TestJWTService()))
	app.Get("/auth", func(c *drift.Context) {
		*role = GetKeyRole(c)
		okHandler(c)
	})
	return app
}

func TestAPIKey_Missing(t *testing.T) {
	var role services.KeyRole
	rec := serve(apiKeyApp(&role), httptest.NewRequest(http.MethodGet, "/auth", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing api key")
}

func TestAPIKey_Invalid(t *testing.T) {
	var role services.KeyRole
	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set(APIKeyHeader, "nope")

	rec := serve(apiKeyApp(&role), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid api key")
}

func TestAPIKey_SessionTokenIsNotAKey(t *testing.T) {
	var role services.KeyRole
	pair, err := testutil.TestJWTService().GenerateTokenPair(uuid.New(), "a@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set(APIKeyHeader, pair.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, serve(apiKeyApp(&role), req).Code)
}

func TestAPIKey_HeaderAndQuery(t *testing.T) {
	anon, service := testutil.TestKeys(t)

	var role services.KeyRole
	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set(APIKeyHeader, anon)

	rec := serve(apiKeyApp(&role), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.KeyRoleAnon, role)

	rec = serve(apiKeyApp(&role), httptest.NewRequest(http.MethodGet, "/auth?apikey="+service, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.KeyRoleService, role)
}
