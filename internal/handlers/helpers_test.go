package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/salesdesk/internal/middleware"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// withProfile stands in for Auth and ActiveProfile.
func withProfile(p *models.Profile) drift.HandlerFunc {
	return func(c *drift.Context) {
		c.Set(middleware.UserIDKey, p.ID)
		c.Set(middleware.UserEmailKey, p.Email)
		c.Set(middleware.ProfileKey, p)
		c.Next()
	}
}

func testProfile(role models.Role) *models.Profile {
	return &models.Profile{
		ID:               uuid.New(),
		Email:            string(role) + "@example.com",
		Name:             "Test " + string(role),
		Role:             role,
		Status:           models.StatusActive,
		AllowedProvinces: []string{"ON"},
		AllowedBrands:    []string{},
	}
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
