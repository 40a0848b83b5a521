package testutil

import (
	"testing"
	"time"

	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/google/uuid"
)

const TestJWTSecret = "test-secret-key-for-testing-only"

// TestJWTService creates a JWTService with test configuration
func TestJWTService() *services.JWTService {
	return services.NewJWTService(
		TestJWTSecret,
		15*time.Minute,
		24*time.Hour,
	)
}

// TestKeys returns the anon and service_role keys for TestJWTService
func TestKeys(t *testing.T) (anon, service string) {
	t.Helper()
	jwtSvc := TestJWTService()

	anon, err := jwtSvc.GenerateAPIKey(services.KeyRoleAnon)
	if err != nil {
		t.Fatalf("failed to generate anon key: %v", err)
	}
	service, err = jwtSvc.GenerateAPIKey(services.KeyRoleService)
	if err != nil {
		t.Fatalf("failed to generate service key: %v", err)
	}
	return anon, service
}

// GenerateTestToken generates a valid access token for testing
func GenerateTestToken(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	pair, err := TestJWTService().GenerateTokenPair(userID, email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return pair.AccessToken
}

// AuthHeader returns an Authorization header value with a Bearer token
func AuthHeader(token string) string {
	return "Bearer " + token
}
