package oauth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/salesdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func testGoogleProvider(srv *httptest.Server) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     "test-client-id",
			ClientSecret: "test-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:   srv.URL + "/authorize",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: srv.URL + "/userinfo",
	}
}

func TestGoogleProvider_Name(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{})
	assert.Equal(t, "google", provider.Name())
}

func TestGoogleProvider_GetConsentURL(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost/callback",
	})

	url := provider.GetConsentURL("test-state")

	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "prompt=select_account")
}

func TestGoogleProvider_Config(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{ClientID: "test-client-id"})

	assert.Contains(t, provider.config.Scopes, "https://www.googleapis.com/auth/userinfo.email")
	assert.Equal(t, google.Endpoint.TokenURL, provider.config.Endpoint.TokenURL)
	assert.Equal(t, googleUserInfoURL, provider.userInfoURL)
}

func TestGoogleProvider_ExchangeCode(t *testing.T) {
	srv := fakeProviderServer(t, map[string]string{
		"/userinfo": `{"id": "g-1", "email": "rep@example.com", "verified_email": true, "name": "Rep"}`,
	})

	info, err := testGoogleProvider(srv).ExchangeCode(context.Background(), "code")

	require.NoError(t, err)
	assert.Equal(t, "rep@example.com", info.Email)
	assert.Equal(t, "g-1", info.ID)
	assert.Equal(t, "google", info.Provider)
}

func TestGoogleProvider_ExchangeCode_UnverifiedEmail(t *testing.T) {
	srv := fakeProviderServer(t, map[string]string{
		"/userinfo": `{"id": "g-1", "email": "rep@example.com", "verified_email": false}`,
	})

	_, err := testGoogleProvider(srv).ExchangeCode(context.Background(), "code")

	assert.ErrorIs(t, err, ErrUnverifiedEmail)
}
