// Package oauth signs existing accounts in through third-party providers.
// Providers only report a verified email address; matching it to an identity
// is up to the caller.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrUnverifiedEmail = errors.New("provider account has no verified email")

type UserInfo struct {
	Email    string
	Name     string
	ID       string
	Provider string
}

type Provider interface {
	GetConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
	Name() string
}

func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// getJSON fetches url with the provider's authorized client and decodes the body into v.
func getJSON(client *http.Client, url, provider string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to call %s api: %w", provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s api returned status %d", provider, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", provider, err)
	}
	return nil
}
