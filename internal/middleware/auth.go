package middleware

import (
	"context"
	"strings"

	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	ProfileKey   = "profile"
)

// ProfileReader loads the caller's profile.
type ProfileReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

func Auth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)

		c.Next()
	}
}

// ActiveProfile loads the authenticated caller's profile and rejects callers
// without one or with an inactive one. Must run after Auth.
func ActiveProfile(profiles ProfileReader) drift.HandlerFunc {
	return func(c *drift.Context) {
		userID := GetUserID(c)
		if userID == uuid.Nil {
			c.Unauthorized("not authenticated")
			return
		}

		profile, err := profiles.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.Forbidden("no profile for this account")
			return
		}
		if !profile.IsActive() {
			c.Forbidden("account is inactive")
			return
		}

		c.Set(ProfileKey, profile)
		c.Next()
	}
}

// RequireRole lets only profiles with one of roles through. Must run after ActiveProfile.
func RequireRole(roles ...models.Role) drift.HandlerFunc {
	return func(c *drift.Context) {
		profile := GetProfile(c)
		if profile == nil {
			c.Forbidden("no profile for this account")
			return
		}
		for _, role := range roles {
			if profile.Role == role {
				c.Next()
				return
			}
		}
		c.Forbidden("insufficient role")
	}
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}

func GetProfile(c *drift.Context) *models.Profile {
	if p, ok := c.Get(ProfileKey); ok {
		if profile, ok := p.(*models.Profile); ok {
			return profile
		}
	}
	return nil
}

func bearerToken(c *drift.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.Unauthorized("missing authorization header")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		c.Unauthorized("invalid authorization header format")
		return "", false
	}
	return parts[1], true
}
