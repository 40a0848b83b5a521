package middleware

import (
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	APIKeyHeader = "apikey"
	KeyRoleKey   = "key_role"
)

// APIKey requires a backend key in the apikey header (or query parameter for
// browser redirects) and records its role.
func APIKey(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = c.QueryParam(APIKeyHeader)
		}
		if key == "" {
			c.Unauthorized("missing api key")
			return
		}

		role, err := jwtService.ParseAPIKey(key)
		if err != nil {
			c.Unauthorized("invalid api key")
			return
		}

		c.Set(KeyRoleKey, role)
		c.Next()
	}
}

// GetKeyRole retrieves the key role set by APIKey
func GetKeyRole(c *drift.Context) services.KeyRole {
	if r, ok := c.Get(KeyRoleKey); ok {
		if role, ok := r.(services.KeyRole); ok {
			return role
		}
	}
	return ""
}
