package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dimitrije/salesdesk/internal/config"
	"github.com/dimitrije/salesdesk/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)

	for _, role := range []services.KeyRole{services.KeyRoleAnon, services.KeyRoleService} {
		key, err := jwtService.GenerateAPIKey(role)
		if err != nil {
			slog.Error("failed to generate key", "role", role, "error", err)
			os.Exit(1)
		}
		fmt.Printf("%s=%s\n", envName(role), key)
	}
}

func envName(role services.KeyRole) string {
	if role == services.KeyRoleService {
		return "SERVICE_ROLE_KEY"
	}
	return "ANON_KEY"
}
