package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dimitrije/salesdesk/internal/config"
	"github.com/dimitrije/salesdesk/internal/database"
	"github.com/dimitrije/salesdesk/internal/services"
)

// DepsFor builds the stores of a running server on top of db.
func DepsFor(db *database.DB, cfg *config.Config, logger *slog.Logger) Deps {
	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	return Deps{
		JWT:         jwtService,
		Identities:  services.NewIdentityService(db),
		Sessions:    services.NewSessionService(db, jwtService),
		Profiles:    services.NewProfileService(db),
		Mailer:      services.NewEmailService(cfg.SMTP),
		AutoConfirm: cfg.AuthAutoConfirm,
		ConfirmURL:  cfg.ConfirmURL,
		Logger:      logger,
	}
}

// Connect opens the database and returns a handle for key. The returned
// function closes the pool.
func Connect(ctx context.Context, cfg *config.Config, key string, logger *slog.Logger) (*Client, func(), error) {
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := New(key, DepsFor(db, cfg, logger))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return client, db.Close, nil
}
