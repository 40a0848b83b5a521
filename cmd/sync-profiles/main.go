package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dimitrije/salesdesk/internal/backend"
	"github.com/dimitrije/salesdesk/internal/config"
	"github.com/dimitrije/salesdesk/internal/logger"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/provision"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "only report identities without a profile")
	role := flag.String("role", string(models.RoleSalesRep), "role given to every created profile (admin, sales_rep, data_entry)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if !models.Role(*role).Valid() {
		log.Error("unknown role", "role", *role)
		os.Exit(1)
	}

	if !cfg.HasServiceKey() {
		log.Error("SERVICE_ROLE_KEY is not set")
		os.Exit(1)
	}

	ctx := context.Background()

	client, closeDB, err := backend.Connect(ctx, cfg, cfg.ServiceRoleKey, log)
	if err != nil {
		log.Error("failed to open backend", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	report, err := provision.SyncProfilesFor(ctx, client, log, provision.SyncOptions{
		Role:   models.Role(*role),
		DryRun: *dryRun,
	})
	if err != nil {
		log.Error("sync failed", "error", err)
		closeDB()
		os.Exit(1)
	}

	for _, identity := range report.Missing {
		fmt.Printf("missing profile: %s (%s)\n", identity.Email, identity.ID)
	}
	if *dryRun {
		fmt.Printf("%d identities without a profile\n", len(report.Missing))
		return
	}

	fmt.Printf("created %d profiles, %d failed\n", len(report.Created), len(report.Failed))
	if len(report.Failed) > 0 {
		closeDB()
		os.Exit(1)
	}
}
