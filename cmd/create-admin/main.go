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
	email := flag.String("email", "", "email of the account")
	password := flag.String("password", "", "password of the account")
	name := flag.String("name", "Administrator", "display name")
	role := flag.String("role", string(models.RoleAdmin), "role: admin, sales_rep or data_entry")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Println("Usage: create-admin --email <email> --password <password> [--name <name>] [--role <role>]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()

	client, closeDB, err := backend.Connect(ctx, cfg, cfg.AnonKey, log)
	if err != nil {
		log.Error("failed to open backend", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	profile, err := provision.AccountsFor(client, log, nil).Provision(ctx, provision.AccountRequest{
		Email:       *email,
		Password:    *password,
		DisplayName: *name,
		Role:        models.Role(*role),
	})
	if err != nil {
		log.Error("provisioning failed", "stage", provision.StageOf(err), "error", err)
		closeDB()
		os.Exit(1)
	}

	fmt.Printf("Provisioned %s (%s) as %s\n", profile.Email, profile.ID, profile.Role)
}
