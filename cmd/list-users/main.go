package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dimitrije/salesdesk/internal/backend"
	"github.com/dimitrije/salesdesk/internal/config"
	"github.com/dimitrije/salesdesk/internal/logger"
	"github.com/dimitrije/salesdesk/internal/models"
)

func main() {
	email := flag.String("email", "", "sign in as this account (restricted key)")
	password := flag.String("password", "", "password for --email")
	privileged := flag.Bool("privileged", false, "use SERVICE_ROLE_KEY and list every profile")
	flag.Parse()

	if !*privileged && (*email == "" || *password == "") {
		fmt.Println("Usage: list-users (--email <email> --password <password> | --privileged)")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	key := cfg.AnonKey
	if *privileged {
		if !cfg.HasServiceKey() {
			log.Error("SERVICE_ROLE_KEY is not set")
			os.Exit(1)
		}
		key = cfg.ServiceRoleKey
	}

	ctx := context.Background()

	client, closeDB, err := backend.Connect(ctx, cfg, key, log)
	if err != nil {
		log.Error("failed to open backend", "error", err)
		os.Exit(1)
	}

	if *privileged {
		*email, *password = "", ""
	}
	err = run(ctx, client, *email, *password, os.Stdout, log)
	closeDB()
	if err != nil {
		log.Error("list-users failed", "error", err)
		os.Exit(1)
	}
}

// run signs in when email is set, prints the visible profiles to out and, on
// a privileged handle, the identity count. Sign-out happens before it returns.
func run(ctx context.Context, client *backend.Client, email, password string, out io.Writer, log *slog.Logger) error {
	if email != "" {
		if _, err := client.Auth().SignInWithPassword(ctx, email, password); err != nil {
			return fmt.Errorf("sign in as %s: %w", email, err)
		}
		defer func() {
			if err := client.Auth().SignOut(ctx); err != nil {
				log.Warn("sign out failed", "error", err)
			}
		}()
	}

	profiles, err := client.Profiles().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	printProfiles(out, profiles)

	if admin, err := client.Admin(); err == nil {
		identities, err := admin.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list identities: %w", err)
		}
		fmt.Fprintf(out, "\n%d identities, %d profiles\n", len(identities), len(profiles))
	}
	return nil
}

func printProfiles(out io.Writer, profiles []models.Profile) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tSTATUS\tPROVINCES\tBRANDS")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Email, p.Name, p.Role, p.Status,
			orDash(strings.Join(p.AllowedProvinces, ",")),
			orDash(strings.Join(p.AllowedBrands, ",")))
	}
	_ = w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
