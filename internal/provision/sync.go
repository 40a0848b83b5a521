package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dimitrije/salesdesk/internal/backend"
	"github.com/dimitrije/salesdesk/internal/models"
)

// OrphanLister finds identities without a profile. Only privileged handles can.
type OrphanLister interface {
	ListUsersWithoutProfile(ctx context.Context) ([]models.Identity, error)
}

type ProfileInserter interface {
	Insert(ctx context.Context, p *models.Profile) (*models.Profile, error)
}

// SyncReport lists the identities that had no profile. Created holds the ones
// that got a profile in this run; Failed maps the rest to their insert error.
type SyncReport struct {
	Missing []models.Identity
	Created []models.Profile
	Failed  map[string]error
}

// SyncOptions controls a profile backfill. Role is the role every backfilled
// profile gets and defaults to sales_rep.
type SyncOptions struct {
	Role   models.Role
	DryRun bool
}

// SyncProfiles inserts a profile for every identity that lacks one, taking
// the name from the identity metadata. The metadata role is self-reported at
// sign-up and is never trusted; opts.Role applies instead. With DryRun nothing
// is written.
func SyncProfiles(ctx context.Context, identities OrphanLister, profiles ProfileInserter, logger *slog.Logger, opts SyncOptions) (*SyncReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Role == "" {
		opts.Role = models.RoleSalesRep
	}
	if !opts.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, opts.Role)
	}

	missing, err := identities.ListUsersWithoutProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}

	report := &SyncReport{Missing: missing, Failed: map[string]error{}}
	if opts.DryRun {
		return report, nil
	}

	for _, u := range missing {
		if u.Metadata.Role != "" && u.Metadata.Role != opts.Role {
			logger.Info("ignoring metadata role", "identity_id", u.ID, "metadata_role", u.Metadata.Role, "role", opts.Role)
		}
		created, err := profiles.Insert(ctx, profileFromIdentity(u, opts.Role))
		if err != nil {
			logger.Warn("failed to insert missing profile", "identity_id", u.ID, "email", u.Email, "error", err)
			report.Failed[u.Email] = err
			continue
		}
		report.Created = append(report.Created, *created)
	}
	return report, nil
}

// SyncProfilesFor runs SyncProfiles through a privileged handle.
func SyncProfilesFor(ctx context.Context, client *backend.Client, logger *slog.Logger, opts SyncOptions) (*SyncReport, error) {
	admin, err := client.Admin()
	if err != nil {
		return nil, fail(StageConfig, err)
	}
	return SyncProfiles(ctx, admin, client.Profiles(), logger, opts)
}

func profileFromIdentity(u models.Identity, role models.Role) *models.Profile {
	p := &models.Profile{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Metadata.Name,
		Role:  role,
	}
	p.Normalize()
	return p
}
