package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dimitrije/salesdesk/internal/backend"
	"github.com/dimitrije/salesdesk/internal/metrics"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/google/uuid"
)

const variantRestricted = "restricted"

// Authenticator is the identity side of a restricted backend handle.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string, metadata models.IdentityMetadata) (*models.SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
}

// ProfileRows is the subset of the profile table provisioning writes through.
type ProfileRows interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Insert(ctx context.Context, p *models.Profile) (*models.Profile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Profile, error)
}

type AccountRequest struct {
	Email       string
	Password    string
	DisplayName string
	Role        models.Role
}

// Accounts provisions through a restricted handle.
type Accounts struct {
	auth     Authenticator
	profiles ProfileRows
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewAccounts(auth Authenticator, profiles ProfileRows, logger *slog.Logger, m *metrics.Metrics) *Accounts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Accounts{auth: auth, profiles: profiles, logger: logger, metrics: m}
}

// AccountsFor wires Accounts to a backend handle. The handle's session is
// replaced during each run, so it should not be shared with other callers.
func AccountsFor(client *backend.Client, logger *slog.Logger, m *metrics.Metrics) *Accounts {
	return NewAccounts(client.Auth(), client.Profiles(), logger, m)
}

// Provision signs the account up, signs in as it and makes sure its profile
// carries req.Role. An existing profile only gets its role updated. The session
// is always signed out before returning.
func (a *Accounts) Provision(ctx context.Context, req AccountRequest) (profile *models.Profile, err error) {
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeFailure
		}
		a.observe(outcome)
	}()

	if err := validateAccount(req); err != nil {
		return nil, fail(StageConfig, err)
	}

	signUp, err := a.auth.SignUp(ctx, req.Email, req.Password, models.IdentityMetadata{
		Name: req.DisplayName,
		Role: req.Role,
	})
	if err != nil {
		return nil, fail(StageIdentity, err)
	}
	if signUp == nil || signUp.User == nil || signUp.User.ID == uuid.Nil {
		return nil, fail(StageIdentifier, ErrMissingIdentifier)
	}
	userID := signUp.User.ID
	a.logger.Info("identity created", "user_id", userID, "email", req.Email)

	if _, err := a.auth.SignInWithPassword(ctx, req.Email, req.Password); err != nil {
		return nil, fail(StageSession, err)
	}
	defer func() {
		if err := a.auth.SignOut(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("sign-out after provisioning failed", "user_id", userID, "error", err)
		}
	}()

	existing, err := a.profiles.Get(ctx, userID)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		profile, err = a.profiles.Insert(ctx, &models.Profile{
			ID:     userID,
			Email:  signUp.User.Email,
			Name:   req.DisplayName,
			Role:   req.Role,
			Status: models.StatusActive,
		})
		if err != nil {
			return nil, fail(StageProfileWrite, err)
		}
		a.logger.Info("profile created", "user_id", userID, "role", req.Role)
	case err != nil:
		return nil, fail(StageProfileRead, err)
	default:
		profile, err = a.profiles.UpdateRole(ctx, existing.ID, req.Role)
		if err != nil {
			return nil, fail(StageProfileWrite, err)
		}
		a.logger.Info("profile role updated", "user_id", userID, "role", req.Role)
	}

	return profile, nil
}

func (a *Accounts) observe(outcome string) {
	if a.metrics != nil {
		a.metrics.ObserveProvision(variantRestricted, outcome)
	}
}

func validateAccount(req AccountRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	if req.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidRequest)
	}
	if !req.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, req.Role)
	}
	return nil
}
