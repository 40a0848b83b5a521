package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/dimitrije/salesdesk/internal/backend"
	"github.com/dimitrije/salesdesk/internal/metrics"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/google/uuid"
)

const (
	variantPrivileged       = "privileged"
	generatedPasswordLength = 16
)

// IdentityAdmin is the privileged identity API.
type IdentityAdmin interface {
	CreateUser(ctx context.Context, attrs backend.AdminUserAttributes) (*models.Identity, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// MemberProfiles is the privileged view of the profile table.
type MemberProfiles interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Insert(ctx context.Context, p *models.Profile) (*models.Profile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Profile, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Profile, error)
	UpdateScopes(ctx context.Context, id uuid.UUID, provinces, brands []string) (*models.Profile, error)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type TeamPublisher interface {
	BroadcastTeamUpdated(memberID uuid.UUID, action string)
}

type WelcomeMailer interface {
	SendWelcome(to, name, password, loginURL string) error
}

// MemberDeps wires Members. Admin and Profiles stay nil when no privileged key
// is configured; every operation then returns a configuration error.
type MemberDeps struct {
	Admin    IdentityAdmin
	Profiles MemberProfiles
	Cache    CacheInvalidator
	Events   TeamPublisher
	Mailer   WelcomeMailer
	LoginURL string
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// MemberRequest is the input of the team member action. Password is generated
// when empty.
type MemberRequest struct {
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Password         string      `json:"password,omitempty"`
	Role             models.Role `json:"role"`
	Phone            *string     `json:"phone,omitempty"`
	AllowedProvinces []string    `json:"allowedProvinces,omitempty"`
	AllowedBrands    []string    `json:"allowedBrands,omitempty"`
}

// MemberUpdate changes role, status or scopes of an existing member. Nil fields are kept.
type MemberUpdate struct {
	Role             *models.Role
	Status           *models.Status
	AllowedProvinces *[]string
	AllowedBrands    *[]string
}

// Result is the action outcome returned to callers. Err keeps the typed
// failure for callers that map it to a status code.
type Result struct {
	Success bool       `json:"success"`
	UserID  *uuid.UUID `json:"userId,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
	Err     error      `json:"-"`
}

// Members provisions and manages team members through the privileged backend.
type Members struct {
	deps MemberDeps
}

func NewMembers(deps MemberDeps) *Members {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Members{deps: deps}
}

// MembersFor wires Members to a privileged handle. A restricted handle yields
// Members that report the configuration error.
func MembersFor(client *backend.Client, deps MemberDeps) *Members {
	if client != nil {
		if admin, err := client.Admin(); err == nil {
			deps.Admin = admin
			deps.Profiles = client.Profiles()
		}
	}
	return NewMembers(deps)
}

func (m *Members) Configured() bool {
	return m.deps.Admin != nil && m.deps.Profiles != nil
}

// Create provisions a confirmed identity and its profile. When the profile
// insert fails the identity is deleted so no identity is left without a profile.
func (m *Members) Create(ctx context.Context, req MemberRequest) Result {
	if !m.Configured() {
		m.observe(metrics.OutcomeConfig)
		return failure(fail(StageConfig, ErrNoPrivilegedBackend))
	}

	if err := validateMember(&req); err != nil {
		m.observe(metrics.OutcomeFailure)
		return failure(err)
	}

	password := req.Password
	generated := password == ""
	if generated {
		var err error
		password, err = services.GeneratePassword(generatedPasswordLength)
		if err != nil {
			m.observe(metrics.OutcomeFailure)
			return failure(fail(StageIdentity, err))
		}
	}

	identity, err := m.deps.Admin.CreateUser(ctx, backend.AdminUserAttributes{
		Email:        req.Email,
		Password:     password,
		EmailConfirm: true,
		Metadata:     models.IdentityMetadata{Name: req.Name, Role: req.Role},
	})
	if err != nil {
		m.observe(metrics.OutcomeFailure)
		return failure(fail(StageIdentity, err))
	}
	if identity == nil || identity.ID == uuid.Nil {
		m.observe(metrics.OutcomeFailure)
		return failure(fail(StageIdentifier, ErrMissingIdentifier))
	}

	profile := &models.Profile{
		ID:               identity.ID,
		Email:            identity.Email,
		Name:             req.Name,
		Role:             req.Role,
		Status:           models.StatusActive,
		Phone:            req.Phone,
		AllowedProvinces: req.AllowedProvinces,
		AllowedBrands:    req.AllowedBrands,
	}
	profile.Normalize()
	if _, err := m.deps.Profiles.Insert(ctx, profile); err != nil {
		m.rollback(ctx, identity.ID, err)
		m.observe(metrics.OutcomeRolledBack)
		return failure(fail(StageProfileWrite, err))
	}

	m.deps.Logger.Info("team member created", "user_id", identity.ID, "email", identity.Email, "role", req.Role)
	m.changed(ctx, identity.ID, "created")
	m.welcome(identity.Email, req.Name, password, generated)
	m.observe(metrics.OutcomeSuccess)

	id := identity.ID
	return Result{Success: true, UserID: &id, Message: fmt.Sprintf("User %s created successfully", identity.Email)}
}

// Update applies role, status and scope changes to a member's profile.
func (m *Members) Update(ctx context.Context, id uuid.UUID, upd MemberUpdate) (*models.Profile, error) {
	if !m.Configured() {
		return nil, fail(StageConfig, ErrNoPrivilegedBackend)
	}

	var profile *models.Profile
	var err error
	if upd.Role != nil {
		if profile, err = m.deps.Profiles.UpdateRole(ctx, id, *upd.Role); err != nil {
			return nil, fail(StageProfileWrite, err)
		}
	}
	if upd.Status != nil {
		if profile, err = m.deps.Profiles.UpdateStatus(ctx, id, *upd.Status); err != nil {
			return nil, fail(StageProfileWrite, err)
		}
	}
	if upd.AllowedProvinces != nil || upd.AllowedBrands != nil {
		if profile == nil && (upd.AllowedProvinces == nil || upd.AllowedBrands == nil) {
			if profile, err = m.deps.Profiles.Get(ctx, id); err != nil {
				return nil, fail(StageProfileRead, err)
			}
		}
		var provinces, brands []string
		if upd.AllowedProvinces != nil {
			provinces = *upd.AllowedProvinces
		} else if profile != nil {
			provinces = profile.AllowedProvinces
		}
		if upd.AllowedBrands != nil {
			brands = *upd.AllowedBrands
		} else if profile != nil {
			brands = profile.AllowedBrands
		}
		if profile, err = m.deps.Profiles.UpdateScopes(ctx, id, provinces, brands); err != nil {
			return nil, fail(StageProfileWrite, err)
		}
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidRequest)
	}

	m.changed(ctx, id, "updated")
	return profile, nil
}

// Delete removes the member's identity; the profile cascades.
func (m *Members) Delete(ctx context.Context, id uuid.UUID) Result {
	if !m.Configured() {
		return failure(fail(StageConfig, ErrNoPrivilegedBackend))
	}

	if err := m.deps.Admin.DeleteUser(ctx, id); err != nil {
		return failure(fail(StageIdentity, err))
	}

	m.deps.Logger.Info("team member deleted", "user_id", id)
	m.changed(ctx, id, "deleted")
	return Result{Success: true, UserID: &id, Message: "User deleted successfully"}
}

func (m *Members) rollback(ctx context.Context, id uuid.UUID, cause error) {
	m.deps.Logger.Warn("profile insert failed, deleting identity", "user_id", id, "error", cause)
	if m.deps.Metrics != nil {
		m.deps.Metrics.RollbacksTotal.Inc()
	}
	if err := m.deps.Admin.DeleteUser(context.WithoutCancel(ctx), id); err != nil {
		m.deps.Logger.Error("identity rollback failed", "user_id", id, "error", err)
	}
}

func (m *Members) changed(ctx context.Context, id uuid.UUID, action string) {
	if m.deps.Cache != nil {
		if err := m.deps.Cache.Invalidate(ctx); err != nil {
			m.deps.Logger.Warn("failed to invalidate team cache", "error", err)
		}
	}
	if m.deps.Events != nil {
		m.deps.Events.BroadcastTeamUpdated(id, action)
	}
}

func (m *Members) welcome(email, name, password string, generated bool) {
	if m.deps.Mailer == nil {
		return
	}
	if !generated {
		password = ""
	}
	if err := m.deps.Mailer.SendWelcome(email, name, password, m.deps.LoginURL); err != nil {
		m.deps.Logger.Warn("failed to send welcome email", "email", email, "error", err)
	}
}

func (m *Members) observe(outcome string) {
	if m.deps.Metrics != nil {
		m.deps.Metrics.ObserveProvision(variantPrivileged, outcome)
	}
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error(), Err: err}
}

func validateMember(req *MemberRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if req.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	// Only a bare address is accepted; display names and angle brackets are not.
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Name != "" || addr.Address != req.Email {
		return fmt.Errorf("%w: invalid email address", ErrInvalidRequest)
	}
	if !req.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, req.Role)
	}
	if req.Password != "" && len(req.Password) < services.MinPasswordLength {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, services.ErrPasswordTooShort)
	}
	return nil
}

// IsNotFound reports whether a provisioning failure is about a missing member.
func IsNotFound(err error) bool {
	return errors.Is(err, services.ErrIdentityNotFound) || errors.Is(err, backend.ErrNotFound)
}
