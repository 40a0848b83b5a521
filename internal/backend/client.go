// Package backend is the authentication and data-storage layer the rest of the
// application talks to. A Client is built from an API key: the anon key gives a
// restricted handle that must sign in to touch profile rows it owns, the
// service_role key gives a privileged handle that bypasses row ownership and can
// administer identities.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/google/uuid"
)

var (
	ErrPrivilegedKeyRequired = errors.New("operation requires the service role key")
	ErrPolicyViolation       = errors.New("new row violates row-level security policy")
	ErrNotFound              = errors.New("row not found")
	ErrNoSession             = errors.New("auth session missing")
)

// IdentityStore is the credential side of the backend.
type IdentityStore interface {
	Create(ctx context.Context, in models.NewIdentity) (*models.Identity, error)
	Authenticate(ctx context.Context, email, password string) (*models.Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	List(ctx context.Context) ([]models.Identity, error)
	ListWithoutProfile(ctx context.Context) ([]models.Identity, error)
	Confirm(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionStore issues and revokes sessions.
type SessionStore interface {
	Issue(ctx context.Context, identityID uuid.UUID, email string) (*models.Session, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// ProfileStore is the unguarded profile table.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Insert(ctx context.Context, p *models.Profile) (*models.Profile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Profile, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Profile, error)
	UpdateScopes(ctx context.Context, id uuid.UUID, provinces, brands []string) (*models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Mailer sends the confirmation message for sign-ups that need one.
type Mailer interface {
	SendConfirmation(to, confirmURL string) error
}

// Deps are the stores shared by every Client. Handles differ only in their key
// role and their session. ConfirmURL is the link base confirmation tokens are
// appended to.
type Deps struct {
	JWT         *services.JWTService
	Identities  IdentityStore
	Sessions    SessionStore
	Profiles    ProfileStore
	Mailer      Mailer
	AutoConfirm bool
	ConfirmURL  string
	Logger      *slog.Logger
}

type Client struct {
	role services.KeyRole
	deps Deps

	mu      sync.Mutex
	session *models.Session
}

// New validates key and returns a handle with the key's role.
func New(key string, deps Deps) (*Client, error) {
	if deps.JWT == nil {
		return nil, errors.New("backend: jwt service is required")
	}
	role, err := deps.JWT.ParseAPIKey(key)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Client{role: role, deps: deps}, nil
}

func (c *Client) Role() services.KeyRole {
	return c.role
}

func (c *Client) IsPrivileged() bool {
	return c.role == services.KeyRoleService
}

func (c *Client) Auth() *AuthAPI {
	return &AuthAPI{client: c}
}

// Admin returns the identity administration API. Only privileged handles get one.
func (c *Client) Admin() (*AdminAPI, error) {
	if !c.IsPrivileged() {
		return nil, ErrPrivilegedKeyRequired
	}
	return &AdminAPI{client: c}, nil
}

func (c *Client) Profiles() *ProfileTable {
	return &ProfileTable{client: c}
}

// SetSession attaches an already established session, e.g. one carried by a
// bearer token on an HTTP request.
func (c *Client) SetSession(s *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

func (c *Client) currentSession() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) swapSession(s *models.Session) *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.session
	c.session = s
	return prev
}
