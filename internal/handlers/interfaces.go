package handlers

import (
	"context"

	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/provision"
	"github.com/dimitrije/salesdesk/internal/sse"
	"github.com/google/uuid"
)

// IdentityServiceInterface defines the methods used by handlers from IdentityService
type IdentityServiceInterface interface {
	Authenticate(ctx context.Context, email, password string) (*models.Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	TouchSignIn(ctx context.Context, id uuid.UUID) error
}

// SessionServiceInterface defines the methods used by handlers from SessionService
type SessionServiceInterface interface {
	Issue(ctx context.Context, identityID uuid.UUID, email string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, identityID uuid.UUID) error
}

// SignUpInterface defines the methods used by handlers from the backend auth API
type SignUpInterface interface {
	SignUp(ctx context.Context, email, password string, metadata models.IdentityMetadata) (*models.SignUpResult, error)
	ConfirmEmail(ctx context.Context, token string) error
}

// ProfileServiceInterface defines the methods used by handlers from ProfileService
type ProfileServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error)
}

// ClientServiceInterface defines the methods used by handlers from ClientService
type ClientServiceInterface interface {
	Create(ctx context.Context, c *models.Client) (*models.Client, error)
	GetByID(ctx context.Context, scope models.ClientScope, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context, scope models.ClientScope, filter models.ClientFilter) ([]models.Client, error)
	Update(ctx context.Context, scope models.ClientScope, id uuid.UUID, upd models.ClientUpdate) (*models.Client, error)
	Delete(ctx context.Context, scope models.ClientScope, id uuid.UUID) error
	Pipeline(ctx context.Context, scope models.ClientScope) ([]models.StageSummary, error)
	OwnerSummaries(ctx context.Context) ([]models.OwnerSummary, error)
}

// TeamCacheInterface defines the methods used by handlers from TeamCache
type TeamCacheInterface interface {
	Get(ctx context.Context) ([]models.Profile, bool, error)
	Set(ctx context.Context, profiles []models.Profile) error
}

// MembersInterface defines the methods used by handlers from provision.Members
type MembersInterface interface {
	Create(ctx context.Context, req provision.MemberRequest) provision.Result
	Update(ctx context.Context, id uuid.UUID, upd provision.MemberUpdate) (*models.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) provision.Result
}

// ClientEventsInterface defines the client broadcasts used by handlers from the Hub
type ClientEventsInterface interface {
	BroadcastClientCreated(c *models.Client)
	BroadcastClientUpdated(c *models.Client)
	BroadcastClientDeleted(c *models.Client, deletedBy uuid.UUID)
}

// SSEHubInterface defines the subscription methods used by handlers from the Hub
type SSEHubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
}
