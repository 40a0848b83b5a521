package backend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dimitrije/salesdesk/internal/models"
)

type AuthAPI struct {
	client *Client
}

// SignUp registers an email/password identity. When the backend does not
// auto-confirm, a confirmation mail is sent and the result carries no user.
func (a *AuthAPI) SignUp(ctx context.Context, email, password string, metadata models.IdentityMetadata) (*models.SignUpResult, error) {
	deps := a.client.deps

	identity, err := deps.Identities.Create(ctx, models.NewIdentity{
		Email:     email,
		Password:  password,
		Metadata:  metadata,
		Provider:  models.ProviderEmail,
		Confirmed: deps.AutoConfirm,
	})
	if err != nil {
		return nil, err
	}

	if deps.AutoConfirm {
		return &models.SignUpResult{User: identity}, nil
	}

	token, err := deps.JWT.GenerateConfirmationToken(identity.ID)
	if err != nil {
		return nil, err
	}
	if deps.Mailer != nil {
		link := deps.ConfirmURL + "?token=" + url.QueryEscape(token)
		if err := deps.Mailer.SendConfirmation(identity.Email, link); err != nil {
			deps.Logger.Warn("failed to send confirmation email", "email", identity.Email, "error", err)
		}
	}
	return &models.SignUpResult{ConfirmationSent: true}, nil
}

// SignInWithPassword authenticates and makes the new session the handle's
// session. A previous session on the handle is replaced, not revoked.
func (a *AuthAPI) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	deps := a.client.deps

	identity, err := deps.Identities.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	session, err := deps.Sessions.Issue(ctx, identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	a.client.swapSession(session)
	return session, nil
}

// SignOut revokes the handle's session. Without a session it does nothing.
func (a *AuthAPI) SignOut(ctx context.Context) error {
	session := a.client.swapSession(nil)
	if session == nil || session.RefreshToken == "" {
		return nil
	}
	return a.client.deps.Sessions.Revoke(ctx, session.RefreshToken)
}

func (a *AuthAPI) Session() *models.Session {
	return a.client.currentSession()
}

// ConfirmEmail marks the identity named by a confirmation token as confirmed.
func (a *AuthAPI) ConfirmEmail(ctx context.Context, token string) error {
	id, err := a.client.deps.JWT.ValidateConfirmationToken(token)
	if err != nil {
		return err
	}
	return a.client.deps.Identities.Confirm(ctx, id)
}
