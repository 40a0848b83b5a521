package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dimitrije/salesdesk/internal/config"
	"github.com/dimitrije/salesdesk/internal/middleware"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/oauth"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/dimitrije/salesdesk/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	cfg        *config.Config
	providers  map[string]oauth.Provider
	signUp     SignUpInterface
	identities IdentityServiceInterface
	sessions   SessionServiceInterface
	logger     *slog.Logger
	states     sync.Map
	authCodes  sync.Map
}

type stateData struct {
	expiresAt time.Time
}

type authCodeData struct {
	identityID uuid.UUID
	expiresAt  time.Time
}

func NewAuthHandler(
	cfg *config.Config,
	signUp SignUpInterface,
	identities IdentityServiceInterface,
	sessions SessionServiceInterface,
	logger *slog.Logger,
) *AuthHandler {
	h := &AuthHandler{
		cfg:        cfg,
		providers:  make(map[string]oauth.Provider),
		signUp:     signUp,
		identities: identities,
		sessions:   sessions,
		logger:     logger,
	}

	if cfg.GitHub.ClientID != "" {
		h.providers["github"] = oauth.NewGitHubProvider(cfg.GitHub)
	}
	if cfg.Google.ClientID != "" {
		h.providers["google"] = oauth.NewGoogleProvider(cfg.Google)
	}

	return h
}

// CleanupStates drops expired OAuth states and exchange codes.
func (h *AuthHandler) CleanupStates() {
	now := time.Now()
	h.states.Range(func(key, value any) bool {
		if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
			h.states.Delete(key)
		}
		return true
	})
	h.authCodes.Range(func(key, value any) bool {
		if acd, ok := value.(authCodeData); ok && now.After(acd.expiresAt) {
			h.authCodes.Delete(key)
		}
		return true
	})
}

func (h *AuthHandler) SignUp(c *drift.Context) {
	var req dto.SignUpRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	role := models.Role(req.Data.Role)
	if role != "" && !role.Valid() {
		c.BadRequest("invalid role")
		return
	}

	result, err := h.signUp.SignUp(c.Request.Context(), req.Email, req.Password, models.IdentityMetadata{
		Name: strings.TrimSpace(req.Data.Name),
		Role: role,
	})
	switch {
	case errors.Is(err, services.ErrIdentityExists):
		_ = c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, services.ErrEmailRequired), errors.Is(err, services.ErrPasswordTooShort):
		c.BadRequest(err.Error())
		return
	case err != nil:
		h.logger.Error("sign-up failed", "email", req.Email, "error", err)
		c.InternalServerError("failed to sign up")
		return
	}

	resp := dto.SignUpResponse{ConfirmationSent: result.ConfirmationSent}
	if result.User != nil {
		resp.User = userResponse(result.User)
	}
	_ = c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Token(c *drift.Context) {
	var req dto.TokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	ctx := c.Request.Context()

	identity, err := h.identities.Authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized(err.Error())
		return
	case errors.Is(err, services.ErrEmailNotConfirmed):
		c.Forbidden(err.Error())
		return
	case err != nil:
		h.logger.Error("sign-in failed", "email", req.Email, "error", err)
		c.InternalServerError("failed to sign in")
		return
	}

	session, err := h.sessions.Issue(ctx, identity.ID, identity.Email)
	if err != nil {
		c.InternalServerError("failed to issue session")
		return
	}

	_ = c.JSON(http.StatusOK, tokenResponse(session, identity))
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	session, err := h.sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if errors.Is(err, services.ErrInvalidRefreshToken) {
		c.Unauthorized("invalid refresh token")
		return
	}
	if err != nil {
		c.InternalServerError("failed to refresh session")
		return
	}

	_ = c.JSON(http.StatusOK, tokenResponse(session, nil))
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		if err := h.sessions.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
			h.logger.Warn("failed to revoke refresh token", "error", err)
		}
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.sessions.RevokeAll(c.Request.Context(), userID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "all sessions logged out"})
}

// Verify confirms the email address named by a confirmation token.
func (h *AuthHandler) Verify(c *drift.Context) {
	var req dto.VerifyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Token == "" {
		c.BadRequest("token is required")
		return
	}

	err := h.signUp.ConfirmEmail(c.Request.Context(), req.Token)
	switch {
	case errors.Is(err, services.ErrIdentityNotFound):
		c.NotFound("identity not found")
		return
	case err != nil:
		c.BadRequest("invalid or expired confirmation token")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "email confirmed"})
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		c.BadRequest("unsupported provider: " + provider)
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	h.states.Store(state, stateData{expiresAt: time.Now().Add(10 * time.Minute)})

	_ = c.JSON(http.StatusOK, dto.ConsentURLResponse{
		URL: p.GetConsentURL(state),
	})
}

// Callback completes an OAuth sign-in. Only identities that already exist are
// signed in; provider accounts are never turned into new identities here.
func (h *AuthHandler) Callback(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		h.redirectWithError(c, "unsupported provider")
		return
	}

	state := c.QueryParam("state")
	if state == "" {
		h.redirectWithError(c, "missing state parameter")
		return
	}

	sd, ok := h.states.LoadAndDelete(state)
	if !ok {
		h.redirectWithError(c, "invalid or expired state")
		return
	}

	sdTyped, ok := sd.(stateData)
	if !ok || time.Now().After(sdTyped.expiresAt) {
		h.redirectWithError(c, "state expired")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		h.redirectWithError(c, "missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	userInfo, err := p.ExchangeCode(ctx, code)
	if errors.Is(err, oauth.ErrUnverifiedEmail) {
		h.redirectWithError(c, err.Error())
		return
	}
	if err != nil {
		h.logger.Warn("oauth code exchange failed", "provider", provider, "error", err)
		h.redirectWithError(c, "failed to exchange code")
		return
	}

	identity, err := h.identities.GetByEmail(ctx, userInfo.Email)
	if errors.Is(err, services.ErrIdentityNotFound) {
		h.redirectWithError(c, "no account exists for "+userInfo.Email)
		return
	}
	if err != nil {
		h.redirectWithError(c, "failed to look up account")
		return
	}

	authCode, err := oauth.GenerateState()
	if err != nil {
		h.redirectWithError(c, "failed to generate auth code")
		return
	}

	h.authCodes.Store(authCode, authCodeData{
		identityID: identity.ID,
		expiresAt:  time.Now().Add(30 * time.Second),
	})

	redirectURL := fmt.Sprintf("%s?code=%s",
		h.cfg.FrontendCallbackURL,
		url.QueryEscape(authCode),
	)

	h.renderCallbackPage(c, redirectURL, "")
}

func (h *AuthHandler) ExchangeCode(c *drift.Context) {
	var req dto.ExchangeCodeRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Code == "" {
		c.BadRequest("code is required")
		return
	}

	acd, ok := h.authCodes.LoadAndDelete(req.Code)
	if !ok {
		c.Unauthorized("invalid or expired code")
		return
	}

	codeData, ok := acd.(authCodeData)
	if !ok || time.Now().After(codeData.expiresAt) {
		c.Unauthorized("code expired")
		return
	}

	ctx := c.Request.Context()

	identity, err := h.identities.GetByID(ctx, codeData.identityID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	session, err := h.sessions.Issue(ctx, identity.ID, identity.Email)
	if err != nil {
		c.InternalServerError("failed to issue session")
		return
	}
	if err := h.identities.TouchSignIn(ctx, identity.ID); err != nil {
		h.logger.Warn("failed to record sign-in", "identity_id", identity.ID, "error", err)
	}

	_ = c.JSON(http.StatusOK, tokenResponse(session, identity))
}

func (h *AuthHandler) redirectWithError(c *drift.Context, errMsg string) {
	redirectURL := fmt.Sprintf("%s?error=%s",
		h.cfg.FrontendCallbackURL,
		url.QueryEscape(errMsg),
	)
	h.renderCallbackPage(c, redirectURL, errMsg)
}

func (h *AuthHandler) renderCallbackPage(c *drift.Context, redirectURL, errMsg string) {
	title := "Signed in"
	message := "Redirecting you to SalesDesk..."
	status := http.StatusOK
	if errMsg != "" {
		title = "Sign-in failed"
		message = errMsg
		status = http.StatusBadRequest
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%s</title>
    <style>
        body { font-family: system-ui, sans-serif; background: #f9fafb; color: #374151; padding: 40px 20px; }
        .box { max-width: 400px; margin: 0 auto; background: #fff; border: 1px solid #e5e7eb; border-radius: 8px; padding: 32px; text-align: center; }
    </style>
</head>
<body>
    <div class="box">
        <h1>%s</h1>
        <p>%s</p>
    </div>
    <script>window.location.href = %q;</script>
</body>
</html>`, html.EscapeString(title), html.EscapeString(title), html.EscapeString(message), redirectURL)

	_ = c.HTML(status, page)
}

func userResponse(identity *models.Identity) *dto.UserResponse {
	return &dto.UserResponse{
		ID:       identity.ID,
		Email:    identity.Email,
		Name:     identity.Metadata.Name,
		Provider: identity.Provider,
	}
}

func tokenResponse(session *models.Session, identity *models.Identity) dto.TokenResponse {
	resp := dto.TokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
	}
	if identity != nil {
		resp.User = userResponse(identity)
	}
	return resp
}
