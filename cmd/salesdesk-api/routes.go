package main

import (
	"net/http"

	"github.com/dimitrije/salesdesk/internal/config"
	"github.com/dimitrije/salesdesk/internal/handlers"
	authmw "github.com/dimitrije/salesdesk/internal/middleware"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

type routeHandlers struct {
	auth    *handlers.AuthHandler
	profile *handlers.ProfileHandler
	team    *handlers.TeamHandler
	client  *handlers.ClientHandler
	sse     *handlers.SSEHandler
}

// newRouter builds the /api/v1 route table. Static and parameter routes never
// share a segment under the same method.
func newRouter(
	cfg *config.Config,
	h routeHandlers,
	jwtService *services.JWTService,
	profiles authmw.ProfileReader,
	rateLimiter *authmw.RateLimiter,
) http.Handler {
	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", authmw.APIKeyHeader},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Use(rateLimiter.Middleware())
	auth.Use(authmw.APIKey(jwtService))
	auth.Post("/signup", h.auth.SignUp)
	auth.Post("/token", h.auth.Token)
	auth.Post("/refresh", h.auth.RefreshToken)
	auth.Post("/logout", h.auth.Logout)
	auth.Post("/verify", h.auth.Verify)
	auth.Post("/exchange", h.auth.ExchangeCode)
	auth.Get("/:provider/consent", h.auth.GetConsentURL)
	auth.Get("/:provider/callback", h.auth.Callback)

	authenticated := api.Group("")
	authenticated.Use(authmw.Auth(jwtService))
	authenticated.Post("/auth/logout-all", h.auth.LogoutAll)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))
	protected.Use(authmw.ActiveProfile(profiles))

	protected.Get("/profiles/me", h.profile.GetMe)
	protected.Patch("/profiles/me", h.profile.UpdateMe)

	protected.Get("/clients", h.client.List)
	protected.Post("/clients", h.client.Create)
	protected.Get("/clients/:id", h.client.Get)
	protected.Patch("/clients/:id", h.client.Update)
	protected.Delete("/clients/:id", h.client.Delete)
	protected.Get("/pipeline", h.client.Pipeline)

	protected.Get("/events", h.sse.Connect)

	admin := api.Group("")
	admin.Use(authmw.Auth(jwtService))
	admin.Use(authmw.ActiveProfile(profiles))
	admin.Use(authmw.RequireRole(models.RoleAdmin))

	admin.Get("/team", h.team.List)
	admin.Post("/team", h.team.Create)
	admin.Patch("/team/:id", h.team.Update)
	admin.Delete("/team/:id", h.team.Delete)
	admin.Get("/reports/owners", h.client.OwnerReport)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return app
}
