package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/salesdesk/internal/backend"
	"github.com/dimitrije/salesdesk/internal/cache"
	"github.com/dimitrije/salesdesk/internal/config"
	"github.com/dimitrije/salesdesk/internal/database"
	"github.com/dimitrije/salesdesk/internal/handlers"
	"github.com/dimitrije/salesdesk/internal/logger"
	"github.com/dimitrije/salesdesk/internal/metrics"
	authmw "github.com/dimitrije/salesdesk/internal/middleware"
	"github.com/dimitrije/salesdesk/internal/provision"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/dimitrije/salesdesk/internal/sse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx := context.Background()
	m := metrics.New(prometheus.DefaultRegisterer)

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal(log, "failed to connect to database", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		fatal(log, "failed to run migrations", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, team listing is served uncached", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	teamCache := cache.NewTeamCache(redisClient, cfg.TeamCacheTTL, m)

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	identityService := services.NewIdentityService(db)
	sessionService := services.NewSessionService(db, jwtService)
	profileService := services.NewProfileService(db)
	clientService := services.NewClientService(db)
	emailService := services.NewEmailService(cfg.SMTP)

	deps := backend.Deps{
		JWT:         jwtService,
		Identities:  identityService,
		Sessions:    sessionService,
		Profiles:    profileService,
		Mailer:      emailService,
		AutoConfirm: cfg.AuthAutoConfirm,
		ConfirmURL:  cfg.ConfirmURL,
		Logger:      log,
	}

	anon, err := backend.New(cfg.AnonKey, deps)
	if err != nil {
		fatal(log, "invalid ANON_KEY", err)
	}

	var privileged *backend.Client
	if cfg.HasServiceKey() {
		privileged, err = backend.New(cfg.ServiceRoleKey, deps)
		if err != nil {
			fatal(log, "invalid SERVICE_ROLE_KEY", err)
		}
		if !privileged.IsPrivileged() {
			fatal(log, "SERVICE_ROLE_KEY is not a service_role key", errors.New("restricted key"))
		}
	} else {
		log.Warn("SERVICE_ROLE_KEY not set, team provisioning is disabled")
	}

	hub := sse.NewHub()
	go hub.Run()

	members := provision.MembersFor(privileged, provision.MemberDeps{
		Cache:    teamCache,
		Events:   hub,
		Mailer:   emailService,
		LoginURL: cfg.LoginURL,
		Logger:   log,
		Metrics:  m,
	})

	proxies, err := authmw.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		fatal(log, "invalid TRUSTED_PROXIES", err)
	}
	rateLimiter := authmw.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, m).WithTrustedProxies(proxies)

	authHandler := handlers.NewAuthHandler(cfg, anon.Auth(), identityService, sessionService, log)

	app := newRouter(cfg, routeHandlers{
		auth:    authHandler,
		profile: handlers.NewProfileHandler(profileService),
		team:    handlers.NewTeamHandler(profileService, teamCache, members, log),
		client:  handlers.NewClientHandler(clientService, hub, log),
		sse:     handlers.NewSSEHandler(hub, m),
	}, jwtService, profileService, rateLimiter)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", app)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           authmw.Instrument(mux, log, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := sessionService.CleanupExpired(context.Background()); err != nil {
				log.Warn("failed to clean up expired sessions", "error", err)
			}
			rateLimiter.Cleanup()
			authHandler.CleanupStates()
		}
	}()

	go func() {
		log.Info("server starting", "addr", srv.Addr, "env", cfg.Env, "privileged", members.Configured())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
