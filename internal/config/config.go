package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL"`

	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`

	// AnonKey is safe to hand to any client. ServiceRoleKey bypasses the
	// profile ownership policy and must never leave the server.
	AnonKey        string `env:"ANON_KEY"`
	ServiceRoleKey string `env:"SERVICE_ROLE_KEY"`

	AuthAutoConfirm bool          `env:"AUTH_AUTO_CONFIRM" envDefault:"true"`
	AuthRateLimit   float64       `env:"AUTH_RATE_LIMIT" envDefault:"5"`
	AuthRateBurst   int           `env:"AUTH_RATE_BURST" envDefault:"10"`
	TeamCacheTTL    time.Duration `env:"TEAM_CACHE_TTL" envDefault:"5m"`

	// TrustedProxies lists the addresses or CIDRs of reverse proxies whose
	// X-Forwarded-For header is honoured. Empty means none.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	FrontendCallbackURL string `env:"FRONTEND_CALLBACK_URL" envDefault:"http://localhost:3000/auth/callback"`
	BaseURL             string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	ConfirmURL          string `env:"CONFIRM_URL" envDefault:"http://localhost:3000/auth/confirm"`
	LoginURL            string `env:"LOGIN_URL" envDefault:"http://localhost:3000/login"`

	GitHub OAuthConfig `envPrefix:"GITHUB_"`
	Google OAuthConfig `envPrefix:"GOOGLE_"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HasServiceKey reports whether privileged backend operations are available.
func (c *Config) HasServiceKey() bool {
	return c.ServiceRoleKey != ""
}
