package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for the gateway.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppName string `env:"APP_NAME" envDefault:"spacebrr"`

	// BaseURL is the public URL of this gateway, used to build the OAuth
	// callback URL handed to GitHub.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// FrontendURL is where browsers land after login when the auth flow
	// did not carry an explicit redirect target.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// GitHub OAuth application credentials.
	GitHubClientID      string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret  string `env:"GITHUB_CLIENT_SECRET"`
	GitHubWebhookSecret string `env:"GITHUB_WEBHOOK_SECRET"`

	// Stripe credentials. PriceID is the subscription price offered at
	// checkout.
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePriceID       string `env:"STRIPE_PRICE_ID"`

	// DBPath is the sqlite file backing sessions and the waitlist.
	DBPath string `env:"DB_PATH" envDefault:"./data/spacebrr.db"`

	// SpaceBinDir is the directory holding the external system's
	// provision/ledger/close_task entrypoints.
	SpaceBinDir string `env:"SPACE_BIN_DIR" envDefault:"/opt/space"`

	// WorkspaceDir is where provisioned customer repos are checked out.
	WorkspaceDir string `env:"WORKSPACE_DIR" envDefault:"/srv/spacebrr/repos"`

	// SessionRetentionDays bounds how long idle sessions are kept before
	// the nightly sweep removes them.
	SessionRetentionDays int `env:"SESSION_RETENTION_DAYS" envDefault:"30"`

	// Environment controls log format ("development" uses the console
	// writer, anything else logs JSON).
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from environment variables. A .env file is
// loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.GitHubClientID == "" {
		missing = append(missing, "GITHUB_CLIENT_ID")
	}
	if c.GitHubClientSecret == "" {
		missing = append(missing, "GITHUB_CLIENT_SECRET")
	}
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	// An empty HMAC key verifies anything, so the webhook secret is as
	// required as the API credentials.
	if c.GitHubWebhookSecret == "" {
		missing = append(missing, "GITHUB_WEBHOOK_SECRET")
	}
	if c.StripePriceID == "" {
		missing = append(missing, "STRIPE_PRICE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if c.SessionRetentionDays <= 0 {
		return fmt.Errorf("SESSION_RETENTION_DAYS must be positive, got %d", c.SessionRetentionDays)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// IsDev reports whether the gateway runs in development mode.
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}
