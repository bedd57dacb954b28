// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

// ProviderCredentials are the OAuth client credentials registered with one provider.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

// Config holds everything the server needs at startup.
type Config struct {
	Port     int    `env:"PORT"      envDefault:"8080"`
	AppEnv   string `env:"APP_ENV"   envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// OAuth redirect URIs are built from whichever of these matches AppEnv.
	PublicURLProduction string `env:"PUBLIC_URL_PRODUCTION" envDefault:"https://rejaka.me"`
	PublicURLLocal      string `env:"PUBLIC_URL_LOCAL"      envDefault:"http://localhost:3000"`

	// SessionSecret signs the guestbook_user cookie. Rotate it to log everyone out.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// Hosts, besides the request's own host, that post-login redirects may target.
	RedirectAllowedHosts []string `env:"REDIRECT_ALLOWED_HOSTS" envSeparator:","`
	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:","`

	Store    string `env:"STORE"     envDefault:"sqlite"`
	MongoURI string `env:"MONGO_URI"`
	MongoDB  string `env:"MONGO_DB"  envDefault:"portfolio"`
	DBPath   string `env:"DB_PATH"   envDefault:"data/portfolio.db"`

	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	GitHubClientID      string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret  string `env:"GITHUB_CLIENT_SECRET"`
	GoogleClientID      string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string `env:"GOOGLE_CLIENT_SECRET"`
}

// Load parses the process environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values env.Parse cannot check by itself.
func (c Config) Validate() error {
	var errs []error

	if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}
	switch c.AppEnv {
	case EnvProduction, EnvDevelopment:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvProduction, EnvDevelopment, c.AppEnv))
	}
	switch c.Store {
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE=mongo"))
		}
	case StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreMongo, StoreSQLite, c.Store))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c Config) Production() bool {
	return c.AppEnv == EnvProduction
}

// BaseURL is the public origin of the site for the current environment,
// without a trailing slash.
func (c Config) BaseURL() string {
	if c.Production() {
		return strings.TrimRight(c.PublicURLProduction, "/")
	}
	return strings.TrimRight(c.PublicURLLocal, "/")
}

// Credentials returns the OAuth client registered for provider, keyed by the
// provider names used in /api/auth/{provider}.
func (c Config) Credentials() map[string]ProviderCredentials {
	return map[string]ProviderCredentials{
		"discord": {ClientID: c.DiscordClientID, ClientSecret: c.DiscordClientSecret},
		"github":  {ClientID: c.GitHubClientID, ClientSecret: c.GitHubClientSecret},
		"google":  {ClientID: c.GoogleClientID, ClientSecret: c.GoogleClientSecret},
	}
}

// SlogLevel maps LOG_LEVEL onto a slog.Level, defaulting to Info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
