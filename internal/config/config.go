package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	AuthModeJWT     = "jwt"
	AuthModeHeaders = "headers"
)

// Config contains configuration for the movies service and the gateway.
type Config struct {
	LogLevel string  `env:"LOG_LEVEL" envDefault:"info"`
	HTTP     HTTP    `envPrefix:"HTTP_"`
	Store    Store   `envPrefix:"STORE_"`
	Auth     Auth    `envPrefix:"AUTH_"`
	Metrics  Metrics `envPrefix:"METRICS_"`
	CORS     CORS    `envPrefix:"CORS_"`
	Avatars  Avatars `envPrefix:"AVATARS_"`
	Gateway  Gateway `envPrefix:"GATEWAY_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port              string        `env:"PORT" envDefault:"9080"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Store selects the catalog backend. Memory is the default; postgres needs a DSN.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
	DSN    string `env:"DSN"`
	Seed   bool   `env:"SEED" envDefault:"true"`
}

// Auth contains credential verification parameters.
type Auth struct {
	Mode           string `env:"MODE" envDefault:"jwt"`
	Secret         string `env:"SECRET"`
	RealmPublicKey string `env:"REALM_PUBLIC_KEY"`
	Issuer         string `env:"ISSUER"`
	ClientID       string `env:"CLIENT_ID" envDefault:"movies-app"`
}

// Metrics contains prometheus exposure parameters.
type Metrics struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Token   string `env:"TOKEN"`
}

type CORS struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

type Avatars struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://api.dicebear.com/8.x"`
}

// Gateway contains edge proxy parameters.
type Gateway struct {
	Port      string `env:"PORT" envDefault:"8080"`
	MoviesURL string `env:"MOVIES_URL" envDefault:"http://localhost:9080"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks combinations that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("STORE_DSN is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	switch c.Auth.Mode {
	case AuthModeJWT:
		if c.Auth.Secret == "" && c.Auth.RealmPublicKey == "" {
			errs = append(errs, errors.New("AUTH_SECRET or AUTH_REALM_PUBLIC_KEY is required in jwt mode"))
		}
	case AuthModeHeaders:
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode))
	}

	return errors.Join(errs...)
}

// NewStoreConfig loads only the STORE_ section, for commands that never
// serve traffic.
func NewStoreConfig() (Store, error) {
	var s Store
	if err := env.ParseWithOptions(&s, env.Options{Prefix: "STORE_"}); err != nil {
		return Store{}, fmt.Errorf("failed to parse store config: %w", err)
	}
	return s, nil
}

// NewAuthConfig loads only the AUTH_ section.
func NewAuthConfig() (Auth, error) {
	var a Auth
	if err := env.ParseWithOptions(&a, env.Options{Prefix: "AUTH_"}); err != nil {
		return Auth{}, fmt.Errorf("failed to parse auth config: %w", err)
	}
	return a, nil
}
