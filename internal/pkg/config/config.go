// Package config loads process configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendEphemeral = "ephemeral"
	BackendRemote    = "remote"
)

type Config struct {
	Port       string `env:"PORT,               default=8080"`
	Env        string `env:"ENV,                default=development"`
	LogLevel   string `env:"LOG_LEVEL,          default=info"`
	Backend    string `env:"STOREFRONT_BACKEND, default=ephemeral"`
	SessionDir string `env:"SESSION_DIR,        default=.storefront"`

	Ephemeral EphemeralConfig
	Remote    RemoteConfig
	Events    EventsConfig
}

type EphemeralConfig struct {
	LatencyScale  float64       `env:"EPHEMERAL_LATENCY_SCALE,  default=1"`
	LatencyJitter time.Duration `env:"EPHEMERAL_LATENCY_JITTER, default=0s"`
}

// RemoteConfig is only read when the remote backend is selected.
type RemoteConfig struct {
	// Endpoint is the public base URL uploaded files are served from.
	Endpoint             string `env:"REMOTE_ENDPOINT"`
	ProjectID            string `env:"REMOTE_PROJECT_ID"`
	DatabaseID           string `env:"REMOTE_DATABASE_ID"`
	ProductsCollectionID string `env:"REMOTE_PRODUCTS_COLLECTION_ID"`
	OrdersCollectionID   string `env:"REMOTE_ORDERS_COLLECTION_ID"`
	UsersCollectionID    string `env:"REMOTE_USERS_COLLECTION_ID"`
	AccountsCollectionID string `env:"REMOTE_ACCOUNTS_COLLECTION_ID"`
	BucketID             string `env:"REMOTE_BUCKET_ID"`
	CredentialsFile      string `env:"REMOTE_CREDENTIALS_FILE"`

	MongoURI      string        `env:"MONGO_URI"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB,    default=0"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL, default=168h"`
}

type EventsConfig struct {
	RabbitURI string `env:"RABBITMQ_URI"`
	Queue     string `env:"EVENTS_QUEUE,   default=orders"`
	Workers   int    `env:"EVENTS_WORKERS, default=8"`
}

// IsDevelopment reports whether ENV selects development mode.
func (c *Config) IsDevelopment() bool { return strings.EqualFold(c.Env, "development") }

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that depend on the selected backend.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendEphemeral:
		if c.Ephemeral.LatencyScale < 0 {
			errs = append(errs, errors.New("EPHEMERAL_LATENCY_SCALE must not be negative"))
		}
		if c.Ephemeral.LatencyJitter < 0 {
			errs = append(errs, errors.New("EPHEMERAL_LATENCY_JITTER must not be negative"))
		}
	case BackendRemote:
		r := c.Remote
		required := []struct{ name, value string }{
			{"REMOTE_ENDPOINT", r.Endpoint},
			{"REMOTE_PROJECT_ID", r.ProjectID},
			{"REMOTE_DATABASE_ID", r.DatabaseID},
			{"REMOTE_PRODUCTS_COLLECTION_ID", r.ProductsCollectionID},
			{"REMOTE_ORDERS_COLLECTION_ID", r.OrdersCollectionID},
			{"REMOTE_USERS_COLLECTION_ID", r.UsersCollectionID},
			{"REMOTE_ACCOUNTS_COLLECTION_ID", r.AccountsCollectionID},
			{"REMOTE_BUCKET_ID", r.BucketID},
			{"MONGO_URI", r.MongoURI},
			{"REDIS_ADDR", r.RedisAddr},
			{"SESSION_SECRET", r.SessionSecret},
		}
		for _, f := range required {
			if strings.TrimSpace(f.value) == "" {
				errs = append(errs, fmt.Errorf("%s is required for the remote backend", f.name))
			}
		}
		if r.SessionTTL <= 0 {
			errs = append(errs, errors.New("SESSION_TTL must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("STOREFRONT_BACKEND must be %q or %q, got %q", BackendEphemeral, BackendRemote, c.Backend))
	}
	if c.Events.Workers < 0 {
		errs = append(errs, errors.New("EVENTS_WORKERS must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
