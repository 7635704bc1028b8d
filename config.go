package way

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/viant/afs"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/policy"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/meta"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/secret"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/tracing"
)

// EnvPrefix prefixes every environment override, e.g. WAY_STORE_KIND.
const EnvPrefix = "WAY_"

// Store kinds.
const (
	StoreMemory   = "memory"
	StoreFS       = "fs"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Lock kinds.
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config is the serialisable engine configuration. It is read from YAML or
// JSON and then overlaid with WAY_* environment variables. The zero value of
// every nested field falls back to DefaultConfig.
type Config struct {
	Store     StoreConfig     `json:"store" yaml:"store" envPrefix:"STORE_"`
	Lock      LockConfig      `json:"lock" yaml:"lock" envPrefix:"LOCK_"`
	Policy    policy.Config   `json:"policy" yaml:"policy" envPrefix:"POLICY_"`
	Directory DirectoryConfig `json:"directory" yaml:"directory" envPrefix:"DIRECTORY_"`
	Events    EventsConfig    `json:"events" yaml:"events" envPrefix:"EVENTS_"`
	Tracing   tracing.Config  `json:"tracing" yaml:"tracing" envPrefix:"TRACING_"`
	Log       LogConfig       `json:"log" yaml:"log" envPrefix:"LOG_"`
	Secrets   SecretsConfig   `json:"secrets" yaml:"secrets" envPrefix:"SECRETS_"`
}

// StoreConfig selects where obligations and attachments live. URL is a base
// directory or afs URL for fs, and a DSN for the SQL kinds. URLSecret names a
// scy secret holding URL, typically a DSN with credentials.
type StoreConfig struct {
	Kind      string `json:"kind" yaml:"kind" env:"KIND"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty" env:"URL"`
	URLSecret string `json:"urlSecret,omitempty" yaml:"urlSecret,omitempty" env:"URL_SECRET"`
}

// LockConfig selects the per-obligation lock. PasswordSecret names a scy
// secret holding the Redis password.
type LockConfig struct {
	Kind           string        `json:"kind" yaml:"kind" env:"KIND"`
	Addr           string        `json:"addr,omitempty" yaml:"addr,omitempty" env:"ADDR"`
	Password       string        `json:"password,omitempty" yaml:"password,omitempty" env:"PASSWORD"`
	PasswordSecret string        `json:"passwordSecret,omitempty" yaml:"passwordSecret,omitempty" env:"PASSWORD_SECRET"`
	DB             int           `json:"db,omitempty" yaml:"db,omitempty" env:"DB"`
	Prefix         string        `json:"prefix,omitempty" yaml:"prefix,omitempty" env:"PREFIX"`
	TTL            time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty" env:"TTL"`
}

// SecretsConfig holds the scy key used to reveal configured secrets.
type SecretsConfig struct {
	Key string `json:"key,omitempty" yaml:"key,omitempty" env:"KEY"`
}

// DirectoryConfig lists the board signers; Obligations overrides the roster
// per obligation id.
type DirectoryConfig struct {
	Signers     []string            `json:"signers,omitempty" yaml:"signers,omitempty" env:"SIGNERS" envSeparator:","`
	Obligations map[string][]string `json:"obligations,omitempty" yaml:"obligations,omitempty"`
}

// EventsConfig enables post-commit notifications. An empty vendor disables them.
type EventsConfig struct {
	Vendor  string `json:"vendor,omitempty" yaml:"vendor,omitempty" env:"VENDOR"`
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty" env:"BASE_URL"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty" env:"LEVEL"`
	Format string `json:"format,omitempty" yaml:"format,omitempty" env:"FORMAT"`
}

// DefaultConfig returns an in-process configuration.
func DefaultConfig() *Config {
	return &Config{
		Store:  StoreConfig{Kind: StoreMemory},
		Lock:   LockConfig{Kind: LockMemory},
		Policy: *policy.DefaultConfig(),
		Tracing: tracing.Config{
			ServiceName:    "way",
			ServiceVersion: "dev",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Validate returns the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Store.Kind {
	case "", StoreMemory:
	case StoreFS, StoreSQLite, StorePostgres:
		if strings.TrimSpace(c.Store.URL) == "" && c.Store.URLSecret == "" {
			return fmt.Errorf("store.url or store.urlSecret is required for store kind %q", c.Store.Kind)
		}
	default:
		return fmt.Errorf("store.kind: unsupported kind %q", c.Store.Kind)
	}
	switch c.Lock.Kind {
	case "", LockMemory:
	case LockRedis:
		if c.Lock.Addr == "" {
			return fmt.Errorf("lock.addr is required for redis locks")
		}
	default:
		return fmt.Errorf("lock.kind: unsupported kind %q", c.Lock.Kind)
	}
	switch c.Events.Vendor {
	case "", "memory":
	case "fs":
		if c.Events.BaseURL == "" {
			return fmt.Errorf("events.baseURL is required for the fs vendor")
		}
	default:
		return fmt.Errorf("events.vendor: unsupported vendor %q", c.Events.Vendor)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported format %q", c.Log.Format)
	}
	return c.Policy.Validate()
}

// LoadConfig reads the configuration at URL (any afs URL; .json is decoded
// as JSON, anything else as YAML), expands ${env.KEY} references and applies
// WAY_* environment overrides. An empty URL starts from DefaultConfig.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	cfg := DefaultConfig()
	if URL != "" {
		if err := meta.New(afs.New(), "").Load(ctx, URL, cfg); err != nil {
			return nil, err
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveSecrets returns a copy of c with secret backed settings revealed.
func (c *Config) resolveSecrets(ctx context.Context) (*Config, error) {
	ret := *c
	if ret.Store.URLSecret == "" && ret.Lock.PasswordSecret == "" {
		return &ret, nil
	}
	secrets := secret.New(ret.Secrets.Key)
	if err := secrets.Resolve(ctx, ret.Store.URLSecret, &ret.Store.URL); err != nil {
		return nil, fmt.Errorf("store.urlSecret: %w", err)
	}
	if err := secrets.Resolve(ctx, ret.Lock.PasswordSecret, &ret.Lock.Password); err != nil {
		return nil, fmt.Errorf("lock.passwordSecret: %w", err)
	}
	return &ret, nil
}
