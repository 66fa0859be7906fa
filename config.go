package poetbook

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/eringen/poetbook/guard"
	"github.com/eringen/poetbook/storage"
)

// EnvPrefix prefixes every configuration variable, e.g. POETBOOK_ADDR.
const EnvPrefix = "POETBOOK"

// SiteConfig holds all configuration for a poetbook site.
type SiteConfig struct {
	Name        string `envconfig:"NAME"`        // Site name (default "Poetry")
	URL         string `envconfig:"URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `envconfig:"DESCRIPTION"` // Site description for RSS and meta tags
	Author      string `envconfig:"AUTHOR"`      // Author name for JSON-LD and the footer

	Addr string `envconfig:"ADDR"` // Listen address (default ":3000")

	StorageDriver string `envconfig:"STORAGE_DRIVER"` // sqlite, redis, postgres or memory (default sqlite)
	DatabasePath  string `envconfig:"DATABASE_PATH"`  // SQLite path (default "data/poetbook.db")
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN"`

	AdminPassword string `envconfig:"ADMIN_PASSWORD"` // Required: admin login secret
	SessionSecret string `envconfig:"SESSION_SECRET"` // Required: cookie signing secret
	CookieSecure  bool   `envconfig:"COOKIE_SECURE"`  // Set true for HTTPS

	SessionTimeout         time.Duration `envconfig:"SESSION_TIMEOUT"`           // default guard.DefaultTimeout (30m)
	StatusInterval         time.Duration `envconfig:"STATUS_INTERVAL"`           // client re-check period, default 60s
	LoginAttemptsPerMinute int           `envconfig:"LOGIN_ATTEMPTS_PER_MINUTE"` // 0 disables the limiter

	LogFormat string `envconfig:"LOG_FORMAT"` // text or json
	LogLevel  string `envconfig:"LOG_LEVEL"`  // logrus level name (default info)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Poetry"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StorageDriver == "" {
		c.StorageDriver = storage.DriverSQLite
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/poetbook.db"
	}
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = guard.DefaultTimeout
	}
	if c.StatusInterval <= 0 {
		c.StatusInterval = guard.DefaultRecheckInterval
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports the first missing or invalid required setting.
func (c SiteConfig) Validate() error {
	if c.AdminPassword == "" {
		return errors.New("poetbook: AdminPassword is required (POETBOOK_ADMIN_PASSWORD)")
	}
	if c.SessionSecret == "" {
		return errors.New("poetbook: SessionSecret is required (POETBOOK_SESSION_SECRET)")
	}
	switch c.StorageDriver {
	case storage.DriverMemory, storage.DriverSQLite, storage.DriverRedis, storage.DriverPostgres:
	default:
		return fmt.Errorf("poetbook: unknown storage driver %q", c.StorageDriver)
	}
	return nil
}

// StorageConfig translates the site settings for storage.Open.
func (c SiteConfig) StorageConfig() storage.Config {
	return storage.Config{
		Driver:        c.StorageDriver,
		SQLitePath:    c.DatabasePath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   "poetbook:",
		PostgresDSN:   c.PostgresDSN,
	}
}

// LoadConfig reads configuration from the environment. Each existing file in
// envFiles (default ".env") is loaded first without overriding variables that
// are already set.
func LoadConfig(envFiles ...string) (SiteConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return SiteConfig{}, fmt.Errorf("poetbook: load %s: %w", f, err)
		}
	}
	var cfg SiteConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("poetbook: read environment: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// NewLogger builds a logrus logger from the LogFormat and LogLevel settings.
func (c SiteConfig) NewLogger() (*logrus.Logger, error) {
	l := logrus.New()
	switch c.LogFormat {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("poetbook: unknown log format %q", c.LogFormat)
	}
	lvl := c.LogLevel
	if lvl == "" {
		lvl = "info"
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		return nil, fmt.Errorf("poetbook: %w", err)
	}
	l.SetLevel(level)
	return l, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the application logger. The default discards output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithStorage supplies an already-open storage backend instead of opening
// one from the config. The App does not close it.
func WithStorage(kv storage.Storage) Option {
	return func(a *App) {
		a.kv = kv
	}
}

// WithClock overrides the time source used for sessions and new poems.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
