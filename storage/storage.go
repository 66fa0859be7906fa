// Package storage persists whole values under well-known keys. It plays the
// part a browser's local storage plays for a single-page app: every write
// replaces the full value, there are no partial updates and no transactions
// spanning keys.
package storage

import (
	"context"
	"fmt"
)

// Well-known keys shared by the public and admin views.
const (
	KeyCollection = "poetryCollection"
	KeySession    = "poetAdmin"
)

//go:generate mockgen -destination=mock/mock_storage.go -package=mock github.com/eringen/poetbook/storage Storage

// Storage is a string-valued key-value store.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config selects and configures a backend for Open.
type Config struct {
	Driver string

	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	PostgresDSN string
}

// Open returns the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	var (
		s   Storage
		err error
	)
	switch cfg.Driver {
	case DriverMemory:
		s = NewMemory()
	case DriverSQLite, "":
		s, err = openSQLite(cfg.SQLitePath)
	case DriverRedis:
		s, err = openRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case DriverPostgres:
		s, err = openPostgres(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openSQLite(path string) (Storage, error) {
	s, err := NewSQLite(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openRedis(ctx context.Context, opts RedisOptions) (Storage, error) {
	r, err := NewRedis(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func openPostgres(ctx context.Context, dsn string) (Storage, error) {
	p, err := NewPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return p, nil
}
