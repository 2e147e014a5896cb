// Package cache keeps fetched tile payloads close to the loader. Stores are keyed by resource URL.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Store is a payload cache
type Store interface {
	// Returns ErrCacheMiss when the key is not cached
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Name() string
	Close() error
}

type Config struct {
	Dir         string        `yaml:"dir"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisDB     int           `yaml:"redis_db"`
	TTL         time.Duration `yaml:"ttl"`
	NATSURL     string        `yaml:"nats_url"`
	NATSSubject string        `yaml:"nats_subject"`
}

// Returns true if at least one store is configured
func (c *Config) Enabled() bool {
	return c.Dir != "" || c.RedisAddr != ""
}
