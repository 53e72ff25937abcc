// Package kv provides the key-value persistence port used by the client
// state containers, with memory, file, Redis and PostgreSQL backends.
package kv

import (
	"context"
	"fmt"
	"io"
)

// Store persists opaque values under string keys
type Store interface {
	// Load returns the value stored under key. ok is false when the key is absent.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Save replaces the value stored under key
	Save(ctx context.Context, key string, value []byte) error
}

// Backend is a Store that holds external resources
type Backend interface {
	Store
	io.Closer

	// Type returns the backend name
	Type() string

	// HealthCheck checks if the backend is reachable
	HealthCheck(ctx context.Context) error

	// Purge removes every key held for this installation and returns how
	// many were removed
	Purge(ctx context.Context) (int, error)
}

// BaseBackend provides common functionality for backends
type BaseBackend struct {
	backendType string
}

// Type returns the backend type
func (b *BaseBackend) Type() string {
	return b.backendType
}

// Options selects and configures a backend
type Options struct {
	Backend   string
	Dir       string
	Namespace string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	PostgresDSN string
}

// Open creates the backend named by opts.Backend
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, opts.RedisAddress, opts.RedisPassword, opts.RedisDB, opts.Namespace)
	case "postgres":
		return NewPostgresStore(ctx, opts.PostgresDSN, opts.Namespace)
	default:
		return nil, fmt.Errorf("unknown state backend: %q", opts.Backend)
	}
}
