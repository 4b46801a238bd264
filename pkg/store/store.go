// Package store is the persistent key-value adapter behind the session token,
// the cart, favourites and preferences. It plays the role browser local
// storage plays for a web storefront: flat string keys, whole-value reads and
// writes, last write wins.
//
// Five drivers are available:
//   - "memory": process-local map (tests, throwaway sessions)
//   - "file"  : one file per key under a directory (default)
//   - "redis" : a Redis instance shared by several client processes
//   - "sql"   : a key/value table through GORM (sqlite, postgres, mysql, sqlserver)
//   - "s3"    : objects under a prefix in an S3-compatible bucket
//
// Quick start:
//
//	s, err := store.Open(ctx) // driver chosen by STORE_DRIVER
//	_ = store.SetJSON(ctx, s, "cart", items)
//	var items []cart.Item
//	err = store.GetJSON(ctx, s, "cart", &items)
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been set or was
// removed.
var ErrNotFound = errors.New("store: key not found")

// Store is the driver interface. Implementations must be safe for
// concurrent use.
type Store interface {
	// Name identifies the driver in logs and metrics.
	Name() string

	// Get returns the raw value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Closer is implemented by drivers holding connections.
type Closer interface {
	Close() error
}

// GetJSON reads key and unmarshals it into dest. A missing key returns
// ErrNotFound; undecodable data returns a wrapped decode error.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("store: decode %q: %w", key, err)
	}
	return nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// GetString reads a plain string value. Missing keys yield "" and
// ErrNotFound.
func GetString(ctx context.Context, s Store, key string) (string, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SetString stores a plain string value.
func SetString(ctx context.Context, s Store, key, value string) error {
	return s.Set(ctx, key, []byte(value))
}

// Close releases the driver's connections, if any.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
