// Package cache stores encoded preprocessing results keyed by a digest of
// the request that produced them, so repeated identical requests skip the
// processing work.
//
// Two backends are available: an in-process LRU with per-entry expiry and a
// BadgerDB store that survives restarts. Both are safe for concurrent use.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: entry not found")

// Cache is a byte-value store for processed results.
type Cache interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Len returns the number of live entries.
	Len() int

	// Type returns the backend name ("memory" or "badger").
	Type() string

	// Close releases the backend's resources.
	Close() error
}

// Key derives a cache key from its parts. Parts are length-prefixed before
// hashing so ("ab", "c") and ("a", "bc") never collide.
func Key(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// New builds the backend selected by cfg. It returns (nil, nil) when the
// cache is disabled.
func New(cfg Config) (Cache, error) {
	cfg.ApplyDefaults()

	switch strings.ToLower(cfg.Type) {
	case TypeNone:
		return nil, nil
	case TypeMemory:
		return NewMemory(cfg.Size, cfg.TTL), nil
	case TypeBadger:
		return NewBadger(cfg.Path, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
