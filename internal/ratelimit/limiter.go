// Package ratelimit provides sliding-window request limiting with
// per-endpoint configuration carried in huma operation metadata.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// MetadataKey is the key used to store rate limit config in operation
// metadata.
const MetadataKey = "rateLimit"

// LimitConfig is one window/max pair.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// EndpointConfig is attached to huma operations via the Metadata field.
type EndpointConfig struct {
	// Limits replaces the default limits for this endpoint when non-empty.
	Limits []LimitConfig

	// Disabled skips rate limiting entirely for this endpoint.
	Disabled bool
}

// Store counts requests per key within a window.
type Store interface {
	// Record registers one request under key and returns how many requests
	// landed inside the window, including this one.
	Record(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Exceeded describes which limit a rejected request hit.
type Exceeded struct {
	Config LimitConfig
	Count  int64
}

// Limiter enforces sliding-window limits against a store.
type Limiter struct {
	store    Store
	defaults []LimitConfig
}

// NewLimiter creates a limiter with default limits applied when an endpoint
// configures none.
func NewLimiter(store Store, defaults []LimitConfig) *Limiter {
	return &Limiter{
		store:    store,
		defaults: defaults,
	}
}

// Allow checks every applicable limit for the client. A nil or empty limits
// slice falls back to the defaults. Returns the first exceeded limit, nil
// when allowed.
func (l *Limiter) Allow(ctx context.Context, clientKey string, limits []LimitConfig) (bool, *Exceeded, error) {
	if len(limits) == 0 {
		limits = l.defaults
	}

	for _, limit := range limits {
		// One counter per client and window so limits track independently.
		key := fmt.Sprintf("%s:%d", clientKey, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return false, nil, err
		}

		if count > limit.Max {
			return false, &Exceeded{Config: limit, Count: count}, nil
		}
	}

	return true, nil, nil
}
