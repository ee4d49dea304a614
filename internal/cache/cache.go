package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const (
	// WeatherTTL covers forecasts looked up by city or coordinates
	WeatherTTL = 600 * time.Second

	// AQITTL covers air quality lookups
	AQITTL = 900 * time.Second

	// AlertsTTL covers derived alert lists
	AlertsTTL = 600 * time.Second
)

// Store is a keyed byte store with per-entry expiration. An expired entry is
// reported exactly like a missing one. A ttl <= 0 stores without expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// GetJSON loads key into v. It reports false on a miss.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "failed to decode cached value for %s", key)
	}
	return true, nil
}

// SetJSON stores v under key as JSON
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode value for %s", key)
	}
	return s.Set(ctx, key, data, ttl)
}
