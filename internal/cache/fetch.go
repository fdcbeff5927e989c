package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrFetch returns the cached value for key when present, otherwise it
// calls fetch synchronously, stores a successful result with ttl, and returns
// it. A fetch error leaves the key empty and is returned unchanged, so
// failures are never cached and the caller's own retry policy applies.
//
// Values coming from the in-memory store are returned as-is; values from the
// Redis tier arrive as JSON bytes and are decoded into T. A cached value that
// cannot be decoded is treated as a miss.
func GetOrFetch[T any](ctx context.Context, s Store, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := s.Get(ctx, key); ok {
		switch cached := v.(type) {
		case T:
			return cached, nil
		case []byte:
			var out T
			if err := json.Unmarshal(cached, &out); err == nil {
				return out, nil
			}
		}
	}

	out, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.Set(ctx, key, out, ttl)
	return out, nil
}
