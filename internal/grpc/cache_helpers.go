package grpc

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/cs-dashboard/pkg/cache"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
	// Entries older than this fraction of their TTL are refreshed in the
	// background on the next hit.
	refreshAfter = 0.5
)

// entry wraps a cached value with the time it was computed.
type entry[T any] struct {
	Value    T         `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

func (e entry[T]) stale(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(e.StoredAt) > time.Duration(float64(ttl)*refreshAfter)
}

// addTTLJitter adds up to ±15s random jitter to TTL to avoid mass expiration.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jitter := time.Duration(rand.Intn(30)-15) * time.Second
	if ttl+jitter <= 0 {
		return ttl
	}
	return ttl + jitter
}

func store[T any](c Cacher, key string, value T, ttl time.Duration, logger *zap.Logger, reason string) {
	setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttlWithJitter := addTTLJitter(ttl)
	if err := c.Set(setCtx, key, entry[T]{Value: value, StoredAt: time.Now()}, ttlWithJitter); err != nil {
		logger.Warn("cache set failed",
			zap.String("key", key),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	logger.Debug("cache populated",
		zap.String("key", key),
		zap.String("reason", reason),
		zap.Duration("ttl", ttlWithJitter))
}

func triggerBackgroundRefresh[T any](
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) {
	go func() {
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)

		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed",
					zap.String("key", key),
					zap.Error(err))
				return nil, err
			}

			store(c, key, value, ttl, logger, "refresh")
			return value, nil
		})
	}()
}

func fetchAndCacheInBackground[T any](
	ctx context.Context,
	c Cacher,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T

	value, err := fn(ctx)
	if err != nil {
		logger.Debug("fetch failed", zap.String("key", key), zap.Error(err))
		return zero, err
	}

	go store(c, key, value, ttl, logger, "miss")

	return value, nil
}

// FindAndCache implements read-through caching with singleflight. Hits older
// than half their TTL trigger a background refresh. Errors are never cached.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var cached entry[T]
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		if cached.stale(ttl, time.Now()) {
			triggerBackgroundRefresh(c, sf, key, ttl, logger, fn)
		}
		return cached.Value, nil

	case cache.IsMiss(err):
		logger.Debug("cache miss", zap.String("key", key))

	default:
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		return fetchAndCacheInBackground(ctx, c, key, ttl, logger, fn)
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}

	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}

	return value, nil
}
