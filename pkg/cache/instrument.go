package cache

import (
	"context"
	"time"

	"github.com/matzehuels/routetrace/pkg/observability"
)

type instrumented struct {
	Cache
	keyType string
}

// Instrument reports hits, misses and writes of c through
// observability.Cache(), labelled with keyType.
func Instrument(c Cache, keyType string) Cache {
	return instrumented{Cache: c, keyType: keyType}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, ok, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	}
	return err
}
