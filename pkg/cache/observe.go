package cache

import (
	"context"
	"time"

	"github.com/matzehuels/gridplot/pkg/observability"
)

// Observed reports cache traffic to the registered cache hooks.
type Observed struct {
	Cache
}

// Observe wraps c. Wrapping an Observed cache returns it unchanged.
func Observe(c Cache) Cache {
	if o, ok := c.(*Observed); ok {
		return o
	}
	return &Observed{Cache: c}
}

func (o *Observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, ok, err
}

func (o *Observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}
