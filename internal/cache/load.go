package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Load returns the cached value for key or calls fn to produce it.
//
// Concurrent misses for the same key share one call to fn. fn runs with a
// context detached from the caller's cancellation so that one caller giving
// up does not fail the others; a cancelled caller simply stops waiting.
// A result is cached only if no Clear or Invalidate happened while fn ran.
func Load[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	gen := c.generation()
	flight := key.String() + "#" + strconv.FormatUint(gen, 10)

	ch := c.group.DoChan(flight, func() (any, error) {
		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.setIfGeneration(key, v, ttl, gen)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			coalescedTotal.WithLabelValues(string(key.Kind)).Inc()
		}
		if res.Err != nil {
			return zero, res.Err
		}
		t, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache: unexpected value type %T for %s", res.Val, key)
		}
		return t, nil
	}
}
