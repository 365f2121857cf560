package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips values", func(t *testing.T) {
		c := NewMemoryCache()

		if err := c.SetWithTTL(ctx, "details:0xabc:0x1", cachedValue{Name: "a", Count: 2}, time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got cachedValue
		if err := c.Get(ctx, "details:0xabc:0x1", &got); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "a" || got.Count != 2 {
			t.Errorf("unexpected value %+v", got)
		}
	})

	t.Run("missing key is a miss", func(t *testing.T) {
		var got cachedValue
		if err := NewMemoryCache().Get(ctx, "nope", &got); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("entries expire", func(t *testing.T) {
		c := NewMemoryCache()
		now := time.Unix(1_700_000_000, 0)
		c.now = func() time.Time { return now }

		_ = c.SetWithTTL(ctx, "k", cachedValue{Name: "a"}, time.Minute)
		now = now.Add(time.Minute)

		var got cachedValue
		if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss after ttl, got %v", err)
		}
	})

	t.Run("delete pattern only drops matching keys", func(t *testing.T) {
		c := NewMemoryCache()
		_ = c.SetWithTTL(ctx, "details:0xabc:0x1", cachedValue{}, 0)
		_ = c.SetWithTTL(ctx, "details:0xabc:0x2", cachedValue{}, 0)
		_ = c.SetWithTTL(ctx, "details:0xdef:0x1", cachedValue{}, 0)

		if err := c.DeletePattern(ctx, "details:0xabc:*"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got cachedValue
		if err := c.Get(ctx, "details:0xabc:0x2", &got); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("expected key to be deleted, got %v", err)
		}
		if err := c.Get(ctx, "details:0xdef:0x1", &got); err != nil {
			t.Errorf("expected other wallet to survive, got %v", err)
		}
	})

	t.Run("delete removes a single key", func(t *testing.T) {
		c := NewMemoryCache()
		_ = c.SetWithTTL(ctx, "k", cachedValue{}, 0)
		_ = c.Delete(ctx, "k")

		var got cachedValue
		if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss, got %v", err)
		}
	})
}
