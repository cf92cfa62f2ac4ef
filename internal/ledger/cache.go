package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache stores rendered statements in Redis with a per-party version counter.
// Invalidation bumps the counter so stale keys age out via TTL instead of
// being scanned and deleted. Concurrent loads for the same key collapse into
// one fold via singleflight.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper. A nil client degrades to loader
// pass-through, which keeps tests and cache-less deployments working.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(party PartyType, id int64) string {
	return fmt.Sprintf("ledger:ver:%s:%d", party, id)
}

func (c *Cache) version(ctx context.Context, party PartyType, id int64) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey(party, id)).Int64()
	if err == redis.Nil {
		// Missing key reads as version 0; the first invalidation INCRs it to 1.
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Key composes the statement cache key for the current party version.
func (c *Cache) Key(ctx context.Context, party PartyType, id int64, from, to time.Time) (string, error) {
	base := fmt.Sprintf("ledger:stmt:%s:%d:%d:%d", party, id, from.Unix(), to.Unix())
	if c == nil || c.client == nil {
		return base, nil
	}
	ver, err := c.version(ctx, party, id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", base, ver), nil
}

// Fetch loads a cached statement or populates it using the loader.
func (c *Cache) Fetch(ctx context.Context, key string, dest *PartyStatement, loader func(context.Context) (*PartyStatement, error)) error {
	if loader == nil {
		return errors.New("ledger: cache loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		*dest = *value
		return nil
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return value, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		*dest = *res.Val.(*PartyStatement)
		return nil
	}
}

// InvalidateCustomer bumps the customer's statement version.
func (c *Cache) InvalidateCustomer(ctx context.Context, id int64) {
	c.invalidate(ctx, PartyCustomer, id)
}

// InvalidateSupplier bumps the supplier's statement version.
func (c *Cache) InvalidateSupplier(ctx context.Context, id int64) {
	c.invalidate(ctx, PartySupplier, id)
}

func (c *Cache) invalidate(ctx context.Context, party PartyType, id int64) {
	if c == nil || c.client == nil || id == 0 {
		return
	}
	// Best effort: a failed bump only means one TTL window of staleness.
	_ = c.client.Incr(ctx, versionKey(party, id)).Err()
}
