package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchPopulatesOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.Key(ctx, PartyCustomer, 7, time.Time{}, day(10))
	require.NoError(t, err)

	calls := 0
	loader := func(ctx context.Context) (*PartyStatement, error) {
		calls++
		return &PartyStatement{
			Party:     PartyRef{Type: PartyCustomer, ID: 7, Name: "Gupta Stores"},
			Statement: Statement{Closing: 42},
		}, nil
	}

	var first PartyStatement
	require.NoError(t, cache.Fetch(ctx, key, &first, loader))
	require.Equal(t, 1, calls)
	require.InDelta(t, 42, first.Statement.Closing, 1e-9)

	var second PartyStatement
	require.NoError(t, cache.Fetch(ctx, key, &second, loader))
	require.Equal(t, 1, calls, "second fetch must be served from cache")
	require.Equal(t, first.Party, second.Party)
}

func TestCacheInvalidateChangesKey(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.Key(ctx, PartySupplier, 3, time.Time{}, day(10))
	require.NoError(t, err)

	cache.InvalidateSupplier(ctx, 3)

	after, err := cache.Key(ctx, PartySupplier, 3, time.Time{}, day(10))
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}
