package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
		mr.Close()
	})
	return mr
}

type item struct {
	Name string `json:"name"`
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()
	calls := 0
	fetch := func(dest *[]item) func() error {
		return func() error {
			calls++
			*dest = []item{{Name: "bike"}}
			return nil
		}
	}

	var first []item
	require.NoError(t, Aside(ctx, FreetListKey, &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(FreetListKey))

	var second []item
	require.NoError(t, Aside(ctx, FreetListKey, &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	var dest []item
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("k"))
}

func TestAside_CorruptEntryRefetches(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var dest item
	require.NoError(t, Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest = item{Name: "fresh"}
		return nil
	}))
	assert.Equal(t, "fresh", dest.Name)
}

func TestAside_NoClient(t *testing.T) {
	SetClient(nil)
	var dest item
	require.NoError(t, Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest.Name = "db"
		return nil
	}))
	assert.Equal(t, "db", dest.Name)
}

func TestInvalidateFreets(t *testing.T) {
	mr := setupMiniredis(t)
	for _, k := range []string{FreetListKey, MerchantListKey, AuthorFreetsKey(3), AuthorFreetsKey(4)} {
		require.NoError(t, mr.Set(k, "[]"))
	}

	InvalidateFreets(context.Background(), 3)

	assert.False(t, mr.Exists(FreetListKey))
	assert.False(t, mr.Exists(MerchantListKey))
	assert.False(t, mr.Exists(AuthorFreetsKey(3)))
	assert.True(t, mr.Exists(AuthorFreetsKey(4)))
}

func TestAside_InvalidationDuringFetchIsNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	var stale []item
	require.NoError(t, Aside(ctx, FreetListKey, &stale, time.Minute, func() error {
		stale = []item{{Name: "old"}}
		// A writer commits and invalidates while the rows are in hand.
		InvalidateFreets(ctx)
		return nil
	}))
	assert.Equal(t, []item{{Name: "old"}}, stale)
	assert.False(t, mr.Exists(FreetListKey))

	var fresh []item
	require.NoError(t, Aside(ctx, FreetListKey, &fresh, time.Minute, func() error {
		fresh = []item{{Name: "new"}}
		return nil
	}))
	assert.True(t, mr.Exists(FreetListKey))

	var cached []item
	found, err := GetJSON(ctx, FreetListKey, &cached)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []item{{Name: "new"}}, cached)
}

func TestInvalidate_BumpsGeneration(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	Invalidate(ctx, "k")
	Invalidate(ctx, "k")

	gen, err := mr.Get(generationKey("k"))
	require.NoError(t, err)
	assert.Equal(t, "2", gen)
	assert.Positive(t, mr.TTL(generationKey("k")))
}
