package repository

import (
	"context"
	"testing"

	"fritter/internal/cache"
	"fritter/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestFreetRepository_CachedListsKeepAuthorAndListing(t *testing.T) {
	mr := setupCache(t)
	db := setupSQLite(t)
	repo := NewFreetRepository(db, 0)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	freet := newMerchantFreet(alice, seedProfile(t, db, alice))
	require.NoError(t, repo.Create(ctx, freet))

	first, err := repo.ListMerchant(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.True(t, mr.Exists(cache.MerchantListKey))

	// Served from Redis from here on.
	require.NoError(t, db.Exec("UPDATE freets SET content = ? WHERE id = ?", "changed behind the cache", freet.ID).Error)
	cached, err := repo.ListMerchant(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)

	got := cached[0]
	assert.Equal(t, "selling my bike", got.Content)
	assert.Equal(t, "alice", got.Author.Username)
	assert.Equal(t, models.FreetTypeMerchant, got.FreetType)
	assert.True(t, got.Expiration.Equal(first[0].Expiration))
	require.NotNil(t, got.Listing)
	assert.Equal(t, "bike", got.Listing.Name)
	assert.Equal(t, int64(120), got.Listing.Price)
	assert.Equal(t, models.ListingForSale, got.Listing.Status)
	assert.Equal(t, "alice_pay", got.Listing.PaymentUsername)
	assert.Equal(t, "venmo", got.Listing.PaymentType)
}

func TestFreetRepository_WritesInvalidateCachedLists(t *testing.T) {
	mr := setupCache(t)
	db := setupSQLite(t)
	repo := NewFreetRepository(db, 0)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	freet := newMerchantFreet(alice, seedProfile(t, db, alice))
	require.NoError(t, repo.Create(ctx, freet))

	_, err := repo.List(ctx)
	require.NoError(t, err)
	_, err = repo.ListMerchant(ctx)
	require.NoError(t, err)
	_, err = repo.ListByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	for _, key := range []string{cache.FreetListKey, cache.MerchantListKey, cache.AuthorFreetsKey(alice.ID)} {
		require.True(t, mr.Exists(key), key)
	}

	stored, err := repo.GetByID(ctx, freet.ID)
	require.NoError(t, err)
	require.NoError(t, stored.Listing.TransitionTo(models.ListingSold, bob))
	stored.Touch(testNow)
	require.NoError(t, repo.UpdateWithListing(ctx, stored, models.ListingForSale))

	for _, key := range []string{cache.FreetListKey, cache.MerchantListKey, cache.AuthorFreetsKey(alice.ID)} {
		assert.False(t, mr.Exists(key), key)
	}

	listings, err := repo.ListMerchant(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, models.ListingSold, listings[0].Listing.Status)
	assert.Equal(t, "bob", listings[0].Listing.BuyerUsername)

	byAlice, err := repo.ListByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, byAlice, 1)
	assert.Equal(t, models.ListingSold, byAlice[0].Listing.Status)

	require.NoError(t, repo.Delete(ctx, stored))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
