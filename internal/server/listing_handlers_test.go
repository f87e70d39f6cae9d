package server

import (
	"net/http"
	"testing"

	"fritter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createListing(t *testing.T, env *testEnv, token string) models.FreetResponse {
	t.Helper()
	var created freetEnvelope
	status := env.do(t, http.MethodPost, "/api/posts", token, map[string]any{
		"content":      "selling my bike",
		"typeFreet":    "merchant",
		"listingName":  "bike",
		"listingPrice": "120 dollars",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotNil(t, created.Freet.Listing)
	return created.Freet
}

func TestPurchaseListing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	carol := env.signup(t, "carol")
	env.addPaymentProfile(t, alice, "alice")

	listing := createListing(t, env, alice)
	assert.Equal(t, models.ListingForSale, listing.Listing.ListingStatus)
	assert.Equal(t, int64(120), listing.Listing.ListingPrice)
	assert.Equal(t, "none", listing.Listing.ListingLocation)
	assert.Equal(t, "alice_pay", listing.Listing.PaymentUsername)
	path := "/api/posts/listings/purchase/" + listing.ID

	var errBody models.ErrorResponse
	status := env.do(t, http.MethodPatch, path, bob, nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status, "buyer without fritterPay")
	assert.Equal(t, models.CodePreconditionFailed, errBody.Code)

	status = env.do(t, http.MethodPatch, path, alice, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status, "seller buying own listing")

	env.addPaymentProfile(t, bob, "bob")
	var bought freetEnvelope
	status = env.do(t, http.MethodPatch, path, bob, nil, &bought)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "merchantFreet was successfully purchased", bought.Message)
	require.NotNil(t, bought.Freet.Listing)
	assert.Equal(t, models.ListingSold, bought.Freet.Listing.ListingStatus)
	assert.Equal(t, "bob", bought.Freet.Listing.Buyer)

	env.addPaymentProfile(t, carol, "carol")
	status = env.do(t, http.MethodPatch, path, carol, nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status, "listing already sold")
	assert.Equal(t, models.CodePreconditionFailed, errBody.Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPatch, "/api/posts/listings/purchase/999", bob, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPatch, path, "", nil, nil))
}

func TestGetListings_FiltersByStatusAndSeller(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	env.addPaymentProfile(t, alice, "alice")
	env.addPaymentProfile(t, bob, "bob")

	sold := createListing(t, env, alice)
	createListing(t, env, alice)
	createListing(t, env, bob)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/posts", alice,
		map[string]string{"content": "not for sale"}, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/api/posts/listings/purchase/"+sold.ID, bob, nil, nil))

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all merchant freets", "", 3},
		{"explicit all", "?listingStatus=all", 3},
		{"for sale", "?listingStatus=forsale", 2},
		{"sold", "?listingStatus=sold", 1},
		{"one seller", "?author=alice", 2},
		{"seller and status", "?author=alice&listingStatus=forsale", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []models.FreetResponse
			status := env.do(t, http.MethodGet, "/api/posts/listings"+tt.query, "", nil, &got)
			require.Equal(t, http.StatusOK, status)
			assert.Len(t, got, tt.want)
			for _, f := range got {
				assert.Equal(t, models.FreetTypeMerchant, f.FreetType)
			}
		})
	}

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/posts/listings?listingStatus=gone", "", nil, &errBody))
	assert.Equal(t, models.CodeValidation, errBody.Code)
}

func TestUpdateListing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	env.addPaymentProfile(t, alice, "alice")
	listing := createListing(t, env, alice)
	path := "/api/posts/" + listing.ID + "/listing"

	var updated freetEnvelope
	status := env.do(t, http.MethodPatch, path, alice, map[string]any{"field": "listingPrice", "value": 95}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(95), updated.Freet.Listing.ListingPrice)

	status = env.do(t, http.MethodPatch, path, alice, map[string]any{"field": "listingLocation", "value": "Cambridge"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cambridge", updated.Freet.Listing.ListingLocation)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPatch, path, bob, map[string]any{"field": "listingName", "value": "mine"}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPatch, path, alice, map[string]any{"field": "color", "value": "red"}, nil))

	status = env.do(t, http.MethodPatch, path, alice, map[string]any{"field": "listingStatus", "value": "deactivated"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.ListingDeactivated, updated.Freet.Listing.ListingStatus)

	var errBody models.ErrorResponse
	status = env.do(t, http.MethodPatch, path, alice, map[string]any{"field": "listingName", "value": "bike v2"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status, "deactivated listings are frozen")
}
