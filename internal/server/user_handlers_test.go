package server

import (
	"net/http"
	"testing"

	"fritter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMeAndLookup(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	var me models.UserResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/users/me", alice, nil, &me))
	assert.Equal(t, "alice", me.Username)

	var found models.UserResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/users/alice", "", nil, &found))
	assert.Equal(t, me.ID, found.ID)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/users/nobody", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/users/me", "", nil, nil))
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	var body map[string]any
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/auth/logout", alice, nil, &body))
	assert.Equal(t, "You have been logged out successfully.", body["message"])

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/users/me", alice, nil, &errBody))
	assert.Equal(t, "Token has been revoked", errBody.Error)

	var login struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "alice", "password": "hunter2"}, &login))
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/users/me", login.Token, nil, nil))
}

func TestDeleteMeRemovesEverythingOwned(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	env.addPaymentProfile(t, alice, "alice")
	createListing(t, env, alice)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/posts", alice,
		map[string]string{"content": "bye"}, nil))
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/posts", bob,
		map[string]string{"content": "still here"}, nil))

	var body map[string]any
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/users/me", alice, nil, &body))
	assert.Equal(t, "Your account has been deleted successfully.", body["message"])

	var freets []models.FreetResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/posts", "", nil, &freets))
	require.Len(t, freets, 1)
	assert.Equal(t, "bob", freets[0].Author)

	var listings []models.FreetResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/posts/listings", "", nil, &listings))
	assert.Empty(t, listings)

	var profiles []models.PaymentProfileResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/payment-profiles", "", nil, &profiles))
	assert.Empty(t, profiles)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/users/me", alice, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "alice", "password": "hunter2"}, nil))
}

func TestDeletedAccountRejectsOtherSessions(t *testing.T) {
	env := newTestEnv(t)
	first := env.signup(t, "alice")

	var login struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "alice", "password": "hunter2"}, &login))
	require.NotEmpty(t, login.Token)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/users/me", first, nil, nil))

	var body map[string]any
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/posts", login.Token,
		map[string]string{"content": "ghost post"}, &body))
	assert.Equal(t, "Account no longer exists", body["error"])
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/payment-profiles", login.Token,
		map[string]string{"paymentType": "venmo", "paymentUsername": "ghost"}, nil))

	var freets []models.FreetResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/posts", "", nil, &freets))
	assert.Empty(t, freets)
}
