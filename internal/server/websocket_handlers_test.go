package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fritter/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upgradeRequest(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	return req
}

func TestWSTicketAuth(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	s := &Server{config: &config.Config{JWTSecret: testJWTSecret}, redis: rdb}
	app := fiber.New()
	app.Get("/api/ws", s.WSTicketAuth(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": currentUserID(c)})
	})

	ctx := context.Background()

	t.Run("ticket identifies the user once", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, wsTicketPrefix+"t-1", 123, time.Minute).Err())

		resp, err := app.Test(upgradeRequest("/api/ws?ticket=t-1"))
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(123), body["userID"])

		exists, err := rdb.Exists(ctx, wsTicketPrefix+"t-1").Result()
		require.NoError(t, err)
		assert.Zero(t, exists, "ticket should be consumed")

		resp, err = app.Test(upgradeRequest("/api/ws?ticket=t-1"))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired ticket", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, wsTicketPrefix+"t-2", 5, time.Second).Err())
		mr.FastForward(2 * time.Second)

		resp, err := app.Test(upgradeRequest("/api/ws?ticket=t-2"))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("no ticket is an anonymous watcher", func(t *testing.T) {
		resp, err := app.Test(upgradeRequest("/api/ws"))
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(0), body["userID"])
	})

	t.Run("plain HTTP is rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ws", nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
	})

	t.Run("tickets need redis", func(t *testing.T) {
		noRedis := &Server{config: s.config}
		app := fiber.New()
		app.Get("/api/ws", noRedis.WSTicketAuth(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

		resp, err := app.Test(upgradeRequest("/api/ws?ticket=t-3"))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestIssueWSTicket(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	var body struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/ws/ticket", alice, nil, &body))
	assert.NotEmpty(t, body.Ticket)
	assert.Equal(t, 30, body.ExpiresIn)

	var me struct {
		ID string `json:"_id"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/users/me", alice, nil, &me))
	stored, err := env.mr.Get(wsTicketPrefix + body.Ticket)
	require.NoError(t, err)
	assert.Equal(t, me.ID, stored)
	assert.Equal(t, wsTicketTTL, env.mr.TTL(wsTicketPrefix+body.Ticket))

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/ws/ticket", "", nil, nil))
}
