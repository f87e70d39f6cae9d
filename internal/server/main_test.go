package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fritter/internal/config"
	"fritter/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server *Server
	app    *fiber.App
	redis  *redis.Client
	mr     *miniredis.Miniredis
}

// newTestEnv wires a full server against a private in-memory SQLite
// database and a miniredis instance.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		JWTSecret:      testJWTSecret,
		DBDriver:       "sqlite",
		SQLitePath:     fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name),
		DBMaxOpenConns: 1,
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	s.userService.WithHashCost(bcrypt.MinCost)

	app := fiber.New()
	s.SetupRoutes(app)

	return &testEnv{server: s, app: app, redis: rdb, mr: mr}
}

// do sends a JSON request and decodes the JSON response into out when out
// is non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// signup creates an account and returns its session token.
func (e *testEnv) signup(t *testing.T, username string) string {
	t.Helper()
	var body struct {
		Token string `json:"token"`
	}
	status := e.do(t, http.MethodPost, "/api/auth/signup", "",
		map[string]string{"username": username, "password": "hunter2"}, &body)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (e *testEnv) addPaymentProfile(t *testing.T, token, username string) {
	t.Helper()
	status := e.do(t, http.MethodPost, "/api/payment-profiles", token, map[string]string{
		"paymentType":     "venmo",
		"paymentUsername": username + "_pay",
	}, nil)
	require.Equal(t, http.StatusCreated, status)
}
