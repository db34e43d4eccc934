package server

import (
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/internal/middleware"
	"chirp/internal/models"
)

func TestSignup(t *testing.T) {
	_, app := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		token, user := signupUser(t, app, "alice")
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice", user.Username)
		assert.NotZero(t, user.ID)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/signup", fiber.Map{
			"username": "bob",
		}, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("weak password", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/signup", fiber.Map{
			"username": "bob",
			"email":    "bob@example.com",
			"password": "short",
		}, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid username", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/signup", fiber.Map{
			"username": "_bad",
			"email":    "bad@example.com",
			"password": testPassword,
		}, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid email", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/signup", fiber.Map{
			"username": "bob",
			"email":    "not-an-email",
			"password": testPassword,
		}, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate email", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/signup", fiber.Map{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": testPassword,
		}, "")
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "User already exists", body.Error)
	})

	t.Run("duplicate username", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/signup", fiber.Map{
			"username": "alice",
			"email":    "alice-other@example.com",
			"password": testPassword,
		}, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	_, app := newTestServer(t)
	signupUser(t, app, "alice")

	t.Run("success", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", fiber.Map{
			"email":    "alice@example.com",
			"password": testPassword,
		}, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Token string       `json:"token"`
			User  *models.User `json:"user"`
		}
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, "alice", body.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", fiber.Map{
			"email":    "alice@example.com",
			"password": "Wr0ng-Passw0rd!",
		}, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", fiber.Map{
			"email":    "nobody@example.com",
			"password": testPassword,
		}, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice")

	t.Run("without token", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/logout", nil, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("with token", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodPost, "/api/auth/logout", nil, token)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	srv, app := newTestServer(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	srv.redis = rdb
	middleware.InitMiddleware(srv.config, rdb)

	token, _ := signupUser(t, app, "alice")

	resp := doRequest(t, app, fiber.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "blacklist:"))

	// The revoked token no longer authenticates
	resp = doRequest(t, app, fiber.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	_, app := newTestServer(t)
	signupUser(t, app, "alice")

	t.Run("no token", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodGet, "/api/users/me", nil, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := doRequest(t, app, fiber.MethodGet, "/api/users/me", nil, "not-a-token")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		srv, app := newTestServer(t)
		token, _ := signupUser(t, app, "mallory")

		srv.config.JWTSecret = "another-secret-entirely-for-tests"
		resp := doRequest(t, app, fiber.MethodGet, "/api/users/me", nil, token)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
