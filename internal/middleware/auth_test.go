package middleware

import (
	"context"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/internal/config"
)

const testSecret = "middleware-test-secret-key-123456"

func initTestMiddleware(t *testing.T, redisClient *redis.Client) {
	t.Helper()
	InitMiddleware(&config.Config{JWTSecret: testSecret}, redisClient)
}

type tokenOpts struct {
	secret string
	issuer string
	jti    string
	exp    time.Time
}

func makeToken(t *testing.T, userID uint, opts tokenOpts) string {
	t.Helper()

	if opts.secret == "" {
		opts.secret = testSecret
	}
	if opts.issuer == "" {
		opts.issuer = "chirp-api"
	}
	if opts.exp.IsZero() {
		opts.exp = time.Now().Add(time.Hour)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": opts.issuer,
		"aud": "chirp-client",
		"exp": opts.exp.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}
	if opts.jti != "" {
		claims["jti"] = opts.jti
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(opts.secret))
	require.NoError(t, err)
	return signed
}

// echoUserApp returns the userID local so tests can observe what the
// middleware resolved.
func echoUserApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/", handler, func(c *fiber.Ctx) error {
		uid, _ := c.Locals("userID").(uint)
		return c.JSON(fiber.Map{"user_id": uid})
	})
	return app
}

func requestStatus(t *testing.T, app *fiber.App, path, authHeader string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestAuthRequired(t *testing.T) {
	initTestMiddleware(t, nil)
	app := echoUserApp(AuthRequired)

	t.Run("valid token", func(t *testing.T) {
		token := makeToken(t, 7, tokenOpts{})
		assert.Equal(t, fiber.StatusOK, requestStatus(t, app, "/", "Bearer "+token))
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, requestStatus(t, app, "/", ""))
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, requestStatus(t, app, "/", "Token abc"))
	})

	t.Run("expired token", func(t *testing.T) {
		token := makeToken(t, 7, tokenOpts{exp: time.Now().Add(-time.Hour)})
		assert.Equal(t, fiber.StatusUnauthorized, requestStatus(t, app, "/", "Bearer "+token))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token := makeToken(t, 7, tokenOpts{issuer: "someone-else"})
		assert.Equal(t, fiber.StatusUnauthorized, requestStatus(t, app, "/", "Bearer "+token))
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := makeToken(t, 7, tokenOpts{secret: "a-different-secret-key-abcdef12"})
		assert.Equal(t, fiber.StatusUnauthorized, requestStatus(t, app, "/", "Bearer "+token))
	})
}

func TestAuthRequiredRevocation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	initTestMiddleware(t, rdb)
	app := echoUserApp(AuthRequired)

	token := makeToken(t, 7, tokenOpts{jti: "revoked-jti"})
	assert.Equal(t, fiber.StatusOK, requestStatus(t, app, "/", "Bearer "+token))

	require.NoError(t, rdb.Set(context.Background(), "blacklist:revoked-jti", "1", time.Hour).Err())
	assert.Equal(t, fiber.StatusUnauthorized, requestStatus(t, app, "/", "Bearer "+token))

	// The blacklist entry expiring restores the token
	mr.FastForward(2 * time.Hour)
	assert.Equal(t, fiber.StatusOK, requestStatus(t, app, "/", "Bearer "+token))
}

func TestWebSocketAuthRequired(t *testing.T) {
	initTestMiddleware(t, nil)
	app := echoUserApp(WebSocketAuthRequired)

	t.Run("token query parameter", func(t *testing.T) {
		token := makeToken(t, 7, tokenOpts{})
		assert.Equal(t, fiber.StatusOK, requestStatus(t, app, "/?token="+token, ""))
	})

	t.Run("header fallback", func(t *testing.T) {
		token := makeToken(t, 7, tokenOpts{})
		assert.Equal(t, fiber.StatusOK, requestStatus(t, app, "/", "Bearer "+token))
	})

	t.Run("no token", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, requestStatus(t, app, "/", ""))
	})

	t.Run("invalid query token", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, requestStatus(t, app, "/?token=garbage", ""))
	})
}
