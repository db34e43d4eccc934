package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chirp/internal/config"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
	"chirp/internal/service"
)

// newTestServer builds a Server over in-memory sqlite without Redis or
// the Prometheus middleware, which must only register once per process.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Like{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		JWTSecret: "test-secret-key-for-handler-tests",
		Port:      "8080",
		Env:       "test",
	}
	middleware.InitMiddleware(cfg, nil)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)

	srv := &Server{
		config:     cfg,
		db:         db,
		userRepo:   userRepo,
		postRepo:   postRepo,
		followRepo: followRepo,
	}
	srv.postService = service.NewPostService(postRepo, userRepo)
	srv.followService = service.NewFollowService(followRepo, userRepo, postRepo)
	srv.userService = service.NewUserService(userRepo)
	srv.hub = notifications.NewHub(middleware.Logger)

	app := fiber.New()
	srv.SetupRoutes(app)

	return srv, app
}

// doRequest performs a JSON request against the test app.
func doRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeBody decodes a JSON response body into dest.
func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

const testPassword = "Str0ng-Passw0rd!"

// signupUser registers a user through the API and returns their token.
func signupUser(t *testing.T, app *fiber.App, username string) (string, *models.User) {
	t.Helper()

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/signup", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	require.NotNil(t, body.User)
	return body.Token, body.User
}

// createPost creates a post through the API and returns it.
func createPost(t *testing.T, app *fiber.App, token, title, content string) *models.Post {
	t.Helper()

	resp := doRequest(t, app, fiber.MethodPost, "/api/posts/", fiber.Map{
		"title":   title,
		"content": content,
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	return &post
}
