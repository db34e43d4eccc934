package service

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chirp/internal/models"
	"chirp/internal/repository"
)

type testEnv struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	postRepo      repository.PostRepository
	followRepo    repository.FollowRepository
	postService   *PostService
	followService *FollowService
	userService   *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
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

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)

	return &testEnv{
		db:            db,
		userRepo:      userRepo,
		postRepo:      postRepo,
		followRepo:    followRepo,
		postService:   NewPostService(postRepo, userRepo),
		followService: NewFollowService(followRepo, userRepo, postRepo),
		userService:   NewUserService(userRepo),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}
