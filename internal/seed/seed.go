// Package seed provides helpers to create demo data for the
// application database. Intended for development and testing only.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chirp/internal/models"
)

// Options controls the size of the generated dataset.
type Options struct {
	Users          int
	PostsPerUser   int
	FollowsPerUser int
	LikesPerUser   int
	MaxDays        int
	Password       string
}

// DefaultOptions returns a small but connected dataset.
func DefaultOptions() Options {
	return Options{
		Users:          25,
		PostsPerUser:   8,
		FollowsPerUser: 6,
		LikesPerUser:   15,
		MaxDays:        60,
		Password:       "SeedPassword1!",
	}
}

// Run populates the database with fake users, posts, follows, and
// likes. Follow and like writes use ON CONFLICT DO NOTHING so reruns
// and random collisions are harmless.
func Run(db *gorm.DB, opts Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		if len(username) > 30 {
			username = username[:30]
		}
		users = append(users, models.User{
			Username: username,
			Email:    fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			Password: string(hashed),
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	logger.Info("seeded users", "count", len(users))

	posts := make([]models.Post, 0, opts.Users*opts.PostsPerUser)
	for _, u := range users {
		for j := 0; j < opts.PostsPerUser; j++ {
			posts = append(posts, models.Post{
				Title:     clip(gofakeit.Sentence(4), 100),
				Content:   clip(gofakeit.Sentence(8), 100),
				UserID:    u.ID,
				CreatedAt: pastTime(r, opts.MaxDays),
			})
		}
	}
	if err := db.Create(&posts).Error; err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	logger.Info("seeded posts", "count", len(posts))

	follows := make([]models.Follow, 0, opts.Users*opts.FollowsPerUser)
	for _, u := range users {
		for j := 0; j < opts.FollowsPerUser; j++ {
			target := users[r.Intn(len(users))]
			if target.ID == u.ID {
				continue
			}
			follows = append(follows, models.Follow{
				FollowerID:  u.ID,
				FollowingID: target.ID,
				CreatedAt:   pastTime(r, opts.MaxDays),
			})
		}
	}
	if len(follows) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follows).Error; err != nil {
			return fmt.Errorf("seed follows: %w", err)
		}
	}
	logger.Info("seeded follows", "count", len(follows))

	likes := make([]models.Like, 0, opts.Users*opts.LikesPerUser)
	for _, u := range users {
		for j := 0; j < opts.LikesPerUser; j++ {
			post := posts[r.Intn(len(posts))]
			likes = append(likes, models.Like{
				UserID:    u.ID,
				PostID:    post.ID,
				CreatedAt: pastTime(r, opts.MaxDays),
			})
		}
	}
	if len(likes) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&likes).Error; err != nil {
			return fmt.Errorf("seed likes: %w", err)
		}
	}
	logger.Info("seeded likes", "count", len(likes))

	return nil
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// pastTime returns a random timestamp within the last maxDays days.
func pastTime(r *rand.Rand, maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(r.Intn(maxDays))*24*time.Hour +
		time.Duration(r.Intn(24))*time.Hour +
		time.Duration(r.Intn(60))*time.Minute
	return time.Now().Add(-back)
}
