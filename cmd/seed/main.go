// Command seed populates the configured database with demo data.
package main

import (
	"flag"
	"log"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/seed"
)

func main() {
	users := flag.Int("users", 25, "Number of users to create")
	postsPerUser := flag.Int("posts", 8, "Posts per user")
	followsPerUser := flag.Int("follows", 6, "Follow edges per user")
	likesPerUser := flag.Int("likes", 15, "Likes per user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg, middleware.Logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.DefaultOptions()
	opts.Users = *users
	opts.PostsPerUser = *postsPerUser
	opts.FollowsPerUser = *followsPerUser
	opts.LikesPerUser = *likesPerUser

	if err := seed.Run(db, opts, middleware.Logger); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
