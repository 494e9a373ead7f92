// Command main runs the database seeder for Skymarket.
package main

import (
	"flag"
	"log"
	"strings"

	"skymarket/internal/config"
	"skymarket/internal/database"
	"skymarket/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numAds := flag.Int("ads", 50, "Number of ads to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords (fast bulk seeding, logins will not work)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if strings.EqualFold(cfg.Env, "production") {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{SkipBcrypt: *skipBcrypt})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	result, err := s.Run(*numUsers, *numAds)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d ads, %d comments (password for all accounts: %s)",
		result.Users, result.Ads, result.Comments, seed.DefaultPassword)
}
