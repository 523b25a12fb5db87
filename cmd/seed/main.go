// Command seed populates a development database with demo data.
package main

import (
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/seed"

	"gorm.io/gorm"
)

func main() {
	defaults := seed.DefaultOptions()

	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Users each seeded user follows")
	shouldClean := flag.Bool("clean", defaults.ShouldClean, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing to the database")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store a placeholder password hash (faster, users cannot log in)")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, clean=%v, dry-run=%v\n", *numUsers, *numPosts, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.SetupLogger(cfg.Env)

	if cfg.IsProduction() && !*dryRun {
		log.Fatal("❌ Refusing to seed a production database")
	}

	var db *gorm.DB
	if !*dryRun {
		db, err = database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
	}

	opts := defaults
	opts.NumUsers = *numUsers
	opts.NumPosts = *numPosts
	opts.FollowsPerUser = *follows
	opts.ShouldClean = *shouldClean
	opts.Factory = seed.FactoryOptions{
		DryRun:     *dryRun,
		SkipBcrypt: *skipBcrypt,
		RandSeed:   *randSeed,
	}

	result, err := seed.NewSeeder(db, opts).Run()
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d categories, %d users, %d posts.\n",
		len(result.Categories), len(result.Users), len(result.Posts))
	if !*skipBcrypt {
		log.Printf("📧 All test users have the password: %s\n", seed.DefaultPassword)
	}
}
