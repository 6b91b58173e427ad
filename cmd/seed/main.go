// Command seed loads the demo catalog into the database.
package main

import (
	"context"
	"flag"
	"log"

	"capsort/internal/config"
	"capsort/internal/database"
	"capsort/internal/seed"
)

func main() {
	fake := flag.Int("fake", 0, "Number of generated projects to add after the catalog")
	rngSeed := flag.Int64("rand-seed", 0, "Seed for random choices (0 uses the clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	s, err := seed.NewSeeder(db, seed.Options{Fake: *fake, Seed: *rngSeed})
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	sum, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d projects, %d saves", sum.Users, sum.Projects, sum.Saves)
	log.Println("Catalog accounts: admin@capsort.com / Admin123, students / Student123")
}
