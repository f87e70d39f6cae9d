// Command main runs the database seeder for Fritter.
package main

import (
	"context"
	"flag"
	"log"

	"fritter/internal/config"
	"fritter/internal/database"
	"fritter/internal/seed"
)

func main() {
	fixture := flag.String("fixture", "", "YAML fixture to load (e.g. fixtures/demo.yml)")
	numUsers := flag.Int("users", 20, "Number of generated users")
	freetsPerUser := flag.Int("freets", 5, "Freets per generated user")
	paymentPercent := flag.Int("payment-percent", 60, "Percent of generated users with fritterPay")
	merchantPercent := flag.Int("merchant-percent", 30, "Percent of a paying user's freets that are listings")
	randSeed := flag.Int64("seed", 0, "Random seed; 0 picks one")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	ctx := context.Background()
	if *fixture != "" {
		f, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("Fixture load failed: %v", err)
		}
		if _, err := s.ApplyFixture(ctx, f); err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		log.Printf("Fixture accounts use the password: %s", f.Password)
		return
	}

	if _, err := s.SeedRandom(ctx, seed.Options{
		Users:           *numUsers,
		FreetsPerUser:   *freetsPerUser,
		PaymentPercent:  *paymentPercent,
		MerchantPercent: *merchantPercent,
		Seed:            *randSeed,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("All generated users have the password: %s", seed.DefaultPassword)
}
