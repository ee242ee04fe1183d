// Command main runs the database seeder for ParkHub.
package main

import (
	"flag"
	"log"

	"parkhub/internal/config"
	"parkhub/internal/database"
	"parkhub/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 25, "Number of users to create")
	numSlots := flag.Int("slots", 40, "Number of parking slots to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	adminEmail := flag.String("admin-email", "admin@parkhub.local", "Admin account email")
	adminPass := flag.String("admin-pass", "", "Admin account password (required to create the admin)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d slots, clean=%v\n", *numUsers, *numSlots, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:    *numUsers,
		NumSlots:    *numSlots,
		ShouldClean: *shouldClean,
	}
	if *adminPass != "" {
		opts.AdminEmail = *adminEmail
		opts.AdminPass = *adminPass
	} else {
		log.Println("No -admin-pass given; skipping admin account creation")
	}

	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All test users have the password: password123")
}
