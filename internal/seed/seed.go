// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"parkhub/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumSlots    int
	ShouldClean bool
	SkipBcrypt  bool
	AdminEmail  string
	AdminPass   string
}

// Seed populates the database with demo data: an admin account, verified
// users with vehicles, a slot inventory, and a handful of pending requests.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d slots...", opts.NumUsers, opts.NumSlots)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	if opts.AdminEmail != "" {
		if err := EnsureAdmin(db, opts.AdminEmail, opts.AdminPass); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		log.Printf("✓ admin account ready (%s)", opts.AdminEmail)
	}

	factory := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("✓ %d test users created", len(users))

	vehicles := make([]*models.Vehicle, 0, len(users))
	for _, user := range users {
		vehicle, err := factory.CreateVehicle(user)
		if err != nil {
			return fmt.Errorf("failed to create vehicles: %w", err)
		}
		vehicles = append(vehicles, vehicle)
	}
	log.Printf("✓ %d vehicles created", len(vehicles))

	for i := 0; i < opts.NumSlots; i++ {
		if _, err := factory.CreateSlot(i + 1); err != nil {
			return fmt.Errorf("failed to create slots: %w", err)
		}
	}
	log.Printf("✓ %d parking slots created", opts.NumSlots)

	// A pending request for every other vehicle gives admins something to
	// approve right away.
	requested := 0
	for i, vehicle := range vehicles {
		if i%2 != 0 {
			continue
		}
		if _, err := factory.CreateRequest(vehicle); err != nil {
			return fmt.Errorf("failed to create requests: %w", err)
		}
		requested++
	}
	log.Printf("✓ %d pending requests created", requested)

	log.Println("🌱 Seeding complete")
	return nil
}

// EnsureAdmin creates a verified admin account with the given credentials,
// or promotes the existing account with that email. Idempotent.
func EnsureAdmin(db *gorm.DB, email, password string) error {
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.Role == models.RoleAdmin {
			return nil
		}
		return db.Model(&existing).Updates(map[string]interface{}{
			"role":        models.RoleAdmin,
			"is_verified": true,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:       "Administrator",
		Email:      email,
		Password:   string(hashed),
		Role:       models.RoleAdmin,
		IsVerified: true,
	}
	return db.Create(&admin).Error
}

// clearData truncates seeded tables in FK-safe order.
func clearData(db *gorm.DB) error {
	tables := []interface{}{
		&models.LogEntry{},
		&models.SlotRequest{},
		&models.ParkingSlot{},
		&models.Vehicle{},
		&models.OtpCode{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}
