package seed

import (
	"fmt"
	"sync/atomic"
	"testing"

	"parkhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seedDBCounter atomic.Int64

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:seedtest%d?mode=memory&cache=shared", seedDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.OtpCode{},
		&models.Vehicle{},
		&models.ParkingSlot{},
		&models.SlotRequest{},
		&models.LogEntry{},
	))
	return db
}

func TestFactoryCreateUser(t *testing.T) {
	db := setupSeedDB(t)
	factory := NewFactory(db, Options{})

	user, err := factory.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsVerified)
	assert.Equal(t, models.RoleUser, user.Role)

	// Password is stored hashed and matches the shared test credential.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
}

func TestFactoryVehicleSizes(t *testing.T) {
	db := setupSeedDB(t)
	factory := NewFactory(db, Options{SkipBcrypt: true})

	user, err := factory.CreateUser()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		vehicle, err := factory.CreateVehicle(user)
		require.NoError(t, err)
		switch vehicle.VehicleType {
		case "motorcycle":
			assert.Equal(t, "small", vehicle.Size)
		case "truck":
			assert.Equal(t, "large", vehicle.Size)
		default:
			assert.Contains(t, []string{"small", "medium", "large"}, vehicle.Size)
		}
	}
}

func TestSeedPopulates(t *testing.T) {
	db := setupSeedDB(t)

	err := Seed(db, Options{
		NumUsers:   6,
		NumSlots:   8,
		SkipBcrypt: true,
		AdminEmail: "admin@example.com",
		AdminPass:  "super-secret",
	})
	require.NoError(t, err)

	var userCount, vehicleCount, slotCount, requestCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Vehicle{}).Count(&vehicleCount).Error)
	require.NoError(t, db.Model(&models.ParkingSlot{}).Count(&slotCount).Error)
	require.NoError(t, db.Model(&models.SlotRequest{}).Count(&requestCount).Error)

	assert.EqualValues(t, 7, userCount, "6 demo users plus the admin")
	assert.EqualValues(t, 6, vehicleCount)
	assert.EqualValues(t, 8, slotCount)
	assert.EqualValues(t, 3, requestCount, "every other vehicle gets a pending request")

	var requests []models.SlotRequest
	require.NoError(t, db.Find(&requests).Error)
	for _, r := range requests {
		assert.Equal(t, models.RequestPending, r.Status)
	}
}

func TestEnsureAdmin(t *testing.T) {
	db := setupSeedDB(t)

	t.Run("Creates Admin", func(t *testing.T) {
		require.NoError(t, EnsureAdmin(db, "boss@example.com", "super-secret"))

		var admin models.User
		require.NoError(t, db.Where("email = ?", "boss@example.com").First(&admin).Error)
		assert.Equal(t, models.RoleAdmin, admin.Role)
		assert.True(t, admin.IsVerified)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("super-secret")))
	})

	t.Run("Idempotent", func(t *testing.T) {
		require.NoError(t, EnsureAdmin(db, "boss@example.com", "ignored"))

		var count int64
		require.NoError(t, db.Model(&models.User{}).Where("email = ?", "boss@example.com").Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("Promotes Existing User", func(t *testing.T) {
		user := models.User{Name: "Plain", Email: "plain@example.com", Password: "x", Role: models.RoleUser}
		require.NoError(t, db.Create(&user).Error)

		require.NoError(t, EnsureAdmin(db, "plain@example.com", "ignored"))

		var promoted models.User
		require.NoError(t, db.First(&promoted, user.ID).Error)
		assert.Equal(t, models.RoleAdmin, promoted.Role)
		assert.True(t, promoted.IsVerified)
	})
}
