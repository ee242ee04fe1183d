package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"parkhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:       gofakeit.Name(),
		Email:      gofakeit.Email(),
		Role:       models.RoleUser,
		IsVerified: true,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateVehicle constructs and persists a vehicle owned by the given user.
func (f *Factory) CreateVehicle(owner *models.User, overrides ...func(*models.Vehicle)) (*models.Vehicle, error) {
	vehicleType := vehicleTypes[f.rand.Intn(len(vehicleTypes))]
	vehicle := &models.Vehicle{
		UserID:      owner.ID,
		PlateNumber: f.plateNumber(),
		VehicleType: vehicleType,
		Size:        sizeFor(vehicleType, f.rand),
		OtherAttributes: fmt.Sprintf("%s %s, %s",
			gofakeit.CarMaker(), gofakeit.CarModel(), strings.ToLower(gofakeit.Color())),
	}

	for _, override := range overrides {
		override(vehicle)
	}

	if err := f.db.Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// CreateSlot constructs and persists a parking slot. Slot numbers follow the
// "<zone><row>-<n>" convention, e.g. "B2-14".
func (f *Factory) CreateSlot(n int, overrides ...func(*models.ParkingSlot)) (*models.ParkingSlot, error) {
	vehicleType := vehicleTypes[f.rand.Intn(len(vehicleTypes))]
	zone := zones[f.rand.Intn(len(zones))]
	slot := &models.ParkingSlot{
		SlotNumber:  fmt.Sprintf("%s%d-%d", zone, f.rand.Intn(4)+1, n),
		VehicleType: vehicleType,
		Size:        sizeFor(vehicleType, f.rand),
		Location:    fmt.Sprintf("Zone %s, Level %d", zone, f.rand.Intn(3)+1),
		Status:      models.SlotAvailable,
	}

	for _, override := range overrides {
		override(slot)
	}

	if err := f.db.Create(slot).Error; err != nil {
		return nil, err
	}
	return slot, nil
}

// CreateRequest persists a pending slot request for the given vehicle.
func (f *Factory) CreateRequest(vehicle *models.Vehicle, overrides ...func(*models.SlotRequest)) (*models.SlotRequest, error) {
	request := &models.SlotRequest{
		VehicleID: vehicle.ID,
		Status:    models.RequestPending,
	}

	for _, override := range overrides {
		override(request)
	}

	if err := f.db.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

var (
	vehicleTypes = []string{"car", "motorcycle", "truck", "van"}
	zones        = []string{"A", "B", "C", "D"}
)

// sizeFor keeps generated sizes plausible for the vehicle type so seeded
// requests can actually be approved.
func sizeFor(vehicleType string, r *rand.Rand) string {
	switch vehicleType {
	case "motorcycle":
		return "small"
	case "truck":
		return "large"
	default:
		sizes := []string{"small", "medium", "large"}
		return sizes[r.Intn(len(sizes))]
	}
}

func (f *Factory) plateNumber() string {
	letters := "ABCDEFGHJKLMNPRSTUVWXYZ"
	b := make([]byte, 3)
	for i := range b {
		b[i] = letters[f.rand.Intn(len(letters))]
	}
	return fmt.Sprintf("%s-%03d", string(b), f.rand.Intn(1000))
}
