package service

import (
	"context"
	"docbook/cmd/internal/domain/database"
	"docbook/cmd/internal/domain/database/repository"
	"docbook/cmd/internal/domain/entity"
	"docbook/cmd/internal/utils"
	"docbook/cmd/internal/utils/validators"
	"fmt"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	slots      *repository.DefaultSlotRepository
	appts      *repository.DefaultAppointmentRepository
	directory  *repository.DefaultDirectoryRepository
	validate   *validator.Validate
	doctor     *entity.Doctor
	otherDoc   *entity.Doctor
	tehranCity *entity.City
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	validate := validator.New()
	validators.Register(validate)

	env := &testEnv{
		db:        db,
		slots:     repository.NewSlotRepository(db),
		appts:     repository.NewAppointmentRepository(db),
		directory: repository.NewDirectoryRepository(db),
		validate:  validate,
	}

	ctx := context.Background()
	env.tehranCity = &entity.City{Name: "Tehran", IsActive: true}
	require.NoError(t, env.directory.UpsertCity(ctx, env.tehranCity))
	shiraz := &entity.City{Name: "Shiraz", IsActive: true}
	require.NoError(t, env.directory.UpsertCity(ctx, shiraz))

	mehr := &entity.Clinic{Name: "Mehr Clinic", Address: "Valiasr St", CityID: env.tehranCity.ID}
	require.NoError(t, env.directory.UpsertClinic(ctx, mehr))
	shafa := &entity.Clinic{Name: "Shafa Clinic", Address: "Zand Blvd", CityID: shiraz.ID}
	require.NoError(t, env.directory.UpsertClinic(ctx, shafa))

	env.doctor = &entity.Doctor{Name: "Dr. Ahmadi", Specialty: "Cardiology", Slug: "dr-ahmadi", ClinicID: mehr.ID}
	require.NoError(t, env.directory.UpsertDoctor(ctx, env.doctor))
	env.otherDoc = &entity.Doctor{Name: "Dr. Karimi", Specialty: "Dermatology", Slug: "dr-karimi", ClinicID: shafa.ID}
	require.NoError(t, env.directory.UpsertDoctor(ctx, env.otherDoc))

	return env
}

func (e *testEnv) addSlot(t *testing.T, doctorID int, rfc string) *entity.AvailabilitySlot {
	t.Helper()
	at, err := utils.FromEpoch(rfc)
	require.NoError(t, err)
	slot := &entity.AvailabilitySlot{DoctorID: doctorID, Datetime: at}
	require.NoError(t, e.slots.Create(context.Background(), slot))
	return slot
}

func (e *testEnv) reservationService(cache AvailabilityCache) *DefaultReservationService {
	return NewReservationService(e.slots, e.directory, cache, e.validate, nil, 0)
}

// recordingCache is an in-process AvailabilityCache with the same
// versioning contract as the redis one.
type recordingCache struct {
	mu          sync.Mutex
	versions    map[int]int64
	entries     map[string][]*entity.AvailabilitySlot
	invalidated []int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{versions: map[int]int64{}, entries: map[string][]*entity.AvailabilitySlot{}}
}

func cacheKey(doctorID int, version, dayStart int64) string {
	return fmt.Sprintf("%d:%d:%d", doctorID, version, dayStart)
}

func (c *recordingCache) Get(_ context.Context, doctorID int, dayStart int64) ([]*entity.AvailabilitySlot, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	version := c.versions[doctorID]
	slots, ok := c.entries[cacheKey(doctorID, version, dayStart)]
	return slots, version, ok, nil
}

func (c *recordingCache) Set(_ context.Context, doctorID int, dayStart, version int64, slots []*entity.AvailabilitySlot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(doctorID, version, dayStart)] = slots
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, doctorID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[doctorID]++
	c.invalidated = append(c.invalidated, doctorID)
	return nil
}
