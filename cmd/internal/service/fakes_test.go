package service

import (
	"context"
	"docbook/cmd/internal/domain/database/repository"
	"docbook/cmd/internal/domain/entity"
	"docbook/cmd/internal/utils"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustEpoch(t *testing.T, rfc string) int64 {
	t.Helper()
	at, err := utils.FromEpoch(rfc)
	require.NoError(t, err)
	return at
}

// panicSlots fails the test run if storage is reached.
type panicSlots struct{}

func (panicSlots) Reserve(context.Context, *entity.Appointment) error { panic("storage touched") }
func (panicSlots) FindAvailable(context.Context, int, int64, int64) ([]*entity.AvailabilitySlot, error) {
	panic("storage touched")
}
func (panicSlots) FindBetween(context.Context, int, int64, int64) ([]*entity.AvailabilitySlot, error) {
	panic("storage touched")
}
func (panicSlots) FindByID(context.Context, int) (*entity.AvailabilitySlot, error) {
	panic("storage touched")
}
func (panicSlots) Create(context.Context, *entity.AvailabilitySlot) error { panic("storage touched") }
func (panicSlots) CreateMany(context.Context, int, []int64) (int, error) {
	panic("storage touched")
}
func (panicSlots) DeleteFree(context.Context, int) error { panic("storage touched") }
func (panicSlots) CountByState(context.Context, *int) (*repository.SlotCounts, error) {
	panic("storage touched")
}

type panicDoctors struct{}

func (panicDoctors) DoctorExists(context.Context, int) (bool, error) { panic("storage touched") }

// failingSlots returns err from every call.
type failingSlots struct {
	err error
}

func (f failingSlots) Reserve(context.Context, *entity.Appointment) error { return f.err }
func (f failingSlots) FindAvailable(context.Context, int, int64, int64) ([]*entity.AvailabilitySlot, error) {
	return nil, f.err
}
func (f failingSlots) FindBetween(context.Context, int, int64, int64) ([]*entity.AvailabilitySlot, error) {
	return nil, f.err
}
func (f failingSlots) FindByID(context.Context, int) (*entity.AvailabilitySlot, error) {
	return nil, f.err
}
func (f failingSlots) Create(context.Context, *entity.AvailabilitySlot) error { return f.err }
func (f failingSlots) CreateMany(context.Context, int, []int64) (int, error)  { return 0, f.err }
func (f failingSlots) DeleteFree(context.Context, int) error                  { return f.err }
func (f failingSlots) CountByState(context.Context, *int) (*repository.SlotCounts, error) {
	return nil, f.err
}
