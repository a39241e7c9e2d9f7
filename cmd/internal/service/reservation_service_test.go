package service

import (
	"context"
	"docbook/cmd/internal/domain/entity"
	"docbook/cmd/internal/utils/apierror"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest(doctorID int) *ReserveRequest {
	return &ReserveRequest{
		DoctorID:     doctorID,
		Datetime:     "2024-06-01T09:00:00Z",
		PatientName:  "Alice",
		PatientPhone: "09123456789",
	}
}

func TestReserveBooksFreeSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	slot := env.addSlot(t, env.doctor.ID, "2024-06-01T09:00:00Z")
	env.addSlot(t, env.doctor.ID, "2024-06-01T09:05:00Z")
	svc := env.reservationService(nil)

	appt, apierr := svc.Reserve(ctx, validRequest(env.doctor.ID))
	require.Nil(t, apierr)

	assert.Equal(t, "PENDING", appt.Status)
	assert.Equal(t, env.doctor.ID, appt.DoctorID)
	assert.Equal(t, slot.ID, appt.SlotID)
	assert.Equal(t, "2024-06-01T09:00:00Z", appt.Datetime)
	assert.NotEmpty(t, appt.Reference)
	assert.NotZero(t, appt.ID)

	available, apierr := svc.ListAvailable(ctx, env.doctor.ID, "2024-06-01")
	require.Nil(t, apierr)
	require.Len(t, available, 1)
	assert.Equal(t, "2024-06-01T09:05:00Z", available[0].Datetime)

	stored, err := env.slots.FindByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBooked)
}

func TestReserveSecondCallConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addSlot(t, env.doctor.ID, "2024-06-01T09:00:00Z")
	svc := env.reservationService(nil)

	_, apierr := svc.Reserve(ctx, validRequest(env.doctor.ID))
	require.Nil(t, apierr)

	second := validRequest(env.doctor.ID)
	second.PatientName = "Bob"
	_, apierr = svc.Reserve(ctx, second)
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusConflict, apierr.Code())
	assert.Equal(t, apierror.KindConflict, apierr.Kind())

	appts, err := env.appts.FindBySlot(ctx, env.doctor.ID, mustEpoch(t, "2024-06-01T09:00:00Z"))
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "Alice", appts[0].PatientName)
}

func TestReserveUnknownInstantConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.addSlot(t, env.doctor.ID, "2024-06-01T09:00:00Z")

	req := validRequest(env.doctor.ID)
	req.Datetime = "2024-06-01T09:01:00Z"
	_, apierr := env.reservationService(nil).Reserve(context.Background(), req)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindConflict, apierr.Kind())
}

func TestReserveAcceptsEquivalentOffsets(t *testing.T) {
	env := newTestEnv(t)
	env.addSlot(t, env.doctor.ID, "2024-06-01T09:00:00Z")

	req := validRequest(env.doctor.ID)
	req.Datetime = "2024-06-01T12:30:00+03:30"
	appt, apierr := env.reservationService(nil).Reserve(context.Background(), req)
	require.Nil(t, apierr)
	assert.Equal(t, "2024-06-01T09:00:00Z", appt.Datetime)
}

func TestReserveConcurrentCallersOnlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addSlot(t, env.doctor.ID, "2024-06-01T09:00:00Z")
	svc := env.reservationService(nil)

	const callers = 20
	results := make([]error, callers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			req := validRequest(env.doctor.ID)
			_, apierr := svc.Reserve(ctx, req)
			if apierr != nil {
				results[i] = apierr
			}
		}(i)
	}
	close(start)
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range results {
		var apierr apierror.ErrorResponse
		switch {
		case err == nil:
			wins++
		case errors.As(err, &apierr) && apierr.Kind() == apierror.KindConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, conflicts)

	appts, err := env.appts.FindBySlot(ctx, env.doctor.ID, mustEpoch(t, "2024-06-01T09:00:00Z"))
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestReserveRejectsInvalidInputWithoutStorage(t *testing.T) {
	svc := NewReservationService(panicSlots{}, panicDoctors{}, nil, newTestEnv(t).validate, nil, 0)

	cases := map[string]func(r *ReserveRequest){
		"short phone":     func(r *ReserveRequest) { r.PatientName, r.PatientPhone = "A", "123" },
		"short name":      func(r *ReserveRequest) { r.PatientName = " A " },
		"no doctor":       func(r *ReserveRequest) { r.DoctorID = 0 },
		"local datetime":  func(r *ReserveRequest) { r.Datetime = "2024-06-01T09:00" },
		"invalid status":  func(r *ReserveRequest) { r.Status = "COMPLETED" },
		"blank phone":     func(r *ReserveRequest) { r.PatientPhone = "          " },
		"negative doctor": func(r *ReserveRequest) { r.DoctorID = -4 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest(1)
			mutate(req)
			_, apierr := svc.Reserve(context.Background(), req)
			require.NotNil(t, apierr)
			assert.Equal(t, http.StatusBadRequest, apierr.Code())
			assert.Equal(t, apierror.KindInvalidInput, apierr.Kind())
		})
	}
}

func TestReserveUnknownDoctor(t *testing.T) {
	env := newTestEnv(t)
	_, apierr := env.reservationService(nil).Reserve(context.Background(), validRequest(9999))
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusNotFound, apierr.Code())
	assert.Equal(t, apierror.KindNotFound, apierr.Kind())
}

func TestReserveConflictLeavesSlotUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	slot := env.addSlot(t, env.doctor.ID, "2024-06-01T09:00:00Z")
	svc := env.reservationService(nil)

	// Conflict on a different instant must not touch the existing free slot.
	req := validRequest(env.doctor.ID)
	req.Datetime = "2024-06-01T10:00:00Z"
	_, apierr := svc.Reserve(ctx, req)
	require.NotNil(t, apierr)

	stored, err := env.slots.FindByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBooked)

	counts, err := env.appts.CountByStatus(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestReserveHonoursInitialStatus(t *testing.T) {
	env := newTestEnv(t)
	env.addSlot(t, env.doctor.ID, "2024-06-01T09:00:00Z")

	req := validRequest(env.doctor.ID)
	req.Status = string(entity.StatusConfirmed)
	appt, apierr := env.reservationService(nil).Reserve(context.Background(), req)
	require.Nil(t, apierr)
	assert.Equal(t, "CONFIRMED", appt.Status)
}

func TestReserveAmbiguousFailureIsNotAConflict(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReservationService(failingSlots{err: context.DeadlineExceeded}, env.directory, nil, env.validate, nil, 0)

	_, apierr := svc.Reserve(context.Background(), validRequest(env.doctor.ID))
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.ReservationUnknownError, apierr)
	assert.Equal(t, apierror.KindStorageUnavailable, apierr.Kind())
}

func TestReserveInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addSlot(t, env.doctor.ID, "2024-06-01T09:00:00Z")
	cache := newRecordingCache()
	svc := env.reservationService(cache)

	before, apierr := svc.ListAvailable(ctx, env.doctor.ID, "2024-06-01")
	require.Nil(t, apierr)
	require.Len(t, before, 1)

	_, apierr = svc.Reserve(ctx, validRequest(env.doctor.ID))
	require.Nil(t, apierr)
	assert.Equal(t, []int{env.doctor.ID}, cache.invalidated)

	after, apierr := svc.ListAvailable(ctx, env.doctor.ID, "2024-06-01")
	require.Nil(t, apierr)
	assert.Empty(t, after)
}

func TestListAvailableOrderedAndRepeatable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addSlot(t, env.doctor.ID, "2024-06-01T11:00:00Z")
	env.addSlot(t, env.doctor.ID, "2024-06-01T09:00:00Z")
	env.addSlot(t, env.doctor.ID, "2024-06-01T10:00:00Z")
	env.addSlot(t, env.doctor.ID, "2024-06-02T00:00:00Z")
	env.addSlot(t, env.doctor.ID, "2024-05-31T23:59:00Z")
	env.addSlot(t, env.otherDoc.ID, "2024-06-01T09:30:00Z")
	svc := env.reservationService(nil)

	first, apierr := svc.ListAvailable(ctx, env.doctor.ID, "2024-06-01")
	require.Nil(t, apierr)
	second, apierr := svc.ListAvailable(ctx, env.doctor.ID, "2024-06-01")
	require.Nil(t, apierr)

	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "2024-06-01T09:00:00Z", first[0].Datetime)
	assert.Equal(t, "2024-06-01T10:00:00Z", first[1].Datetime)
	assert.Equal(t, "2024-06-01T11:00:00Z", first[2].Datetime)
}

func TestListAvailableNeverReturnsBookedSlots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.reservationService(nil)
	for _, at := range []string{"2024-06-01T09:00:00Z", "2024-06-01T09:05:00Z", "2024-06-01T09:10:00Z"} {
		env.addSlot(t, env.doctor.ID, at)
	}

	req := validRequest(env.doctor.ID)
	req.Datetime = "2024-06-01T09:05:00Z"
	_, apierr := svc.Reserve(ctx, req)
	require.Nil(t, apierr)

	available, apierr := svc.ListAvailable(ctx, env.doctor.ID, "2024-06-01")
	require.Nil(t, apierr)
	for _, slot := range available {
		stored, err := env.slots.FindByID(ctx, slot.SlotID)
		require.NoError(t, err)
		assert.False(t, stored.IsBooked, slot.Datetime)
	}
	assert.Len(t, available, 2)
}

func TestListAvailableErrors(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reservationService(nil)

	_, apierr := svc.ListAvailable(context.Background(), env.doctor.ID, "01-06-2024")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindInvalidInput, apierr.Kind())

	_, apierr = svc.ListAvailable(context.Background(), 0, "2024-06-01")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindInvalidInput, apierr.Kind())

	_, apierr = svc.ListAvailable(context.Background(), 4242, "2024-06-01")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindNotFound, apierr.Kind())

	broken := NewReservationService(failingSlots{err: errors.New("disk I/O error")}, env.directory, nil, env.validate, nil, 0)
	_, apierr = broken.ListAvailable(context.Background(), env.doctor.ID, "2024-06-01")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindStorageUnavailable, apierr.Kind())
}
