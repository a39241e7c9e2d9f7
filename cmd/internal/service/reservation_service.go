package service

import (
	"context"
	"docbook/cmd/internal/domain/database/repository"
	"docbook/cmd/internal/domain/entity"
	"docbook/cmd/internal/utils"
	"docbook/cmd/internal/utils/apierror"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type SlotRepository interface {
	Reserve(ctx context.Context, appt *entity.Appointment) error
	FindAvailable(ctx context.Context, doctorID int, from, to int64) ([]*entity.AvailabilitySlot, error)
	FindBetween(ctx context.Context, doctorID int, from, to int64) ([]*entity.AvailabilitySlot, error)
	FindByID(ctx context.Context, id int) (*entity.AvailabilitySlot, error)
	Create(ctx context.Context, slot *entity.AvailabilitySlot) error
	CreateMany(ctx context.Context, doctorID int, instants []int64) (int, error)
	DeleteFree(ctx context.Context, id int) error
	CountByState(ctx context.Context, doctorID *int) (*repository.SlotCounts, error)
}

type DoctorRepository interface {
	DoctorExists(ctx context.Context, id int) (bool, error)
}

// AvailabilityCache memoizes free slots per doctor and day. Implementations
// must make Invalidate visible to every instance sharing the cache.
type AvailabilityCache interface {
	Get(ctx context.Context, doctorID int, dayStart int64) ([]*entity.AvailabilitySlot, int64, bool, error)
	Set(ctx context.Context, doctorID int, dayStart, version int64, slots []*entity.AvailabilitySlot) error
	Invalidate(ctx context.Context, doctorID int) error
}

type ReserveRequest struct {
	DoctorID     int    `json:"doctor_id" validate:"required,gt=0"`
	Datetime     string `json:"datetime" validate:"required,iso8601"`
	PatientName  string `json:"patient_name" validate:"required,min=2,max=100"`
	PatientPhone string `json:"patient_phone" validate:"required,min=10,max=20"`
	Status       string `json:"status" validate:"omitempty,initialstatus"`
}

type AppointmentResponse struct {
	ID           int    `json:"appointment_id"`
	Reference    string `json:"reference"`
	DoctorID     int    `json:"doctor_id"`
	SlotID       int    `json:"slot_id"`
	Datetime     string `json:"datetime"`
	PatientName  string `json:"patient_name"`
	PatientPhone string `json:"patient_phone"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type AvailableSlot struct {
	SlotID   int    `json:"slot_id"`
	Datetime string `json:"datetime"`
}

type DefaultReservationService struct {
	SlotRepo       SlotRepository
	DoctorRepo     DoctorRepository
	Cache          AvailabilityCache
	Validate       *validator.Validate
	Location       *time.Location
	ReserveTimeout time.Duration
}

func NewReservationService(slotRepo SlotRepository, doctorRepo DoctorRepository, cache AvailabilityCache,
	validate *validator.Validate, loc *time.Location, reserveTimeout time.Duration) *DefaultReservationService {
	if cache == nil {
		cache = nopCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DefaultReservationService{
		SlotRepo:       slotRepo,
		DoctorRepo:     doctorRepo,
		Cache:          cache,
		Validate:       validate,
		Location:       loc,
		ReserveTimeout: reserveTimeout,
	}
}

// Reserve books the doctor's free slot at the requested instant. Input is
// validated before any storage access. Exactly one of any number of
// concurrent callers for the same slot succeeds; the rest get a conflict.
func (r *DefaultReservationService) Reserve(ctx context.Context, req *ReserveRequest) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := r.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	at, err := utils.FromEpoch(req.Datetime)
	if err != nil {
		return nil, apierror.InvalidDatetimeError
	}

	status := entity.StatusPending
	if req.Status != "" {
		status = entity.AppointmentStatus(req.Status)
	}

	if r.ReserveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.ReserveTimeout)
		defer cancel()
	}

	exists, err := r.DoctorRepo.DoctorExists(ctx, req.DoctorID)
	if err != nil {
		log.Errorf("failed to check doctor %d: %v", req.DoctorID, err)
		return nil, apierror.StorageUnavailableError
	}

	if !exists {
		return nil, apierror.DoctorNotFoundError
	}

	now := utils.NowUTC()
	appt := &entity.Appointment{
		Reference:    uuid.NewString(),
		DoctorID:     req.DoctorID,
		Datetime:     at,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = r.SlotRepo.Reserve(ctx, appt)
	if errors.Is(err, repository.ErrSlotUnavailable) {
		return nil, apierror.SlotUnavailableError
	}

	if err != nil {
		// The commit may have landed before the failure surfaced.
		log.Errorf("reservation of doctor %d at %s ended ambiguously: %v", req.DoctorID, req.Datetime, err)
		return nil, apierror.ReservationUnknownError
	}

	r.invalidate(ctx, req.DoctorID)
	log.Infof("appointment %s booked for doctor %d at %s", appt.Reference, appt.DoctorID, utils.FormatEpoch(appt.Datetime))
	return toAppointmentResponse(appt), nil
}

// ListAvailable returns the doctor's free slots on a calendar date of the
// booking timezone, earliest first.
func (r *DefaultReservationService) ListAvailable(ctx context.Context, doctorID int, date string) ([]*AvailableSlot, apierror.ErrorResponse) {
	if doctorID <= 0 {
		return nil, apierror.NewInvalidParamTypeError("id", "positive integer")
	}

	from, to, err := utils.DayBounds(date, r.Location)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	slots, version, hit, err := r.Cache.Get(ctx, doctorID, from)
	if err != nil {
		log.Warnf("availability cache read failed for doctor %d: %v", doctorID, err)
	}

	if !hit {
		exists, err := r.DoctorRepo.DoctorExists(ctx, doctorID)
		if err != nil {
			log.Errorf("failed to check doctor %d: %v", doctorID, err)
			return nil, apierror.StorageUnavailableError
		}

		if !exists {
			return nil, apierror.DoctorNotFoundError
		}

		slots, err = r.SlotRepo.FindAvailable(ctx, doctorID, from, to)
		if err != nil {
			log.Errorf("failed to list availability of doctor %d on %s: %v", doctorID, date, err)
			return nil, apierror.StorageUnavailableError
		}

		if err = r.Cache.Set(ctx, doctorID, from, version, slots); err != nil {
			log.Warnf("availability cache write failed for doctor %d: %v", doctorID, err)
		}
	}

	resp := make([]*AvailableSlot, len(slots))
	for i, slot := range slots {
		resp[i] = &AvailableSlot{SlotID: slot.ID, Datetime: utils.FormatEpoch(slot.Datetime)}
	}
	return resp, nil
}

func (r *DefaultReservationService) invalidate(ctx context.Context, doctorID int) {
	if err := r.Cache.Invalidate(context.WithoutCancel(ctx), doctorID); err != nil {
		log.Warnf("failed to invalidate availability cache of doctor %d: %v", doctorID, err)
	}
}

type nopCache struct{}

func (nopCache) Get(context.Context, int, int64) ([]*entity.AvailabilitySlot, int64, bool, error) {
	return nil, 0, false, nil
}

func (nopCache) Set(context.Context, int, int64, int64, []*entity.AvailabilitySlot) error {
	return nil
}

func (nopCache) Invalidate(context.Context, int) error {
	return nil
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:           appt.ID,
		Reference:    appt.Reference,
		DoctorID:     appt.DoctorID,
		SlotID:       appt.SlotID,
		Datetime:     utils.FormatEpoch(appt.Datetime),
		PatientName:  appt.PatientName,
		PatientPhone: appt.PatientPhone,
		Status:       string(appt.Status),
		CreatedAt:    utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:    utils.FormatEpoch(appt.UpdatedAt),
	}
}
