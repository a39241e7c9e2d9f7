package service

import (
	"context"
	"docbook/cmd/internal/domain/database/repository"
	"docbook/cmd/internal/domain/entity"
	"docbook/cmd/internal/utils"
	"docbook/cmd/internal/utils/apierror"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

const (
	defaultDayStart = "10:00"
	defaultDayEnd   = "17:00"
	defaultInterval = 5
)

type CreateSlotRequest struct {
	Datetime string `json:"datetime" validate:"required,iso8601"`
}

// DaySlotsRequest asks for one slot every IntervalMinutes between From
// (inclusive) and To (exclusive) on Date, in the booking timezone.
type DaySlotsRequest struct {
	Date            string `json:"date" validate:"required,isodate"`
	From            string `json:"from" validate:"omitempty,clock"`
	To              string `json:"to" validate:"omitempty,clock"`
	IntervalMinutes int    `json:"interval_minutes" validate:"omitempty,min=1,max=240"`
}

type SlotResponse struct {
	ID       int    `json:"slot_id"`
	DoctorID int    `json:"doctor_id"`
	Datetime string `json:"datetime"`
	IsBooked bool   `json:"is_booked"`
}

type DaySlotsResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// DefaultScheduleService manages doctors' availability. Callers check
// authorization before invoking it.
type DefaultScheduleService struct {
	SlotRepo   SlotRepository
	DoctorRepo DoctorRepository
	Cache      AvailabilityCache
	Validate   *validator.Validate
	Location   *time.Location
}

func NewScheduleService(slotRepo SlotRepository, doctorRepo DoctorRepository, cache AvailabilityCache,
	validate *validator.Validate, loc *time.Location) *DefaultScheduleService {
	if cache == nil {
		cache = nopCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DefaultScheduleService{SlotRepo: slotRepo, DoctorRepo: doctorRepo, Cache: cache, Validate: validate, Location: loc}
}

func (s *DefaultScheduleService) CreateSlot(ctx context.Context, doctorID int, req *CreateSlotRequest) (*SlotResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	at, err := utils.FromEpoch(req.Datetime)
	if err != nil {
		return nil, apierror.InvalidDatetimeError
	}

	if apierr := s.ensureDoctor(ctx, doctorID); apierr != nil {
		return nil, apierr
	}

	slot := &entity.AvailabilitySlot{DoctorID: doctorID, Datetime: utils.TruncateMinute(at)}
	err = s.SlotRepo.Create(ctx, slot)
	if errors.Is(err, repository.ErrDuplicateSlot) {
		return nil, apierror.SlotExistsError
	}

	if err != nil {
		log.Errorf("failed to create slot for doctor %d at %s: %v", doctorID, req.Datetime, err)
		return nil, apierror.StorageUnavailableError
	}

	s.invalidate(ctx, doctorID)
	return toSlotResponse(slot), nil
}

// CreateDaySlots fills a day with evenly spaced slots, by default every five
// minutes from 10:00 to 17:00. Instants that already have a slot are kept.
func (s *DefaultScheduleService) CreateDaySlots(ctx context.Context, doctorID int, req *DaySlotsRequest) (*DaySlotsResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	instants, apierr := s.dayInstants(req)
	if apierr != nil {
		return nil, apierr
	}

	if apierr = s.ensureDoctor(ctx, doctorID); apierr != nil {
		return nil, apierr
	}

	created, err := s.SlotRepo.CreateMany(ctx, doctorID, instants)
	if err != nil {
		log.Errorf("failed to create day slots for doctor %d on %s: %v", doctorID, req.Date, err)
		return nil, apierror.StorageUnavailableError
	}

	if created > 0 {
		s.invalidate(ctx, doctorID)
	}
	return &DaySlotsResponse{Created: created, Skipped: len(instants) - created}, nil
}

func (s *DefaultScheduleService) GetSlot(ctx context.Context, id int) (*SlotResponse, apierror.ErrorResponse) {
	slot, err := s.SlotRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch slot %d: %v", id, err)
		return nil, apierror.StorageUnavailableError
	}

	if slot == nil {
		return nil, apierror.SlotNotFoundError
	}
	return toSlotResponse(slot), nil
}

// DeleteSlot removes a slot that is still free. Booked slots stay.
func (s *DefaultScheduleService) DeleteSlot(ctx context.Context, slot *SlotResponse) apierror.ErrorResponse {
	err := s.SlotRepo.DeleteFree(ctx, slot.ID)
	switch {
	case errors.Is(err, repository.ErrSlotNotFound):
		return apierror.SlotNotFoundError
	case errors.Is(err, repository.ErrSlotBooked):
		return apierror.SlotBookedError
	case err != nil:
		log.Errorf("failed to delete slot %d: %v", slot.ID, err)
		return apierror.StorageUnavailableError
	}

	s.invalidate(ctx, slot.DoctorID)
	return nil
}

// ListSlots returns every slot of the doctor on date, booked or not.
func (s *DefaultScheduleService) ListSlots(ctx context.Context, doctorID int, date string) ([]*SlotResponse, apierror.ErrorResponse) {
	from, to, err := utils.DayBounds(date, s.Location)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	if apierr := s.ensureDoctor(ctx, doctorID); apierr != nil {
		return nil, apierr
	}

	slots, err := s.SlotRepo.FindBetween(ctx, doctorID, from, to)
	if err != nil {
		log.Errorf("failed to list slots of doctor %d on %s: %v", doctorID, date, err)
		return nil, apierror.StorageUnavailableError
	}

	resp := make([]*SlotResponse, len(slots))
	for i, slot := range slots {
		resp[i] = toSlotResponse(slot)
	}
	return resp, nil
}

func (s *DefaultScheduleService) dayInstants(req *DaySlotsRequest) ([]int64, apierror.ErrorResponse) {
	from, to, interval := defaultDayStart, defaultDayEnd, defaultInterval
	if req.From != "" {
		from = req.From
	}
	if req.To != "" {
		to = req.To
	}
	if req.IntervalMinutes > 0 {
		interval = req.IntervalMinutes
	}

	start, err := utils.ParseClock(from)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("from", "HH:MM")
	}
	end, err := utils.ParseClock(to)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("to", "HH:MM")
	}
	if start >= end {
		return nil, apierror.NewSimple(http.StatusBadRequest, "'from' must be before 'to'")
	}

	day, err := time.ParseInLocation(time.DateOnly, req.Date, s.Location)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	// Wall-clock arithmetic keeps 10:00 at 10:00 across DST changes.
	step := time.Duration(interval) * time.Minute
	var instants []int64
	for offset := start; offset < end; offset += step {
		at := time.Date(day.Year(), day.Month(), day.Day(), 0, int(offset/time.Minute), 0, 0, s.Location)
		instants = append(instants, at.UnixMilli())
	}
	return instants, nil
}

func (s *DefaultScheduleService) ensureDoctor(ctx context.Context, doctorID int) apierror.ErrorResponse {
	exists, err := s.DoctorRepo.DoctorExists(ctx, doctorID)
	if err != nil {
		log.Errorf("failed to check doctor %d: %v", doctorID, err)
		return apierror.StorageUnavailableError
	}

	if !exists {
		return apierror.DoctorNotFoundError
	}
	return nil
}

func (s *DefaultScheduleService) invalidate(ctx context.Context, doctorID int) {
	if err := s.Cache.Invalidate(context.WithoutCancel(ctx), doctorID); err != nil {
		log.Warnf("failed to invalidate availability cache of doctor %d: %v", doctorID, err)
	}
}

func toSlotResponse(slot *entity.AvailabilitySlot) *SlotResponse {
	return &SlotResponse{
		ID:       slot.ID,
		DoctorID: slot.DoctorID,
		Datetime: utils.FormatEpoch(slot.Datetime),
		IsBooked: slot.IsBooked,
	}
}
