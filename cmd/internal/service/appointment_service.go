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
	"github.com/labstack/gommon/log"
)

type AppointmentRepository interface {
	FindByID(ctx context.Context, id int) (*entity.Appointment, error)
	FindByDoctor(ctx context.Context, doctorID int, from, to int64) ([]*entity.Appointment, error)
	UpdateStatus(ctx context.Context, appt *entity.Appointment, next entity.AppointmentStatus, now int64) error
	CountByStatus(ctx context.Context, doctorID *int) (map[entity.AppointmentStatus]int64, error)
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,slotstatus"`
}

type StatsResponse struct {
	DoctorID    *int  `json:"doctor_id,omitempty"`
	Total       int64 `json:"total_appointments"`
	Pending     int64 `json:"pending"`
	Confirmed   int64 `json:"confirmed"`
	Cancelled   int64 `json:"cancelled"`
	Completed   int64 `json:"completed"`
	FreeSlots   int64 `json:"free_slots"`
	BookedSlots int64 `json:"booked_slots"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	SlotRepo        SlotRepository
	DoctorRepo      DoctorRepository
	Validate        *validator.Validate
	Location        *time.Location
}

func NewAppointmentService(apptRepo AppointmentRepository, slotRepo SlotRepository, doctorRepo DoctorRepository,
	validate *validator.Validate, loc *time.Location) *DefaultAppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &DefaultAppointmentService{AppointmentRepo: apptRepo, SlotRepo: slotRepo, DoctorRepo: doctorRepo, Validate: validate, Location: loc}
}

func (a *DefaultAppointmentService) GetAppointments(ctx context.Context, doctorID int, date string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	from, to, err := utils.DayBounds(date, a.Location)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	exists, err := a.DoctorRepo.DoctorExists(ctx, doctorID)
	if err != nil {
		log.Errorf("failed to check doctor %d: %v", doctorID, err)
		return nil, apierror.StorageUnavailableError
	}

	if !exists {
		return nil, apierror.DoctorNotFoundError
	}

	appts, err := a.AppointmentRepo.FindByDoctor(ctx, doctorID, from, to)
	if err != nil {
		log.Errorf("failed to find appointments for doctor %d on %s: %v", doctorID, date, err)
		return nil, apierror.StorageUnavailableError
	}

	response := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		response[i] = toAppointmentResponse(appt)
	}
	return response, nil
}

func (a *DefaultAppointmentService) GetAppointment(ctx context.Context, id int) (*entity.Appointment, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %d: %v", id, err)
		return nil, apierror.StorageUnavailableError
	}

	if appt == nil {
		return nil, apierror.NotFoundError
	}
	return appt, nil
}

// UpdateStatus moves an appointment along PENDING -> CONFIRMED -> COMPLETED,
// or to CANCELLED before completion. Cancelling keeps the slot booked.
func (a *DefaultAppointmentService) UpdateStatus(ctx context.Context, appt *entity.Appointment, req *StatusRequest) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	next := entity.AppointmentStatus(req.Status)
	if !appt.CanTransitionTo(next) {
		return nil, apierror.InvalidTransitionError
	}

	err := a.AppointmentRepo.UpdateStatus(ctx, appt, next, utils.NowUTC())
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, apierror.StaleStatusError
	}

	if err != nil {
		log.Errorf("failed to update appointment %d to %s: %v", appt.ID, next, err)
		return nil, apierror.StorageUnavailableError
	}
	return toAppointmentResponse(appt), nil
}

// GetStats aggregates appointment and slot counts, for one doctor or all.
func (a *DefaultAppointmentService) GetStats(ctx context.Context, doctorID *int) (*StatsResponse, apierror.ErrorResponse) {
	byStatus, err := a.AppointmentRepo.CountByStatus(ctx, doctorID)
	if err != nil {
		log.Errorf("failed to count appointments: %v", err)
		return nil, apierror.StorageUnavailableError
	}

	slots, err := a.SlotRepo.CountByState(ctx, doctorID)
	if err != nil {
		log.Errorf("failed to count slots: %v", err)
		return nil, apierror.StorageUnavailableError
	}

	stats := &StatsResponse{
		DoctorID:    doctorID,
		Pending:     byStatus[entity.StatusPending],
		Confirmed:   byStatus[entity.StatusConfirmed],
		Cancelled:   byStatus[entity.StatusCancelled],
		Completed:   byStatus[entity.StatusCompleted],
		FreeSlots:   slots.Free,
		BookedSlots: slots.Booked,
	}
	for _, n := range byStatus {
		stats.Total += n
	}
	return stats, nil
}
