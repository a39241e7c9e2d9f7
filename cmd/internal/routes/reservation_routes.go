package routes

import (
	"context"
	"docbook/cmd/internal/service"
	"docbook/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type ReservationService interface {
	Reserve(ctx context.Context, req *service.ReserveRequest) (*service.AppointmentResponse, apierror.ErrorResponse)
	ListAvailable(ctx context.Context, doctorID int, date string) ([]*service.AvailableSlot, apierror.ErrorResponse)
}

type DefaultReservationRoute struct {
	ReservationService ReservationService
	Policy             AccessPolicy
}

func NewReservationDefault(reservationService ReservationService, policy AccessPolicy) *DefaultReservationRoute {
	return &DefaultReservationRoute{ReservationService: reservationService, Policy: policy}
}

func (r *DefaultReservationRoute) GetAvailability(c echo.Context) error {
	doctorID, apierr := pathID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	date, apierr := requiredQuery(c, "date")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	slots, apierr := r.ReservationService.ListAvailable(c.Request().Context(), doctorID, date)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"slots": slots}
	return c.JSON(http.StatusOK, &resp)
}

// CreateAppointment books a slot for a patient. Public bookings always
// start as PENDING.
func (r *DefaultReservationRoute) CreateAppointment(c echo.Context) error {
	var req service.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}
	req.Status = ""

	appt, apierr := r.ReservationService.Reserve(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, appt)
}

// CreateStaffAppointment books on behalf of a patient, optionally already
// confirmed.
func (r *DefaultReservationRoute) CreateStaffAppointment(c echo.Context) error {
	var req service.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if req.DoctorID <= 0 {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("doctor_id"))
	}

	if apierr := r.Policy.CanManageDoctor(c.Request().Context(), caller(c), req.DoctorID); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	appt, apierr := r.ReservationService.Reserve(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, appt)
}
