package routes

import (
	"context"
	"docbook/cmd/internal/domain/entity"
	"docbook/cmd/internal/service"
	"docbook/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	GetAppointments(ctx context.Context, doctorID int, date string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointment(ctx context.Context, id int) (*entity.Appointment, apierror.ErrorResponse)
	UpdateStatus(ctx context.Context, appt *entity.Appointment, req *service.StatusRequest) (*service.AppointmentResponse, apierror.ErrorResponse)
	GetStats(ctx context.Context, doctorID *int) (*service.StatsResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
	Policy             AccessPolicy
}

func NewAppointmentDefault(apptService AppointmentService, policy AccessPolicy) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService, Policy: policy}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	doctorID, apierr := pathID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	date, apierr := requiredQuery(c, "date")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	if apierr = a.Policy.CanManageDoctor(c.Request().Context(), caller(c), doctorID); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	appts, apierr := a.AppointmentService.GetAppointments(c.Request().Context(), doctorID, date)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) UpdateStatus(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.StatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	appt, apierr := a.AppointmentService.GetAppointment(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	if apierr = a.Policy.CanManageDoctor(c.Request().Context(), caller(c), appt.DoctorID); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp, apierr := a.AppointmentService.UpdateStatus(c.Request().Context(), appt, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *DefaultAppointmentRoute) GetStats(c echo.Context) error {
	doctorID, apierr := optionalQueryID(c, "doctor_id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	if apierr = a.Policy.CanViewStats(c.Request().Context(), caller(c), doctorID); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	stats, apierr := a.AppointmentService.GetStats(c.Request().Context(), doctorID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, stats)
}
