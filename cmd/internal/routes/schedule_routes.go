package routes

import (
	"context"
	"docbook/cmd/internal/service"
	"docbook/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type ScheduleService interface {
	CreateSlot(ctx context.Context, doctorID int, req *service.CreateSlotRequest) (*service.SlotResponse, apierror.ErrorResponse)
	CreateDaySlots(ctx context.Context, doctorID int, req *service.DaySlotsRequest) (*service.DaySlotsResponse, apierror.ErrorResponse)
	GetSlot(ctx context.Context, id int) (*service.SlotResponse, apierror.ErrorResponse)
	DeleteSlot(ctx context.Context, slot *service.SlotResponse) apierror.ErrorResponse
	ListSlots(ctx context.Context, doctorID int, date string) ([]*service.SlotResponse, apierror.ErrorResponse)
}

type DefaultScheduleRoute struct {
	ScheduleService ScheduleService
	Policy          AccessPolicy
}

func NewScheduleDefault(scheduleService ScheduleService, policy AccessPolicy) *DefaultScheduleRoute {
	return &DefaultScheduleRoute{ScheduleService: scheduleService, Policy: policy}
}

// managedDoctor reads the :id doctor and checks the caller may manage it.
func (s *DefaultScheduleRoute) managedDoctor(c echo.Context) (int, apierror.ErrorResponse) {
	doctorID, apierr := pathID(c, "id")
	if apierr != nil {
		return 0, apierr
	}

	if apierr = s.Policy.CanManageDoctor(c.Request().Context(), caller(c), doctorID); apierr != nil {
		return 0, apierr
	}
	return doctorID, nil
}

func (s *DefaultScheduleRoute) GetSlots(c echo.Context) error {
	doctorID, apierr := s.managedDoctor(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	date, apierr := requiredQuery(c, "date")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	slots, apierr := s.ScheduleService.ListSlots(c.Request().Context(), doctorID, date)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"slots": slots}
	return c.JSON(http.StatusOK, &resp)
}

func (s *DefaultScheduleRoute) CreateSlot(c echo.Context) error {
	doctorID, apierr := s.managedDoctor(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.CreateSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	slot, apierr := s.ScheduleService.CreateSlot(c.Request().Context(), doctorID, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, slot)
}

func (s *DefaultScheduleRoute) CreateDaySlots(c echo.Context) error {
	doctorID, apierr := s.managedDoctor(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.DaySlotsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := s.ScheduleService.CreateDaySlots(c.Request().Context(), doctorID, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *DefaultScheduleRoute) DeleteSlot(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	slot, apierr := s.ScheduleService.GetSlot(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	if apierr = s.Policy.CanManageDoctor(c.Request().Context(), caller(c), slot.DoctorID); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	if apierr = s.ScheduleService.DeleteSlot(c.Request().Context(), slot); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}
