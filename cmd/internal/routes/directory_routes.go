package routes

import (
	"context"
	"docbook/cmd/internal/service"
	"docbook/cmd/internal/utils/apierror"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type DirectoryService interface {
	GetCities(ctx context.Context) ([]*service.CityResponse, apierror.ErrorResponse)
	SearchDoctors(ctx context.Context, cityID *int, specialty string) ([]*service.DoctorResponse, apierror.ErrorResponse)
	GetDoctor(ctx context.Context, slug string) (*service.DoctorResponse, apierror.ErrorResponse)
}

type DefaultDirectoryRoute struct {
	DirectoryService DirectoryService
}

func NewDirectoryDefault(directoryService DirectoryService) *DefaultDirectoryRoute {
	return &DefaultDirectoryRoute{DirectoryService: directoryService}
}

func (d *DefaultDirectoryRoute) GetCities(c echo.Context) error {
	cities, apierr := d.DirectoryService.GetCities(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"cities": cities}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDirectoryRoute) SearchDoctors(c echo.Context) error {
	cityID, apierr := optionalQueryID(c, "city_id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	doctors, apierr := d.DirectoryService.SearchDoctors(c.Request().Context(), cityID, c.QueryParam("specialty"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"doctors": doctors}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDirectoryRoute) GetDoctor(c echo.Context) error {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("slug"))
	}

	doctor, apierr := d.DirectoryService.GetDoctor(c.Request().Context(), slug)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, doctor)
}
