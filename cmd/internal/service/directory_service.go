package service

import (
	"context"
	"docbook/cmd/internal/domain/entity"
	"docbook/cmd/internal/utils/apierror"
	"strings"

	"github.com/labstack/gommon/log"
)

type DirectoryRepository interface {
	FindDoctorBySlug(ctx context.Context, slug string) (*entity.Doctor, error)
	SearchDoctors(ctx context.Context, cityID *int, specialty string) ([]*entity.Doctor, error)
	FindActiveCities(ctx context.Context) ([]*entity.City, error)
}

type CityResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type DoctorResponse struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Specialty string  `json:"specialty"`
	Slug      string  `json:"slug"`
	Bio       *string `json:"bio,omitempty"`
	Clinic    string  `json:"clinic"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
}

type DefaultDirectoryService struct {
	DirectoryRepo DirectoryRepository
}

func NewDirectoryService(directoryRepo DirectoryRepository) *DefaultDirectoryService {
	return &DefaultDirectoryService{DirectoryRepo: directoryRepo}
}

func (d *DefaultDirectoryService) GetCities(ctx context.Context) ([]*CityResponse, apierror.ErrorResponse) {
	cities, err := d.DirectoryRepo.FindActiveCities(ctx)
	if err != nil {
		log.Errorf("failed to fetch cities: %v", err)
		return nil, apierror.StorageUnavailableError
	}

	resp := make([]*CityResponse, len(cities))
	for i, city := range cities {
		resp[i] = &CityResponse{ID: city.ID, Name: city.Name}
	}
	return resp, nil
}

func (d *DefaultDirectoryService) SearchDoctors(ctx context.Context, cityID *int, specialty string) ([]*DoctorResponse, apierror.ErrorResponse) {
	doctors, err := d.DirectoryRepo.SearchDoctors(ctx, cityID, strings.TrimSpace(specialty))
	if err != nil {
		log.Errorf("failed to search doctors: %v", err)
		return nil, apierror.StorageUnavailableError
	}

	resp := make([]*DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		resp[i] = toDoctorResponse(doctor)
	}
	return resp, nil
}

func (d *DefaultDirectoryService) GetDoctor(ctx context.Context, slug string) (*DoctorResponse, apierror.ErrorResponse) {
	doctor, err := d.DirectoryRepo.FindDoctorBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		log.Errorf("failed to fetch doctor %q: %v", slug, err)
		return nil, apierror.StorageUnavailableError
	}

	if doctor == nil {
		return nil, apierror.DoctorNotFoundError
	}
	return toDoctorResponse(doctor), nil
}

func toDoctorResponse(doctor *entity.Doctor) *DoctorResponse {
	return &DoctorResponse{
		ID:        doctor.ID,
		Name:      doctor.Name,
		Specialty: doctor.Specialty,
		Slug:      doctor.Slug,
		Bio:       doctor.Bio,
		Clinic:    doctor.Clinic.Name,
		Address:   doctor.Clinic.Address,
		City:      doctor.Clinic.City.Name,
	}
}
