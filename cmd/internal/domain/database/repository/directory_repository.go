package repository

import (
	"context"
	"docbook/cmd/internal/domain/entity"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultDirectoryRepository reads cities, clinics and doctors. Writes
// exist only for seeding.
type DefaultDirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) *DefaultDirectoryRepository {
	return &DefaultDirectoryRepository{db: db}
}

func (d *DefaultDirectoryRepository) DoctorExists(ctx context.Context, id int) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&entity.Doctor{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (d *DefaultDirectoryRepository) FindDoctorByID(ctx context.Context, id int) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := d.db.WithContext(ctx).First(&doctor, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &doctor, err
}

func (d *DefaultDirectoryRepository) FindDoctorBySlug(ctx context.Context, slug string) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := d.db.WithContext(ctx).
		Preload("Clinic.City").
		Where("slug = ?", slug).
		Take(&doctor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &doctor, err
}

// SearchDoctors lists doctors of active cities, filtered by city and
// specialty when given.
func (d *DefaultDirectoryRepository) SearchDoctors(ctx context.Context, cityID *int, specialty string) ([]*entity.Doctor, error) {
	query := d.db.WithContext(ctx).
		Preload("Clinic.City").
		Joins("JOIN clinics ON clinics.id = doctors.clinic_id").
		Joins("JOIN cities ON cities.id = clinics.city_id").
		Where("cities.is_active = ?", true)

	if cityID != nil {
		query = query.Where("clinics.city_id = ?", *cityID)
	}
	if specialty != "" {
		query = query.Where("LOWER(doctors.specialty) = LOWER(?)", specialty)
	}

	var doctors []*entity.Doctor
	err := query.Order("doctors.name asc").Find(&doctors).Error
	return doctors, err
}

func (d *DefaultDirectoryRepository) FindActiveCities(ctx context.Context) ([]*entity.City, error) {
	var cities []*entity.City
	err := d.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&cities).Error
	return cities, err
}

// UpsertCity inserts the city or loads the existing one by name.
func (d *DefaultDirectoryRepository) UpsertCity(ctx context.Context, city *entity.City) error {
	return d.db.WithContext(ctx).
		Where(entity.City{Name: city.Name}).
		Attrs(entity.City{IsActive: city.IsActive}).
		FirstOrCreate(city).Error
}

// UpsertClinic inserts the clinic or loads the existing one by name.
func (d *DefaultDirectoryRepository) UpsertClinic(ctx context.Context, clinic *entity.Clinic) error {
	return d.db.WithContext(ctx).
		Omit(clause.Associations).
		Where(entity.Clinic{Name: clinic.Name}).
		Attrs(entity.Clinic{Address: clinic.Address, CityID: clinic.CityID}).
		FirstOrCreate(clinic).Error
}

// UpsertDoctor inserts the doctor or loads the existing one by slug.
func (d *DefaultDirectoryRepository) UpsertDoctor(ctx context.Context, doctor *entity.Doctor) error {
	return d.db.WithContext(ctx).
		Omit(clause.Associations).
		Where(entity.Doctor{Slug: doctor.Slug}).
		Attrs(entity.Doctor{
			Name:         doctor.Name,
			Specialty:    doctor.Specialty,
			Bio:          doctor.Bio,
			ClinicID:     doctor.ClinicID,
			SecretarySub: doctor.SecretarySub,
		}).
		FirstOrCreate(doctor).Error
}
