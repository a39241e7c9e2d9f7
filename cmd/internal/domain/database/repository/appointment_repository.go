package repository

import (
	"context"
	"docbook/cmd/internal/domain/entity"
	"errors"

	"gorm.io/gorm"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(ctx context.Context, id int) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

// FindByDoctor finds the doctor's appointments in [from, to), oldest first.
func (a *DefaultAppointmentRepository) FindByDoctor(ctx context.Context, doctorID int, from, to int64) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Where("datetime >= ?", from).
		Where("datetime < ?", to).
		Order("datetime asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindBySlot(ctx context.Context, doctorID int, datetime int64) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("doctor_id = ? AND datetime = ?", doctorID, datetime).
		Find(&appts).Error
	return appts, err
}

// UpdateStatus moves appt from its loaded status to next. If the stored
// status no longer matches, nothing changes and ErrStaleStatus is returned.
func (a *DefaultAppointmentRepository) UpdateStatus(ctx context.Context, appt *entity.Appointment, next entity.AppointmentStatus, now int64) error {
	res := a.db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, appt.Status).
		Updates(map[string]any{"status": next, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}

	appt.Status = next
	appt.UpdatedAt = now
	return nil
}

// CountByStatus counts appointments per status, optionally for one doctor.
func (a *DefaultAppointmentRepository) CountByStatus(ctx context.Context, doctorID *int) (map[entity.AppointmentStatus]int64, error) {
	var rows []struct {
		Status entity.AppointmentStatus
		Total  int64
	}

	query := a.db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Select("status, COUNT(*) as total")
	if doctorID != nil {
		query = query.Where("doctor_id = ?", *doctorID)
	}

	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entity.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
