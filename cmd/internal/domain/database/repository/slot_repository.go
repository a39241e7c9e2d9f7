package repository

import (
	"context"
	"docbook/cmd/internal/domain/entity"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultSlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *DefaultSlotRepository {
	return &DefaultSlotRepository{db: db}
}

// Reserve claims the free slot matching appt's doctor and instant and
// inserts appt for it, all in one transaction. When no free slot matches,
// or the appointment insert hits the slot's unique reference, nothing is
// written and ErrSlotUnavailable is returned.
func (s *DefaultSlotRepository) Reserve(ctx context.Context, appt *entity.Appointment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.AvailabilitySlot{}).
			Where("doctor_id = ?", appt.DoctorID).
			Where("datetime = ?", appt.Datetime).
			Where("is_booked = ?", false).
			Update("is_booked", true)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrSlotUnavailable
		}

		var slot entity.AvailabilitySlot
		err := tx.Select("id").
			Where("doctor_id = ? AND datetime = ?", appt.DoctorID, appt.Datetime).
			Take(&slot).Error
		if err != nil {
			return err
		}

		appt.SlotID = slot.ID
		err = tx.Omit(clause.Associations).Create(appt).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlotUnavailable
		}
		return err
	})
}

// FindAvailable returns the doctor's free slots in [from, to), oldest first.
func (s *DefaultSlotRepository) FindAvailable(ctx context.Context, doctorID int, from, to int64) ([]*entity.AvailabilitySlot, error) {
	var slots []*entity.AvailabilitySlot
	err := s.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Where("is_booked = ?", false).
		Where("datetime >= ?", from).
		Where("datetime < ?", to).
		Order("datetime asc").
		Find(&slots).Error
	return slots, err
}

// FindBetween is FindAvailable including booked slots.
func (s *DefaultSlotRepository) FindBetween(ctx context.Context, doctorID int, from, to int64) ([]*entity.AvailabilitySlot, error) {
	var slots []*entity.AvailabilitySlot
	err := s.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Where("datetime >= ?", from).
		Where("datetime < ?", to).
		Order("datetime asc").
		Find(&slots).Error
	return slots, err
}

func (s *DefaultSlotRepository) FindByID(ctx context.Context, id int) (*entity.AvailabilitySlot, error) {
	var slot entity.AvailabilitySlot
	err := s.db.WithContext(ctx).First(&slot, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &slot, err
}

func (s *DefaultSlotRepository) FindByInstant(ctx context.Context, doctorID int, datetime int64) (*entity.AvailabilitySlot, error) {
	var slot entity.AvailabilitySlot
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND datetime = ?", doctorID, datetime).
		Take(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &slot, err
}

func (s *DefaultSlotRepository) Create(ctx context.Context, slot *entity.AvailabilitySlot) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(slot).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlot
	}
	return err
}

// CreateMany inserts a free slot for every instant, skipping instants the
// doctor already has. It returns how many slots were created.
func (s *DefaultSlotRepository) CreateMany(ctx context.Context, doctorID int, instants []int64) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, at := range instants {
			slot := &entity.AvailabilitySlot{DoctorID: doctorID, Datetime: at}
			res := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "datetime"}},
					DoNothing: true,
				}).
				Create(slot)
			if res.Error != nil {
				return res.Error
			}
			created += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// DeleteFree removes a slot only while it is still free. It returns
// ErrSlotNotFound or ErrSlotBooked when nothing was deleted.
func (s *DefaultSlotRepository) DeleteFree(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).
			Where("is_booked = ?", false).
			Delete(&entity.AvailabilitySlot{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 1 {
			return nil
		}

		var count int64
		if err := tx.Model(&entity.AvailabilitySlot{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrSlotNotFound
		}
		return ErrSlotBooked
	})
}

type SlotCounts struct {
	Free   int64
	Booked int64
}

// CountByState counts slots per booked flag, optionally for one doctor.
func (s *DefaultSlotRepository) CountByState(ctx context.Context, doctorID *int) (*SlotCounts, error) {
	var rows []struct {
		IsBooked bool
		Total    int64
	}

	query := s.db.WithContext(ctx).
		Model(&entity.AvailabilitySlot{}).
		Select("is_booked, COUNT(*) as total")
	if doctorID != nil {
		query = query.Where("doctor_id = ?", *doctorID)
	}

	if err := query.Group("is_booked").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := &SlotCounts{}
	for _, row := range rows {
		if row.IsBooked {
			counts.Booked = row.Total
		} else {
			counts.Free = row.Total
		}
	}
	return counts, nil
}
