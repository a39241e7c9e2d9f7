package entity

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
)

type Appointment struct {
	ID           int               `gorm:"primaryKey"`
	Reference    string            `gorm:"not null;uniqueIndex"`
	SlotID       int               `gorm:"not null;uniqueIndex"` // References: availability_slots(id)
	DoctorID     int               `gorm:"not null;index:idx_appointment_doctor_datetime"`
	Datetime     int64             `gorm:"not null;index:idx_appointment_doctor_datetime"`
	PatientName  string            `gorm:"not null"`
	PatientPhone string            `gorm:"not null"`
	Status       AppointmentStatus `gorm:"not null;default:PENDING"`
	CreatedAt    int64             `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt    int64             `gorm:"not null;autoUpdateTime:milli"`

	// Relations
	Slot   AvailabilitySlot `gorm:"foreignKey:SlotID;references:ID;constraint:OnDelete:RESTRICT"`
	Doctor Doctor           `gorm:"foreignKey:DoctorID;references:ID"`
}

// CanTransitionTo reports whether the desk may move an appointment
// from its current status to next.
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	switch a.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted
	}
	return false
}
