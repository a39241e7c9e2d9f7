package entity

// AvailabilitySlot is one bookable instant of a doctor. Datetime holds
// UTC epoch milliseconds. IsBooked only ever goes from false to true.
type AvailabilitySlot struct {
	ID       int   `gorm:"primaryKey"`
	DoctorID int   `gorm:"not null;uniqueIndex:idx_slot_doctor_datetime"` // References: doctors(id)
	Datetime int64 `gorm:"not null;uniqueIndex:idx_slot_doctor_datetime"`
	IsBooked bool  `gorm:"not null;default:false"`

	// Relations
	Doctor Doctor `gorm:"foreignKey:DoctorID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}
