package entity

type City struct {
	ID       int    `gorm:"primaryKey"`
	Name     string `gorm:"not null;uniqueIndex"`
	IsActive bool   `gorm:"not null;default:true"`
}

type Clinic struct {
	ID      int    `gorm:"primaryKey"`
	Name    string `gorm:"not null"`
	Address string `gorm:"not null"`
	CityID  int    `gorm:"not null;index"` // References: cities(id)

	// Relations
	City City `gorm:"foreignKey:CityID;references:ID"`
}

type Doctor struct {
	ID        int    `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Specialty string `gorm:"not null;index"`
	Slug      string `gorm:"not null;uniqueIndex"`
	Bio       *string
	ClinicID  int `gorm:"not null;index"` // References: clinics(id)

	// SecretarySub is the identity provider subject of the secretary
	// managing this doctor's schedule, if any.
	SecretarySub *string `gorm:"index"`

	// Relations
	Clinic Clinic `gorm:"foreignKey:ClinicID;references:ID"`
}
