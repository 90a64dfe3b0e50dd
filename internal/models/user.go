package models

import "time"

const (
	RoleApprentice = "apprenti"
	RoleCompanion  = "accompagnateur"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	LastName  string `gorm:"size:50;not null" json:"nom"`
	FirstName string `gorm:"size:50;not null" json:"prenom"`

	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	Phone     string    `gorm:"size:20;not null" json:"telephone"`
	Address   string    `gorm:"size:200;not null" json:"adresse"`
	BirthDate time.Time `gorm:"type:date" json:"date_naissance"`

	// "apprenti" carries a booklet number, "accompagnateur" a licence
	// number plus the date the licence was obtained.
	Role          string     `gorm:"size:20;not null" json:"role"`
	LicenseDate   *time.Time `gorm:"type:date" json:"license_date,omitempty"`
	LicenseNumber *string    `gorm:"size:20" json:"numero_permis,omitempty"`
	BookletNumber *string    `gorm:"size:20" json:"numero_livret,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
