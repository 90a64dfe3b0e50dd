package models

import "time"

// Supervision links an apprentice to the companion allowed to
// supervise their accompanied drives.
type Supervision struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ApprenticeID uint `json:"apprenti_id"`
	Apprentice   User `gorm:"foreignKey:ApprenticeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	CompanionID uint `json:"accompagnateur_id"`
	Companion   User `gorm:"foreignKey:CompanionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"accompagnateur,omitempty"`

	Relationship string `gorm:"size:50" json:"lien"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
