package models

import "time"

const (
	CarTypeDualControl = "double commande"
	CarTypeClassic     = "classique"
)

type Car struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name  string `gorm:"size:100;not null" json:"nom"`
	Model string `gorm:"size:100;not null" json:"modele"`
	Year  int    `gorm:"not null" json:"annee_fab"`

	// "double commande" (dual control, for accompanied lessons) or "classique".
	Type string `gorm:"size:20;not null" json:"type"`

	Plate string `gorm:"size:20;uniqueIndex;not null" json:"plaque"`

	TechnicalInspection time.Time `gorm:"type:date" json:"controle_technique"`
	PricePerHour        float64   `gorm:"type:decimal(10,2);default:20.00" json:"prix_par_heure"`
	Available           bool      `gorm:"default:true" json:"disponible"`
	ImageURL            string    `gorm:"size:255" json:"image_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
