package dto

import (
	"time"

	"github.com/car2go/car2go-api/internal/models"
)

// BookingWithCarDTO is the "my bookings" listing item: the booking joined
// with the car details the frontend shows on the reservation card.
type BookingWithCarDTO struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	CarID     uint      `json:"car_id"`
	Reference string    `json:"reference"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Purpose   string    `json:"purpose"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Car models.Car `json:"car"`
}

func NewBookingWithCar(b models.Booking) BookingWithCarDTO {
	return BookingWithCarDTO{
		ID:        b.ID,
		UserID:    b.UserID,
		CarID:     b.CarID,
		Reference: b.Reference,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Purpose:   b.Purpose,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Car:       b.Car,
	}
}
