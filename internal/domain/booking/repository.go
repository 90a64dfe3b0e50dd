package booking

import (
	"context"

	"github.com/car2go/car2go-api/internal/models"
)

// Store is the persistence boundary of the scheduling engine. Mutations are
// atomic per record; the read-then-write sequence around conflict checks is
// serialized by the scheduler, not here.
type Store interface {
	// -------- Conflict scan --------

	// ListActiveForCar returns confirmed bookings for the car,
	// ordered by start time ascending.
	ListActiveForCar(
		ctx context.Context,
		carID uint,
	) ([]models.Booking, error)

	// -------- Booking (CRUD) --------

	Create(
		ctx context.Context,
		b *models.Booking,
	) error

	GetByID(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	Update(
		ctx context.Context,
		b *models.Booking,
	) error

	Delete(
		ctx context.Context,
		id uint,
	) error

	// -------- Listings for the HTTP layer --------

	ListAll(
		ctx context.Context,
	) ([]models.Booking, error)

	ListForUser(
		ctx context.Context,
		userID uint,
	) ([]models.Booking, error)
}
