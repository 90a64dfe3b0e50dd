package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/car2go/car2go-api/internal/domain/booking"
	"github.com/car2go/car2go-api/internal/httperr"
	"github.com/car2go/car2go-api/internal/models"
)

// BookingMemoryRepository is a mutex-guarded map implementation of the
// booking store. It backs the scheduler tests and local development without
// postgres; ids are assigned sequentially like the database would.
type BookingMemoryRepository struct {
	mu       sync.Mutex
	bookings map[uint]models.Booking
	nextID   uint
}

func NewBookingMemoryRepository() *BookingMemoryRepository {
	return &BookingMemoryRepository{
		bookings: make(map[uint]models.Booking),
		nextID:   1,
	}
}

func (r *BookingMemoryRepository) ListActiveForCar(
	ctx context.Context,
	carID uint,
) ([]models.Booking, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if b.CarID == carID && b.Status == string(domain.StatusConfirmed) {
			out = append(out, b)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})

	return out, nil
}

func (r *BookingMemoryRepository) Create(
	ctx context.Context,
	b *models.Booking,
) error {

	if err := domain.ValidateInterval(b.StartTime, b.EndTime); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = now
	b.UpdatedAt = now

	r.bookings[b.ID] = *b
	return nil
}

func (r *BookingMemoryRepository) GetByID(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeBookingNotFound)
	}

	return &b, nil
}

func (r *BookingMemoryRepository) Update(
	ctx context.Context,
	b *models.Booking,
) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return httperr.ErrBusiness(httperr.CodeBookingNotFound)
	}

	b.UpdatedAt = time.Now()
	r.bookings[b.ID] = *b
	return nil
}

func (r *BookingMemoryRepository) Delete(
	ctx context.Context,
	id uint,
) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return httperr.ErrBusiness(httperr.CodeBookingNotFound)
	}

	delete(r.bookings, id)
	return nil
}

func (r *BookingMemoryRepository) ListAll(
	ctx context.Context,
) ([]models.Booking, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})

	return out, nil
}

func (r *BookingMemoryRepository) ListForUser(
	ctx context.Context,
	userID uint,
) ([]models.Booking, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})

	return out, nil
}

// Compile-time check
var _ domain.Store = (*BookingMemoryRepository)(nil)
