package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/car2go/car2go-api/internal/domain/booking"
	"github.com/car2go/car2go-api/internal/httperr"
	"github.com/car2go/car2go-api/internal/models"
)

func slot(h int) (time.Time, time.Time) {
	start := time.Date(2025, 3, 10, h, 0, 0, 0, time.UTC)
	return start, start.Add(time.Hour)
}

func seed(t *testing.T, r *BookingMemoryRepository, carID, userID uint, h int, status domain.Status) *models.Booking {
	t.Helper()

	start, end := slot(h)
	b := &models.Booking{
		CarID:     carID,
		UserID:    userID,
		StartTime: start,
		EndTime:   end,
		Purpose:   string(domain.PurposeSelf),
		Status:    string(status),
	}
	require.NoError(t, r.Create(context.Background(), b))
	return b
}

func TestMemoryRepository_CreateAssignsSequentialIDs(t *testing.T) {
	r := NewBookingMemoryRepository()

	b1 := seed(t, r, 1, 7, 10, domain.StatusConfirmed)
	b2 := seed(t, r, 1, 7, 12, domain.StatusConfirmed)

	assert.Equal(t, uint(1), b1.ID)
	assert.Equal(t, uint(2), b2.ID)
	assert.False(t, b1.CreatedAt.IsZero())
}

func TestMemoryRepository_CreateRejectsInvalidInterval(t *testing.T) {
	r := NewBookingMemoryRepository()

	start, _ := slot(10)
	err := r.Create(context.Background(), &models.Booking{
		CarID:     1,
		StartTime: start,
		EndTime:   start,
	})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidInterval))
}

func TestMemoryRepository_ListActiveForCar(t *testing.T) {
	r := NewBookingMemoryRepository()
	ctx := context.Background()

	seed(t, r, 1, 7, 14, domain.StatusConfirmed)
	seed(t, r, 1, 7, 10, domain.StatusConfirmed)
	seed(t, r, 1, 7, 12, domain.StatusCancelled)
	seed(t, r, 2, 7, 10, domain.StatusConfirmed)

	out, err := r.ListActiveForCar(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// confirmed only, ordered by start time
	assert.Equal(t, 10, out[0].StartTime.Hour())
	assert.Equal(t, 14, out[1].StartTime.Hour())
}

func TestMemoryRepository_GetUpdateDelete(t *testing.T) {
	r := NewBookingMemoryRepository()
	ctx := context.Background()

	b := seed(t, r, 1, 7, 10, domain.StatusConfirmed)

	got, err := r.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.CarID, got.CarID)

	got.Status = string(domain.StatusCompleted)
	require.NoError(t, r.Update(ctx, got))

	again, err := r.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), again.Status)

	require.NoError(t, r.Delete(ctx, b.ID))

	_, err = r.GetByID(ctx, b.ID)
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))
}

func TestMemoryRepository_NotFoundSemantics(t *testing.T) {
	r := NewBookingMemoryRepository()
	ctx := context.Background()

	_, err := r.GetByID(ctx, 42)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))

	err = r.Update(ctx, &models.Booking{ID: 42})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))

	err = r.Delete(ctx, 42)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))
}

func TestMemoryRepository_ListForUser(t *testing.T) {
	r := NewBookingMemoryRepository()
	ctx := context.Background()

	seed(t, r, 1, 7, 10, domain.StatusConfirmed)
	seed(t, r, 2, 7, 12, domain.StatusCancelled)
	seed(t, r, 1, 8, 14, domain.StatusConfirmed)

	out, err := r.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
