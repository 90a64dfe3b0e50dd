package booking

import (
	"time"

	"github.com/car2go/car2go-api/internal/httperr"
	"github.com/car2go/car2go-api/internal/models"
)

// Overlaps reports whether [start, end) shares at least one instant with
// [otherStart, otherEnd). Intervals are half-open: a booking ending exactly
// when another starts does not conflict.
func Overlaps(start, end, otherStart, otherEnd time.Time) bool {
	return start.Before(otherEnd) && otherStart.Before(end)
}

// ValidateInterval rejects empty and inverted intervals before any
// storage access happens.
func ValidateInterval(start, end time.Time) error {
	if !start.Before(end) {
		return httperr.ErrBusiness("invalid_interval")
	}
	return nil
}

// FirstConflict returns the first confirmed booking whose interval overlaps
// [start, end), skipping the booking identified by excludeID (a booking
// never conflicts with itself on reschedule). Returns nil when the interval
// is free.
func FirstConflict(existing []models.Booking, start, end time.Time, excludeID uint) *models.Booking {
	for i := range existing {
		e := &existing[i]
		if e.ID == excludeID {
			continue
		}
		if Status(e.Status) != StatusConfirmed {
			continue
		}
		if Overlaps(start, end, e.StartTime, e.EndTime) {
			return e
		}
	}
	return nil
}
