package booking

import "github.com/car2go/car2go-api/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ===============================
// Purpose
// ===============================

type Purpose string

const (
	PurposeSelf        Purpose = "self"
	PurposeAccompanied Purpose = "accompanied"
)

func IsValidPurpose(p string) bool {
	return Purpose(p) == PurposeSelf || Purpose(p) == PurposeAccompanied
}

// ===============================
// Validations
// ===============================

// CanCancel checks the booking is still in a cancellable state.
func CanCancel(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanComplete checks the booking can be marked as finished.
func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusConfirmed
}
