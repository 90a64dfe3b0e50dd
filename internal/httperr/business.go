package httperr

import (
	"errors"
	"strings"
)

// Codes shared between the scheduler and the HTTP layer. Callers branch on
// the code, not only on the HTTP status.
const (
	CodeInvalidInterval = "invalid_interval"
	CodeInvalidPurpose  = "invalid_purpose"
	CodeTimeConflict    = "time_conflict"
	CodeBookingNotFound = "booking_not_found"
	CodeInvalidState    = "invalid_state"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsAnyBusiness(err error) bool {
	var be BusinessError
	return errors.As(err, &be)
}

// IsExclusionConflict detects a postgres exclusion-constraint violation
// (SQLSTATE 23P01). The constraint is only a backstop behind the per-car
// critical section, but when it does fire the caller must still see a
// conflict, not an internal error.
func IsExclusionConflict(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "23P01")
}
