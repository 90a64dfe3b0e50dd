package validators

import (
	"time"

	"github.com/car2go/car2go-api/internal/models"
)

// RoleFields holds the role-dependent registration fields.
type RoleFields struct {
	Role          string
	LicenseNumber *string
	LicenseDate   *time.Time
	BookletNumber *string
}

// CheckRoleFields enforces the pairing the users table also constrains:
// an apprentice must carry a booklet number, a companion a licence number
// and the date the licence was obtained. Returns an error code suitable
// for the HTTP layer, or "".
func CheckRoleFields(f RoleFields) string {
	switch f.Role {
	case models.RoleApprentice:
		if f.BookletNumber == nil || *f.BookletNumber == "" {
			return "missing_booklet_number"
		}
	case models.RoleCompanion:
		if f.LicenseNumber == nil || *f.LicenseNumber == "" {
			return "missing_license_number"
		}
		if f.LicenseDate == nil {
			return "missing_license_date"
		}
	default:
		return "invalid_role"
	}
	return ""
}
