package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/car2go/car2go-api/internal/httperr"
	"github.com/car2go/car2go-api/internal/models"
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		oStart     time.Time
		oEnd       time.Time
		want       bool
	}{
		{"identical intervals", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"partial overlap", at(10, 30), at(11, 30), at(10, 0), at(11, 0), true},
		{"contained", at(10, 15), at(10, 45), at(10, 0), at(11, 0), true},
		{"containing", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"adjacent after", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"adjacent before", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"disjoint", at(14, 0), at(15, 0), at(10, 0), at(11, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.start, tt.end, tt.oStart, tt.oEnd))
			// overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.oStart, tt.oEnd, tt.start, tt.end))
		})
	}
}

func TestValidateInterval(t *testing.T) {
	require.NoError(t, ValidateInterval(at(10, 0), at(11, 0)))

	err := ValidateInterval(at(10, 0), at(10, 0))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidInterval))

	err = ValidateInterval(at(11, 0), at(10, 0))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidInterval))
}

func TestFirstConflict(t *testing.T) {
	existing := []models.Booking{
		{ID: 1, StartTime: at(10, 0), EndTime: at(11, 0), Status: string(StatusConfirmed)},
		{ID: 2, StartTime: at(12, 0), EndTime: at(13, 0), Status: string(StatusCancelled)},
		{ID: 3, StartTime: at(14, 0), EndTime: at(15, 0), Status: string(StatusConfirmed)},
	}

	t.Run("finds overlapping confirmed booking", func(t *testing.T) {
		c := FirstConflict(existing, at(10, 30), at(11, 30), 0)
		require.NotNil(t, c)
		assert.Equal(t, uint(1), c.ID)
	})

	t.Run("cancelled bookings never block", func(t *testing.T) {
		assert.Nil(t, FirstConflict(existing, at(12, 0), at(13, 0), 0))
	})

	t.Run("own record is skipped", func(t *testing.T) {
		assert.Nil(t, FirstConflict(existing, at(10, 15), at(10, 45), 1))
	})

	t.Run("free slot", func(t *testing.T) {
		assert.Nil(t, FirstConflict(existing, at(11, 0), at(12, 0), 0))
	})
}
