package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 13, hour, minute, 0, 0, time.UTC)
}

func TestNewTimeRange(t *testing.T) {
	t.Parallel()

	r, err := NewTimeRange(at(9, 0), at(10, 30))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, r.Duration())
	assert.Equal(t, 90, r.DurationInMinutes())

	_, err = NewTimeRange(at(10, 0), at(9, 0))
	require.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = NewTimeRange(at(10, 0), at(10, 0))
	require.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestTimeRange_Overlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b TimeRange
		want bool
	}{
		{"disjoint", MustTimeRange(at(9, 0), at(10, 0)), MustTimeRange(at(11, 0), at(12, 0)), false},
		{"touching endpoints", MustTimeRange(at(9, 0), at(10, 0)), MustTimeRange(at(10, 0), at(11, 0)), false},
		{"partial", MustTimeRange(at(9, 0), at(10, 30)), MustTimeRange(at(10, 0), at(11, 0)), true},
		{"nested", MustTimeRange(at(9, 0), at(12, 0)), MustTimeRange(at(10, 0), at(11, 0)), true},
		{"identical", MustTimeRange(at(9, 0), at(10, 0)), MustTimeRange(at(9, 0), at(10, 0)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestTimeRange_SelfOverlap(t *testing.T) {
	r := MustTimeRange(at(20, 0), at(20, 1))
	assert.True(t, r.Overlaps(r))
}

func TestTimeRange_Contains(t *testing.T) {
	r := MustTimeRange(at(20, 0), at(23, 0))

	assert.True(t, r.Contains(at(20, 0)))
	assert.True(t, r.Contains(at(22, 59)))
	assert.False(t, r.Contains(at(23, 0)))
	assert.False(t, r.Contains(at(19, 59)))
}

func TestTimeRange_GapTo(t *testing.T) {
	a := MustTimeRange(at(9, 0), at(10, 0))

	assert.Equal(t, 15*time.Minute, a.GapTo(MustTimeRange(at(10, 15), at(11, 0))))
	assert.Equal(t, 30*time.Minute, a.GapTo(MustTimeRange(at(8, 0), at(8, 30))))
	assert.Equal(t, time.Duration(0), a.GapTo(MustTimeRange(at(9, 30), at(11, 0))))
	assert.Equal(t, time.Duration(0), a.GapTo(MustTimeRange(at(10, 0), at(11, 0))))
}
