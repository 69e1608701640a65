package model

import (
	"fmt"
	"time"
)

// TimeRange is an immutable half-open interval [start, end).
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange returns ErrInvalidTimeRange unless start is strictly before end.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("%w (start=%s end=%s)", ErrInvalidTimeRange,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeRange{start: start, end: end}, nil
}

// MustTimeRange is NewTimeRange for literals known to be valid. It panics otherwise.
func MustTimeRange(start, end time.Time) TimeRange {
	r, err := NewTimeRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

func (r TimeRange) Start() time.Time { return r.start }
func (r TimeRange) End() time.Time   { return r.end }

func (r TimeRange) Duration() time.Duration {
	return r.end.Sub(r.start)
}

// DurationInMinutes truncates partial minutes.
func (r TimeRange) DurationInMinutes() int {
	return int(r.Duration() / time.Minute)
}

// IsZero reports whether r is the zero value (never produced by NewTimeRange).
func (r TimeRange) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

// Overlaps uses half-open semantics: ranges that only touch at an endpoint
// do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start.Before(other.end) && r.end.After(other.start)
}

// Contains reports whether t lies in [start, end).
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.start) && t.Before(r.end)
}

// GapTo returns the absolute distance between the two ranges. Overlapping
// ranges have a zero gap.
func (r TimeRange) GapTo(other TimeRange) time.Duration {
	if r.Overlaps(other) {
		return 0
	}
	after := absDuration(r.start.Sub(other.end))
	before := absDuration(other.start.Sub(r.end))
	return min(after, before)
}

func (r TimeRange) String() string {
	return r.start.Format(time.RFC3339) + "/" + r.end.Format(time.RFC3339)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
