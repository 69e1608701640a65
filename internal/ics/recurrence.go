package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"festsched/internal/model"
)

// maxReportedOccurrences caps how far a rule is expanded when counting.
const maxReportedOccurrences = 1000

// checkRecurrence always fails for a draft carrying an RRULE. The error
// says how many times the rule would fire inside window so the editor can
// split it into single slots.
func checkRecurrence(d Draft, window model.TimeRange) error {
	r, err := rrule.StrToRRule(d.RRule)
	if err != nil {
		return fmt.Errorf("%w: unreadable RRULE %q: %v", ErrRecurring, d.RRule, err)
	}
	if d.Input.StartTime == nil {
		return fmt.Errorf("%w: RRULE without DTSTART", ErrRecurring)
	}
	r.DTStart(*d.Input.StartTime)

	if window.IsZero() {
		return fmt.Errorf("%w: %q repeats (%s)", ErrRecurring, d.Input.Title, d.RRule)
	}
	n := len(occurrences(r, window))
	return fmt.Errorf("%w: %q repeats %d times during the festival (%s)", ErrRecurring, d.Input.Title, n, d.RRule)
}

func occurrences(r *rrule.RRule, window model.TimeRange) []time.Time {
	out := r.Between(window.Start(), window.End(), true)
	if len(out) > maxReportedOccurrences {
		out = out[:maxReportedOccurrences]
	}
	return out
}
