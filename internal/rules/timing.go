package rules

import (
	"fmt"
	"slices"
	"time"

	"festsched/internal/model"
)

type TimingWarningKind string

const (
	WarnShortBreak TimingWarningKind = "short-break"
	WarnOffPeak    TimingWarningKind = "off-peak"
)

type TimingWarning struct {
	EventID string            `json:"event_id"`
	Kind    TimingWarningKind `json:"kind"`
	Message string            `json:"message"`
}

// popularTypes draw the largest crowds and belong in peak hours.
var popularTypes = []model.EventType{model.TypeMain, model.TypeDanceShow, model.TypePerformance}

// OptimizeEventTiming returns a start-ordered copy of events together with
// advisory warnings. It never moves or drops an event.
func (e *Engine) OptimizeEventTiming(events []model.Event) ([]model.Event, []TimingWarning) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b model.Event) int {
		return a.Start().Compare(b.Start())
	})

	var warnings []TimingWarning
	for i, ev := range sorted {
		if i > 0 && ev.Type == model.TypeWorkshop {
			prev := sorted[i-1]
			if gap := ev.Start().Sub(prev.End()); gap < e.policy.MinBreak {
				warnings = append(warnings, TimingWarning{
					EventID: ev.ID,
					Kind:    WarnShortBreak,
					Message: fmt.Sprintf("workshop %q starts %d minutes after %q ends; allow at least %d minutes",
						ev.Title, int(gap/time.Minute), prev.Title, int(e.policy.MinBreak/time.Minute)),
				})
			}
		}

		if slices.Contains(popularTypes, ev.Type) && e.offPeak(ev.Start()) {
			warnings = append(warnings, TimingWarning{
				EventID: ev.ID,
				Kind:    WarnOffPeak,
				Message: fmt.Sprintf("%s %q starts at %s, outside peak hours %s-%s",
					ev.Type, ev.Title, ev.Start().In(e.policy.Location).Format("15:04"),
					minuteClock(e.policy.PeakStartMinute), minuteClock(e.policy.PeakEndMinute)),
			})
		}
	}

	return sorted, warnings
}

// offPeak reports whether t is before the peak start or after the peak end
// in festival local time. The end minute itself still counts as peak.
func (e *Engine) offPeak(t time.Time) bool {
	local := t.In(e.policy.Location)
	minute := local.Hour()*60 + local.Minute()
	return minute < e.policy.PeakStartMinute || minute > e.policy.PeakEndMinute
}

func minuteClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
