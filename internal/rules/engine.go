package rules

import (
	"fmt"
	"time"

	"festsched/internal/model"
)

// Rule identifies the scheduling rule that produced a Decision.
type Rule string

const (
	RuleAreaOverlap        Rule = "area-overlap"
	RuleBufferTime         Rule = "buffer-time"
	RuleWorkshopDuration   Rule = "workshop-duration"
	RuleDanceShowContained Rule = "dance-show-containment"
)

// Decision is the verdict of CanScheduleEvent. Reason and Rule are set only
// when CanSchedule is false.
type Decision struct {
	CanSchedule bool   `json:"can_schedule"`
	Reason      string `json:"reason,omitempty"`
	Rule        Rule   `json:"rule,omitempty"`
}

func allow() Decision {
	return Decision{CanSchedule: true}
}

func reject(rule Rule, format string, args ...any) Decision {
	return Decision{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// CanScheduleEvent checks whether candidate may be placed in area given the
// existing schedule. Rules run in order and the first failure wins:
//
//   - no overlap with a scheduled event in the same area
//   - at least BufferTime between the candidate and same-area scheduled events
//   - workshops last at most MaxWorkshopDuration
//   - dance shows start inside a scheduled main-stage event
//
// existing is read only. An existing event with the candidate's ID is
// ignored so an event can be re-checked in place.
func (e *Engine) CanScheduleEvent(candidate model.Event, existing []model.Event, area model.Area) Decision {
	sameArea := make([]model.Event, 0, len(existing))
	for _, ex := range existing {
		if !ex.IsScheduled() || ex.Area != area {
			continue
		}
		if candidate.ID != "" && ex.ID == candidate.ID {
			continue
		}
		if Nested(candidate, ex) {
			continue
		}
		sameArea = append(sameArea, ex)
	}

	for _, ex := range sameArea {
		if candidate.Range.Overlaps(ex.Range) {
			return reject(RuleAreaOverlap, "%q overlaps %q in %s (%s - %s)",
				candidate.Title, ex.Title, area, clock(ex.Start()), clock(ex.End()))
		}
	}

	for _, ex := range sameArea {
		if gap := candidate.Range.GapTo(ex.Range); gap < e.policy.BufferTime {
			return reject(RuleBufferTime, "only %d minutes between %q and %q in %s; at least %d minutes are required",
				int(gap/time.Minute), candidate.Title, ex.Title, area, int(e.policy.BufferTime/time.Minute))
		}
	}

	if candidate.Type == model.TypeWorkshop && candidate.Range.Duration() > e.policy.MaxWorkshopDuration {
		return reject(RuleWorkshopDuration, "workshop %q lasts %d minutes; workshops are limited to %d minutes",
			candidate.Title, candidate.DurationMinutes(), int(e.policy.MaxWorkshopDuration/time.Minute))
	}

	if candidate.Type == model.TypeDanceShow {
		if _, ok := HostEvent(candidate, existing); !ok {
			return reject(RuleDanceShowContained, "dance show %q at %s is not inside any scheduled main-stage event",
				candidate.Title, clock(candidate.Start()))
		}
	}

	return allow()
}

// HostEvent finds the scheduled main-stage event whose range contains the
// start of show.
func HostEvent(show model.Event, events []model.Event) (model.Event, bool) {
	for _, ev := range events {
		if ev.Area != model.AreaMainStage || !ev.IsScheduled() || ev.Type == model.TypeDanceShow {
			continue
		}
		if ev.Range.Contains(show.Start()) {
			return ev, true
		}
	}
	return model.Event{}, false
}

// Nested reports whether one of the events is a dance show sitting inside
// the other, a main-stage host slot. Such pairs share the stage by design
// and are exempt from overlap and buffer checks.
func Nested(a, b model.Event) bool {
	isHost := func(host, show model.Event) bool {
		return show.Type == model.TypeDanceShow &&
			host.Type != model.TypeDanceShow &&
			host.Area == model.AreaMainStage &&
			host.Range.Contains(show.Start())
	}
	return isHost(a, b) || isHost(b, a)
}

// AreEventsCompatible reports false when the events share an instructor and
// their times overlap. Area does not matter.
func AreEventsCompatible(a, b model.Event) bool {
	if !a.Range.Overlaps(b.Range) {
		return true
	}
	return !a.SharesInstructorWith(b)
}

func clock(t time.Time) string {
	return t.Format("Mon 15:04")
}
