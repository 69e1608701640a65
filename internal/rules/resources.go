package rules

import (
	"fmt"
	"slices"
	"sort"

	"festsched/internal/model"
)

// Resources is the pool a schedule may draw from. An empty pool means the
// corresponding check is skipped.
type Resources struct {
	Instructors []string `json:"instructors"`
	Equipment   []string `json:"equipment"`
	Venues      []string `json:"venues"`
}

type ConflictKind string

const (
	ConflictInstructorUnavailable  ConflictKind = "instructor-unavailable"
	ConflictInstructorDoubleBooked ConflictKind = "instructor-double-booked"
	ConflictEquipmentUnavailable   ConflictKind = "equipment-unavailable"
	ConflictVenueUnavailable       ConflictKind = "venue-unavailable"
)

type Conflict struct {
	Kind       ConflictKind `json:"kind"`
	ResourceID string       `json:"resource_id"`
	EventIDs   []string     `json:"event_ids"`
	Message    string       `json:"message"`
}

type AllocationReport struct {
	IsValid   bool       `json:"is_valid"`
	Conflicts []Conflict `json:"conflicts"`
}

// ValidateResourceAllocation reports every resource conflict in events.
// It is a diagnostic and does not stop at the first problem. Cancelled
// events hold no resources.
func ValidateResourceAllocation(events []model.Event, res Resources) AllocationReport {
	active := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Status != model.StatusCancelled {
			active = append(active, ev)
		}
	}

	conflicts := make([]Conflict, 0)

	timelines := make(map[string][]model.Event)
	for _, ev := range active {
		for _, id := range ev.InstructorIDs() {
			timelines[id] = append(timelines[id], ev)
		}
	}
	instructorIDs := make([]string, 0, len(timelines))
	for id := range timelines {
		instructorIDs = append(instructorIDs, id)
	}
	sort.Strings(instructorIDs)

	for _, id := range instructorIDs {
		timeline := timelines[id]
		slices.SortStableFunc(timeline, func(a, b model.Event) int {
			return a.Start().Compare(b.Start())
		})

		if len(res.Instructors) > 0 && !slices.Contains(res.Instructors, id) {
			conflicts = append(conflicts, Conflict{
				Kind:       ConflictInstructorUnavailable,
				ResourceID: id,
				EventIDs:   eventIDs(timeline),
				Message:    fmt.Sprintf("instructor %s is not in the available pool", id),
			})
		}

		for i := 0; i < len(timeline); i++ {
			for j := i + 1; j < len(timeline); j++ {
				if !timeline[i].Range.Overlaps(timeline[j].Range) {
					continue
				}
				conflicts = append(conflicts, Conflict{
					Kind:       ConflictInstructorDoubleBooked,
					ResourceID: id,
					EventIDs:   []string{timeline[i].ID, timeline[j].ID},
					Message: fmt.Sprintf("instructor %s teaches %q and %q at the same time",
						id, timeline[i].Title, timeline[j].Title),
				})
			}
		}
	}

	for _, ev := range active {
		if len(res.Equipment) > 0 {
			for _, item := range ev.Metadata.Requirements {
				if !slices.Contains(res.Equipment, item) {
					conflicts = append(conflicts, Conflict{
						Kind:       ConflictEquipmentUnavailable,
						ResourceID: item,
						EventIDs:   []string{ev.ID},
						Message:    fmt.Sprintf("%q needs %s, which is not available", ev.Title, item),
					})
				}
			}
		}
		if len(res.Venues) > 0 && !slices.Contains(res.Venues, string(ev.Area)) {
			conflicts = append(conflicts, Conflict{
				Kind:       ConflictVenueUnavailable,
				ResourceID: string(ev.Area),
				EventIDs:   []string{ev.ID},
				Message:    fmt.Sprintf("%q is placed in %s, which is not available", ev.Title, ev.Area),
			})
		}
	}

	return AllocationReport{IsValid: len(conflicts) == 0, Conflicts: conflicts}
}

func eventIDs(events []model.Event) []string {
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	return ids
}
