package model

import (
	"fmt"
	"slices"
	"time"
)

// DanceShow is a performance segment nested inside a main-stage event.
// It cannot exist without its parent.
type DanceShow struct {
	ID            string
	Title         string
	ParentEventID string
	Range         TimeRange
	Performers    []string
}

// NewDanceShow validates that parent is a main-stage event whose range
// contains start.
func NewDanceShow(id, title string, parent Event, start time.Time, duration time.Duration, performers []string) (DanceShow, error) {
	const op = "model.NewDanceShow"

	if parent.Area != AreaMainStage || !parent.Range.Contains(start) {
		return DanceShow{}, fmt.Errorf("%s: %w (parent=%s start=%s)", op, ErrOrphanDanceShow,
			parent.ID, start.Format(time.RFC3339))
	}
	r, err := NewTimeRange(start, start.Add(duration))
	if err != nil {
		return DanceShow{}, fmt.Errorf("%s: %w", op, err)
	}
	return DanceShow{
		ID:            id,
		Title:         title,
		ParentEventID: parent.ID,
		Range:         r,
		Performers:    slices.Clone(performers),
	}, nil
}

// Event converts the show into a schedulable dance-show event on the main stage.
func (d DanceShow) Event(description string) (Event, error) {
	return NewEvent(EventParams{
		ID:       d.ID,
		Title:    d.Title,
		Start:    d.Range.Start(),
		End:      d.Range.End(),
		Area:     AreaMainStage,
		Type:     TypeDanceShow,
		Metadata: Metadata{Description: description, Tags: slices.Clone(d.Performers)},
	})
}
