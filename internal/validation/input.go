package validation

import (
	"errors"
	"fmt"
	"time"

	"festsched/internal/model"
)

// EventInput is a possibly partial event record as submitted by an editor
// or decoded from an external source. Zero values mean "missing".
type EventInput struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	StartTime        *time.Time         `json:"start_time"`
	EndTime          *time.Time         `json:"end_time"`
	Duration         int                `json:"duration,omitempty"`
	Area             string             `json:"area"`
	Type             string             `json:"type"`
	Instructors      []model.Instructor `json:"instructors,omitempty"`
	Presenters       []model.Presenter  `json:"presenters,omitempty"`
	Hosts            []model.Host       `json:"hosts,omitempty"`
	DJs              []model.DJ         `json:"djs,omitempty"`
	Status           string             `json:"status,omitempty"`
	Capacity         *int               `json:"capacity,omitempty"`
	CurrentAttendees *int               `json:"current_attendees,omitempty"`
	Metadata         MetadataInput      `json:"metadata"`
}

type MetadataInput struct {
	Description  string        `json:"description,omitempty"`
	Images       []string      `json:"images,omitempty"`
	Slides       []model.Slide `json:"slides,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	Difficulty   string        `json:"difficulty,omitempty"`
	Language     []string      `json:"language,omitempty"`
	Requirements []string      `json:"requirements,omitempty"`
}

var errIncompleteInput = errors.New("event record is incomplete")

// Event converts a structurally valid input into a model.Event. Callers
// normally run ValidateEvent first; Event only enforces the hard
// construction invariants.
func (in EventInput) Event() (model.Event, error) {
	const op = "validation.EventInput.Event"

	if in.StartTime == nil || in.EndTime == nil {
		return model.Event{}, fmt.Errorf("%s: %w: start_time and end_time are required", op, errIncompleteInput)
	}

	p := model.EventParams{
		ID:          in.ID,
		Title:       in.Title,
		Start:       *in.StartTime,
		End:         *in.EndTime,
		Area:        model.Area(in.Area),
		Type:        model.EventType(in.Type),
		Instructors: in.Instructors,
		Presenters:  in.Presenters,
		Hosts:       in.Hosts,
		DJs:         in.DJs,
		Metadata: model.Metadata{
			Description:  in.Metadata.Description,
			Images:       in.Metadata.Images,
			Slides:       in.Metadata.Slides,
			Tags:         in.Metadata.Tags,
			Difficulty:   model.Difficulty(in.Metadata.Difficulty),
			Language:     in.Metadata.Language,
			Requirements: in.Metadata.Requirements,
		},
	}
	if in.Capacity != nil {
		current := 0
		if in.CurrentAttendees != nil {
			current = *in.CurrentAttendees
		}
		c, err := model.NewCapacity(*in.Capacity, current)
		if err != nil {
			return model.Event{}, fmt.Errorf("%s: %w", op, err)
		}
		p.Capacity = &c
	}

	ev, err := model.NewEvent(p)
	if err != nil {
		return model.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	if in.Status != "" && model.Status(in.Status) != ev.Status {
		ev.Status = model.Status(in.Status)
	}
	return ev, nil
}

// FromEvent builds the input form of an existing event.
func FromEvent(ev model.Event) EventInput {
	start, end := ev.Start(), ev.End()
	in := EventInput{
		ID:          ev.ID,
		Title:       ev.Title,
		StartTime:   &start,
		EndTime:     &end,
		Duration:    ev.DurationMinutes(),
		Area:        string(ev.Area),
		Type:        string(ev.Type),
		Instructors: ev.Instructors,
		Presenters:  ev.Presenters,
		Hosts:       ev.Hosts,
		DJs:         ev.DJs,
		Status:      string(ev.Status),
		Metadata: MetadataInput{
			Description:  ev.Metadata.Description,
			Images:       ev.Metadata.Images,
			Slides:       ev.Metadata.Slides,
			Tags:         ev.Metadata.Tags,
			Difficulty:   string(ev.Metadata.Difficulty),
			Language:     ev.Metadata.Language,
			Requirements: ev.Metadata.Requirements,
		},
	}
	if ev.Capacity != nil {
		max, cur := ev.Capacity.Max(), ev.Capacity.Current()
		in.Capacity = &max
		in.CurrentAttendees = &cur
	}
	return in
}

// TimeSlotRecord is a raw program row: a festival day plus local "HH:MM"
// clock times, the way program data is authored.
type TimeSlotRecord struct {
	ID           string             `json:"id"`
	Day          string             `json:"day"`
	StartTime    string             `json:"start_time"`
	EndTime      string             `json:"end_time"`
	Title        string             `json:"title"`
	Area         string             `json:"area"`
	Type         string             `json:"type"`
	Description  string             `json:"description,omitempty"`
	Difficulty   string             `json:"difficulty,omitempty"`
	Instructors  []model.Instructor `json:"instructors,omitempty"`
	Presenters   []model.Presenter  `json:"presenters,omitempty"`
	Hosts        []model.Host       `json:"hosts,omitempty"`
	DJs          []model.DJ         `json:"djs,omitempty"`
	Images       []string           `json:"images,omitempty"`
	Slides       []model.Slide      `json:"slides,omitempty"`
	Requirements []string           `json:"requirements,omitempty"`
}
