package model

import (
	"fmt"
	"slices"
	"time"
)

// Area is one of the fixed physical tracks of the festival.
type Area string

const (
	AreaMainStage      Area = "main-stage"
	AreaDanceWorkshops Area = "dance-workshops"
	AreaMusicWorkshops Area = "music-workshops"
	AreaSalsaTalks     Area = "salsa-talks"
)

// Areas lists every area in display order.
var Areas = []Area{AreaMainStage, AreaDanceWorkshops, AreaMusicWorkshops, AreaSalsaTalks}

func (a Area) Valid() bool {
	return slices.Contains(Areas, a)
}

func ParseArea(s string) (Area, error) {
	a := Area(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownArea, s)
	}
	return a, nil
}

type EventType string

const (
	TypeMain        EventType = "main"
	TypeDanceShow   EventType = "dance-show"
	TypeWorkshop    EventType = "workshop"
	TypeTalk        EventType = "talk"
	TypePerformance EventType = "performance"
	TypeSocial      EventType = "social"
)

var EventTypes = []EventType{TypeMain, TypeDanceShow, TypeWorkshop, TypeTalk, TypePerformance, TypeSocial}

func (t EventType) Valid() bool {
	return slices.Contains(EventTypes, t)
}

func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, s)
	}
	return t, nil
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyAllLevels    Difficulty = "all-levels"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyAllLevels:
		return true
	}
	return false
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusPostponed  Status = "postponed"
)

// statusTransitions lists the allowed next states. Completed and cancelled
// are terminal.
var statusTransitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled, StatusPostponed},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusPostponed},
	StatusPostponed:  {StatusScheduled, StatusCancelled},
}

func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	return slices.Contains(statusTransitions[s], next)
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Slide is one page of a talk presentation.
type Slide struct {
	Type  string `yaml:"type" json:"type"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	Image string `yaml:"image,omitempty" json:"image,omitempty"`
}

// Metadata carries descriptive, non-scheduling data for an event.
// Requirements names equipment the event needs (projector, sound system, ...).
type Metadata struct {
	Description  string
	Images       []string
	Slides       []Slide
	Tags         []string
	Difficulty   Difficulty
	Language     []string
	Requirements []string
}

func (m Metadata) clone() Metadata {
	m.Images = slices.Clone(m.Images)
	m.Slides = slices.Clone(m.Slides)
	m.Tags = slices.Clone(m.Tags)
	m.Language = slices.Clone(m.Language)
	m.Requirements = slices.Clone(m.Requirements)
	return m
}

// Event is the aggregate root of the program. Values are treated as
// immutable: mutators return a modified copy.
type Event struct {
	ID          string
	Title       string
	Range       TimeRange
	Area        Area
	Type        EventType
	Instructors []Instructor
	Presenters  []Presenter
	Hosts       []Host
	DJs         []DJ
	Status      Status
	Capacity    *Capacity
	Metadata    Metadata
}

// EventParams is the input to NewEvent.
type EventParams struct {
	ID          string
	Title       string
	Start       time.Time
	End         time.Time
	Area        Area
	Type        EventType
	Instructors []Instructor
	Presenters  []Presenter
	Hosts       []Host
	DJs         []DJ
	Capacity    *Capacity
	Metadata    Metadata
}

// NewEvent builds a scheduled Event. Slices are copied so the event owns
// its metadata outright.
func NewEvent(p EventParams) (Event, error) {
	const op = "model.NewEvent"

	if p.Title == "" {
		return Event{}, fmt.Errorf("%s: %w", op, ErrMissingTitle)
	}
	r, err := NewTimeRange(p.Start, p.End)
	if err != nil {
		return Event{}, fmt.Errorf("%s: %w", op, err)
	}
	if !p.Area.Valid() {
		return Event{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownArea, p.Area)
	}
	if !p.Type.Valid() {
		return Event{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownEventType, p.Type)
	}
	if p.Metadata.Difficulty != "" && !p.Metadata.Difficulty.Valid() {
		return Event{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownDifficulty, p.Metadata.Difficulty)
	}

	ev := Event{
		ID:          p.ID,
		Title:       p.Title,
		Range:       r,
		Area:        p.Area,
		Type:        p.Type,
		Instructors: slices.Clone(p.Instructors),
		Presenters:  slices.Clone(p.Presenters),
		Hosts:       slices.Clone(p.Hosts),
		DJs:         slices.Clone(p.DJs),
		Status:      StatusScheduled,
		Metadata:    p.Metadata.clone(),
	}
	if p.Capacity != nil {
		c := *p.Capacity
		ev.Capacity = &c
	}
	return ev, nil
}

func (e Event) Start() time.Time { return e.Range.Start() }
func (e Event) End() time.Time   { return e.Range.End() }

// DurationMinutes is the scheduled length in whole minutes.
func (e Event) DurationMinutes() int { return e.Range.DurationInMinutes() }

func (e Event) IsScheduled() bool { return e.Status == StatusScheduled }

// InstructorIDs returns the ids of all instructors in declaration order.
func (e Event) InstructorIDs() []string {
	ids := make([]string, 0, len(e.Instructors))
	for _, in := range e.Instructors {
		ids = append(ids, in.ID)
	}
	return ids
}

// SharesInstructorWith reports whether the two events have an instructor id in common.
func (e Event) SharesInstructorWith(other Event) bool {
	for _, a := range e.Instructors {
		for _, b := range other.Instructors {
			if a.ID == b.ID {
				return true
			}
		}
	}
	return false
}

// WithStatus returns a copy of e in the next lifecycle state.
func (e Event) WithStatus(next Status) (Event, error) {
	if !e.Status.CanTransitionTo(next) {
		return Event{}, fmt.Errorf("%w: %s -> %s (event %s)", ErrInvalidStatusTransition, e.Status, next, e.ID)
	}
	out := e.Clone()
	out.Status = next
	return out, nil
}

// Clone returns a deep copy of e.
func (e Event) Clone() Event {
	out := e
	out.Instructors = slices.Clone(e.Instructors)
	out.Presenters = slices.Clone(e.Presenters)
	out.Hosts = slices.Clone(e.Hosts)
	out.DJs = slices.Clone(e.DJs)
	out.Metadata = e.Metadata.clone()
	if e.Capacity != nil {
		c := *e.Capacity
		out.Capacity = &c
	}
	return out
}
