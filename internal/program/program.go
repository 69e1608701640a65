// Package program loads the festival program file: the festival days, a
// registry of people and the entries of each day. Times in the file are
// local "HH:MM" clock times; an end at or before the start belongs to the
// next morning.
package program

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"festsched/internal/model"
	"festsched/internal/rules"
	"festsched/internal/validation"
)

// People is the registry entries refer to by id.
type People struct {
	Instructors []model.Instructor `yaml:"instructors"`
	Presenters  []model.Presenter  `yaml:"presenters"`
	Hosts       []model.Host       `yaml:"hosts"`
	DJs         []model.DJ         `yaml:"djs"`
}

type document struct {
	Name   string   `yaml:"name"`
	People People   `yaml:"people"`
	Days   []dayDoc `yaml:"days"`
}

type dayDoc struct {
	Date    string     `yaml:"date"`
	Entries []entryDoc `yaml:"entries"`
}

// entryDoc is the union of every entry kind's fields. Kind selects which
// of them are read.
type entryDoc struct {
	Kind  model.EntryKind `yaml:"kind"`
	ID    string          `yaml:"id"`
	Title string          `yaml:"title"`
	Start string          `yaml:"start"`
	End   string          `yaml:"end"`

	Description  string        `yaml:"description"`
	Images       []string      `yaml:"images"`
	Slides       []model.Slide `yaml:"slides"`
	Language     []string      `yaml:"language"`
	Requirements []string      `yaml:"requirements"`

	// main-stage
	Type  model.EventType `yaml:"type"`
	DJs   []string        `yaml:"djs"`
	Hosts []string        `yaml:"hosts"`

	// workshops
	Instructors  []string         `yaml:"instructors"`
	Difficulty   model.Difficulty `yaml:"difficulty"`
	Style        string           `yaml:"style"`
	Instrument   string           `yaml:"instrument"`
	MaxAttendees int              `yaml:"max_attendees"`

	// talks
	Presenters []string `yaml:"presenters"`
	Moderator  string   `yaml:"moderator"`
	Guest      string   `yaml:"guest"`
	Record     string   `yaml:"record"`
	Artist     string   `yaml:"artist"`

	// dance-show
	Parent     string   `yaml:"parent"`
	Performers []string `yaml:"performers"`
}

// Program is a loaded festival program.
type Program struct {
	Name    string
	Days    []time.Time
	People  People
	Entries []model.Entry
	// Events holds every entry as an Event, in file order.
	Events []model.Event
	Shows  []model.DanceShow
	// Records are the raw rows, kept for row-level validation.
	Records []validation.TimeSlotRecord
}

// Load reads and parses the program file at path.
func Load(path string, policy rules.Policy) (*Program, error) {
	const op = "program.Load"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := Parse(bytes.NewReader(data), policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return p, nil
}

// Parse decodes a program document. Unknown YAML fields are rejected so a
// typo does not silently drop data.
func Parse(r io.Reader, policy rules.Policy) (*Program, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(doc.Days) == 0 {
		return nil, ErrNoDays
	}

	b, err := newBuilder(doc.People)
	if err != nil {
		return nil, err
	}
	out := &Program{Name: doc.Name, People: doc.People}

	for _, dd := range doc.Days {
		day, err := policy.ParseDay(dd.Date)
		if err != nil {
			return nil, fmt.Errorf("day %q: %w", dd.Date, err)
		}
		if len(policy.Days) > 0 && policy.DayOf(day) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFestivalDay, dd.Date)
		}
		out.Days = append(out.Days, day)

		for i := range dd.Entries {
			ed := &dd.Entries[i]
			if ed.ID == "" {
				ed.ID = uuid.NewString()
			}
			if slices.ContainsFunc(out.Entries, func(e model.Entry) bool { return e.EntryID() == ed.ID }) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateID, ed.ID)
			}

			start, end, err := policy.SlotTimes(day, ed.Start, ed.End)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", ed.ID, err)
			}
			slot := model.Slot{ID: ed.ID, Title: ed.Title, Start: start, End: end}

			entry, err := b.entry(*ed, slot)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, entry)
			out.Records = append(out.Records, b.record(*ed, dd.Date, entry))
		}
	}

	for _, entry := range out.Entries {
		ev, err := entry.Event()
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.EntryID(), err)
		}
		out.Events = append(out.Events, ev)
	}

	for _, entry := range out.Entries {
		ds, ok := entry.(model.DanceShowEntry)
		if !ok {
			continue
		}
		i := slices.IndexFunc(out.Events, func(ev model.Event) bool { return ev.ID == ds.ParentID })
		if i < 0 {
			return nil, fmt.Errorf("%w: show %s, parent %q", ErrUnknownParent, ds.ID, ds.ParentID)
		}
		show, err := ds.Show(out.Events[i])
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", ds.ID, err)
		}
		out.Shows = append(out.Shows, show)
	}

	return out, nil
}

// EventByID returns the event with id.
func (p *Program) EventByID(id string) (model.Event, bool) {
	i := slices.IndexFunc(p.Events, func(ev model.Event) bool { return ev.ID == id })
	if i < 0 {
		return model.Event{}, false
	}
	return p.Events[i], true
}
