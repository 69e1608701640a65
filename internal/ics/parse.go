package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "festsched/internal/log"
	"festsched/internal/model"
	"festsched/internal/validation"
)

// PropertyArea carries the machine-readable area id next to the
// human-readable LOCATION.
const PropertyArea = ical.ComponentProperty("X-FESTSCHED-AREA")

// People and level travel as extension properties: the value is the
// person id, the CN parameter the name.
const (
	PropertyInstructor = ical.ComponentProperty("X-FESTSCHED-INSTRUCTOR")
	PropertyPresenter  = ical.ComponentProperty("X-FESTSCHED-PRESENTER")
	PropertyDJ         = ical.ComponentProperty("X-FESTSCHED-DJ")
	PropertyDifficulty = ical.ComponentProperty("X-FESTSCHED-DIFFICULTY")
)

var (
	ErrEmptyCalendar = errors.New("empty ICS body")
	ErrRecurring     = errors.New("recurring events are not supported")
)

// Draft is one VEVENT turned into an event record ready for validation.
type Draft struct {
	UID   string
	Input validation.EventInput
	// RRule is the raw recurrence rule, if the VEVENT had one.
	RRule string
}

// SkippedEvent records a VEVENT that could not become a Draft.
type SkippedEvent struct {
	UID string
	Err error
}

// Parse reads an ICS payload into drafts. Malformed or recurring VEVENTs
// are logged, reported in skipped and left out; the rest still parse.
// window bounds the recurrence check (usually the festival days).
func Parse(r io.Reader, window model.TimeRange) ([]Draft, []SkippedEvent, error) {
	const op = "ics.Parse"

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrEmptyCalendar)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	drafts := make([]Draft, 0)
	var skipped []SkippedEvent

	for _, comp := range cal.Events() {
		d, perr := parseVEvent(comp)
		if perr == nil && d.RRule != "" {
			perr = checkRecurrence(d, window)
		}
		if perr != nil {
			appLog.Error("ics vevent skipped", perr, "uid", d.UID)
			skipped = append(skipped, SkippedEvent{UID: d.UID, Err: perr})
			continue
		}
		drafts = append(drafts, d)
	}

	appLog.Info("ics parse completed", "event_count", len(drafts), "skipped", len(skipped))
	return drafts, skipped, nil
}

func parseVEvent(ve *ical.VEvent) (Draft, error) {
	var out Draft

	out.UID = ve.Id()
	if out.UID == "" {
		out.UID = uuid.NewString()
	}
	in := validation.EventInput{ID: out.UID}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		in.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		in.Metadata.Description = unescape(p.Value)
	}

	// Area: explicit property first, then LOCATION when it names an area id.
	if p := ve.GetProperty(PropertyArea); p != nil {
		in.Area = strings.TrimSpace(p.Value)
	} else if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		in.Area = strings.TrimSpace(p.Value)
	}

	// Type: the first CATEGORIES value that is a known event type.
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			c = strings.ToLower(strings.TrimSpace(c))
			if model.EventType(c).Valid() {
				in.Type = c
				break
			}
		}
		if in.Type != "" {
			break
		}
	}

	for _, p := range people(ve, PropertyInstructor) {
		in.Instructors = append(in.Instructors, model.Instructor{ID: p[0], Name: p[1]})
	}
	for _, p := range people(ve, PropertyPresenter) {
		in.Presenters = append(in.Presenters, model.Presenter{ID: p[0], Name: p[1]})
	}
	for _, p := range people(ve, PropertyDJ) {
		in.DJs = append(in.DJs, model.DJ{ID: p[0], Name: p[1]})
	}
	if p := ve.GetProperty(PropertyDifficulty); p != nil {
		in.Metadata.Difficulty = strings.ToLower(strings.TrimSpace(p.Value))
	}

	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		in.Status = statusFromICS(p.Value)
	}

	if dt := ve.GetProperty(ical.ComponentPropertyDtStart); dt != nil {
		if !strings.Contains(dt.Value, "T") {
			return out, fmt.Errorf("all-day event %q cannot be placed in a time slot", in.Title)
		}
		start, err := ve.GetStartAt()
		if err != nil {
			return out, fmt.Errorf("DTSTART: %w", err)
		}
		in.StartTime = &start
	}
	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		end, err := ve.GetEndAt()
		if err != nil {
			return out, fmt.Errorf("DTEND: %w", err)
		}
		in.EndTime = &end
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = p.Value
	}

	out.Input = in
	return out, nil
}

// people returns {id, name} pairs for every prop on ve. The name falls
// back to the id when CN is missing.
func people(ve *ical.VEvent, prop ical.ComponentProperty) [][2]string {
	var out [][2]string
	for _, p := range ve.GetProperties(prop) {
		id := strings.TrimSpace(p.Value)
		if id == "" {
			continue
		}
		name := id
		if cn := p.ICalParameters[string(ical.ParameterCn)]; len(cn) > 0 && cn[0] != "" {
			name = cn[0]
		}
		out = append(out, [2]string{id, name})
	}
	return out
}

func statusFromICS(v string) string {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case string(ical.ObjectStatusCancelled):
		return string(model.StatusCancelled)
	case string(ical.ObjectStatusTentative):
		return string(model.StatusPostponed)
	default:
		return string(model.StatusScheduled)
	}
}

func unescape(s string) string {
	r := strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)
	return r.Replace(s)
}

// Window spans the given festival days, from the first midnight to the
// end of the last day. An empty day list yields the zero range.
func Window(days []time.Time) model.TimeRange {
	if len(days) == 0 {
		return model.TimeRange{}
	}
	first, last := days[0], days[0]
	for _, d := range days[1:] {
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return model.MustTimeRange(first, last.AddDate(0, 0, 1))
}
