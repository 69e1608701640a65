package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"festsched/internal/label"
	"festsched/internal/model"
)

const productID = "-//festsched//festival program//EN"

// AreaLabelKey is the label key for an area's display name.
func AreaLabelKey(a model.Area) string {
	return "area." + string(a)
}

// Export writes events as a PUBLISH calendar. Titles, descriptions and
// area names go through labels; the raw area id and type are kept in
// X-FESTSCHED-AREA and CATEGORIES so Parse can read the file back.
func Export(w io.Writer, events []model.Event, labels label.Resolver, stamp time.Time) error {
	const op = "ics.Export"

	if labels == nil {
		labels = label.Identity{}
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(ev.Start())
		ve.SetEndAt(ev.End())
		ve.SetSummary(labels.Resolve(ev.Title))
		ve.SetLocation(labels.Resolve(AreaLabelKey(ev.Area)))
		ve.AddProperty(PropertyArea, string(ev.Area))
		ve.AddProperty(ical.ComponentPropertyCategories, string(ev.Type))
		for _, p := range ev.Instructors {
			addPerson(ve, PropertyInstructor, p.ID, p.Name)
		}
		for _, p := range ev.Presenters {
			addPerson(ve, PropertyPresenter, p.ID, p.Name)
		}
		for _, p := range ev.DJs {
			addPerson(ve, PropertyDJ, p.ID, p.Name)
		}
		if ev.Metadata.Difficulty != "" {
			ve.AddProperty(PropertyDifficulty, string(ev.Metadata.Difficulty))
		}
		ve.SetStatus(statusToICS(ev.Status))
		if desc := describe(ev, labels); desc != "" {
			ve.SetDescription(desc)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func addPerson(ve *ical.VEvent, prop ical.ComponentProperty, id, name string) {
	if id == "" {
		return
	}
	if name == "" {
		ve.AddProperty(prop, id)
		return
	}
	ve.AddProperty(prop, id, ical.WithCN(name))
}

func statusToICS(s model.Status) ical.ObjectStatus {
	switch s {
	case model.StatusCancelled:
		return ical.ObjectStatusCancelled
	case model.StatusPostponed:
		return ical.ObjectStatusTentative
	default:
		return ical.ObjectStatusConfirmed
	}
}

// describe builds the DESCRIPTION text: the event description followed by
// the people on it.
func describe(ev model.Event, labels label.Resolver) string {
	var b strings.Builder
	if ev.Metadata.Description != "" {
		b.WriteString(labels.Resolve(ev.Metadata.Description))
	}
	line := func(role string, names []string) {
		if len(names) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(role + ": " + strings.Join(names, ", "))
	}

	var names []string
	for _, p := range ev.Instructors {
		names = append(names, labels.Resolve(p.Name))
	}
	line("Instructors", names)

	names = names[:0]
	for _, p := range ev.Presenters {
		names = append(names, labels.Resolve(p.Name))
	}
	line("Presenters", names)

	names = names[:0]
	for _, p := range ev.DJs {
		names = append(names, labels.Resolve(p.Name))
	}
	line("DJs", names)

	if ev.Metadata.Difficulty != "" {
		line("Level", []string{string(ev.Metadata.Difficulty)})
	}
	return b.String()
}
