package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"festsched/internal/model"
)

var friday = time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)

func hm(h, m int) time.Time {
	return friday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

type eventOpt func(*model.EventParams)

func withInstructors(ids ...string) eventOpt {
	return func(p *model.EventParams) {
		for _, id := range ids {
			p.Instructors = append(p.Instructors, model.Instructor{ID: id, Name: id})
		}
	}
}

func withDifficulty(d model.Difficulty) eventOpt {
	return func(p *model.EventParams) { p.Metadata.Difficulty = d }
}

func withRequirements(items ...string) eventOpt {
	return func(p *model.EventParams) { p.Metadata.Requirements = items }
}

func newEvent(t *testing.T, id string, area model.Area, typ model.EventType, start, end time.Time, opts ...eventOpt) model.Event {
	t.Helper()
	p := model.EventParams{ID: id, Title: id, Start: start, End: end, Area: area, Type: typ}
	for _, opt := range opts {
		opt(&p)
	}
	ev, err := model.NewEvent(p)
	require.NoError(t, err)
	return ev
}
