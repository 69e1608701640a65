package program

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festsched/internal/model"
	"festsched/internal/rules"
	"festsched/internal/validation"
)

func TestLoad(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "program.yaml"), rules.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, "Summer Salsa Weekend", p.Name)
	require.Len(t, p.Days, 2)
	require.Len(t, p.Entries, 6)
	require.Len(t, p.Events, 6)
	require.Len(t, p.Records, 6)

	social, ok := p.EventByID("main-fri")
	require.True(t, ok)
	assert.Equal(t, model.TypeSocial, social.Type)
	assert.Equal(t, time.Date(2025, 6, 14, 2, 0, 0, 0, time.UTC), social.End())
	require.Len(t, social.DJs, 1)
	assert.Equal(t, "DJ Sabor", social.DJs[0].Name)

	require.Len(t, p.Shows, 1)
	assert.Equal(t, "main-fri", p.Shows[0].ParentEventID)

	avi, ok := p.EventByID("avi-fri-1")
	require.True(t, ok)
	assert.Len(t, avi.Presenters, 2)

	talk := p.Events[5]
	assert.NotEmpty(t, talk.ID, "missing ids are generated")
	assert.Equal(t, model.AreaSalsaTalks, talk.Area)
}

func TestLoad_ProgramValidates(t *testing.T) {
	policy := rules.DefaultPolicy()
	p, err := Load(filepath.Join("testdata", "program.yaml"), policy)
	require.NoError(t, err)

	policy.Days = p.Days
	v := validation.New(rules.NewEngine(policy))

	for _, rec := range p.Records {
		r := v.ValidateTimeSlotData(rec)
		assert.True(t, r.IsValid, "%s: %v", rec.ID, r.Errors)
	}

	r := v.ValidateEventSchedule(p.Events)
	assert.True(t, r.IsValid, r.Errors)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	const head = `
people:
  instructors: [{id: maria, name: Maria}]
days:
  - date: "2025-06-13"
    entries:
`
	tests := []struct {
		name    string
		entries string
		check   func(t *testing.T, err error)
	}{
		{
			name: "unknown person",
			entries: `
      - {kind: dance-workshop, id: ws, title: W, start: "10:00", end: "11:00", instructors: [nobody]}`,
			check: func(t *testing.T, err error) {
				var upe *UnknownPersonError
				require.True(t, errors.As(err, &upe))
				assert.Equal(t, "nobody", upe.ID)
				assert.Equal(t, "instructor", upe.Role)
			},
		},
		{
			name: "unknown kind",
			entries: `
      - {kind: party, id: p, title: P, start: "10:00", end: "11:00"}`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnknownKind) },
		},
		{
			name: "duplicate id",
			entries: `
      - {kind: talk, id: t, title: A, start: "10:00", end: "11:00"}
      - {kind: talk, id: t, title: B, start: "12:00", end: "13:00"}`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrDuplicateID) },
		},
		{
			name: "orphan dance show",
			entries: `
      - {kind: dance-show, id: s, title: S, start: "22:00", end: "22:10", parent: missing}`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnknownParent) },
		},
		{
			name: "show outside its parent",
			entries: `
      - {kind: main-stage, id: m, title: M, start: "20:00", end: "21:00"}
      - {kind: dance-show, id: s, title: S, start: "22:00", end: "22:10", parent: m}`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, model.ErrOrphanDanceShow) },
		},
		{
			name: "typo in field name",
			entries: `
      - {kind: talk, id: t, title: A, strat: "10:00", end: "11:00"}`,
			check: func(t *testing.T, err error) { assert.Error(t, err) },
		},
		{
			name: "end before start",
			entries: `
      - {kind: talk, id: t, title: A, start: "10:00", end: "09:00"}`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, model.ErrInvalidTimeRange) },
		},
		{
			name: "bad clock",
			entries: `
      - {kind: talk, id: t, title: A, start: "10h", end: "11:00"}`,
			check: func(t *testing.T, err error) { assert.Error(t, err) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(head+strings.TrimPrefix(tt.entries, "\n")+"\n"), rules.DefaultPolicy())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestParse_PersonWithoutID(t *testing.T) {
	const doc = `
people:
  djs: [{name: Nameless}]
days:
  - date: "2025-06-13"
    entries: []
`
	_, err := Parse(strings.NewReader(doc), rules.DefaultPolicy())
	assert.ErrorIs(t, err, ErrMissingPersonID)
}

func TestParse_DaysMustMatchPolicy(t *testing.T) {
	policy := rules.DefaultPolicy()
	policy.Days = []time.Time{time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)}

	_, err := Parse(strings.NewReader(`
days:
  - date: "2025-06-13"
`), policy)
	assert.ErrorIs(t, err, ErrNotFestivalDay)

	_, err = Parse(strings.NewReader("name: empty\n"), rules.DefaultPolicy())
	assert.ErrorIs(t, err, ErrNoDays)
}
