package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festsched/internal/config"
)

const validProgram = `
name: Test Fest
people:
  instructors:
    - {id: maria, name: Maria}
days:
  - date: "2025-06-13"
    entries:
      - {kind: dance-workshop, id: ws-1, title: Shines, start: "11:00", end: "12:00", instructors: [maria], difficulty: beginner}
      - {kind: dance-workshop, id: ws-2, title: Turns, start: "12:30", end: "13:30", instructors: [maria], difficulty: beginner}
`

const clashingProgram = `
people:
  instructors:
    - {id: maria, name: Maria}
    - {id: juan, name: Juan}
days:
  - date: "2025-06-13"
    entries:
      - {kind: dance-workshop, id: ws-1, title: Shines, start: "11:00", end: "12:00", instructors: [maria], difficulty: beginner}
      - {kind: dance-workshop, id: ws-2, title: Turns, start: "11:30", end: "12:30", instructors: [juan], difficulty: beginner}
`

// Times are UTC; the festival runs on Europe/Berlin (UTC+2 in June).
const draftCalendar = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:clash\r\n" +
	"DTSTAMP:20250601T000000Z\r\n" +
	"DTSTART:20250613T093000Z\r\n" +
	"DTEND:20250613T101500Z\r\n" +
	"SUMMARY:Clave Basics\r\n" +
	"LOCATION:dance-workshops\r\n" +
	"CATEGORIES:talk\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:free\r\n" +
	"DTSTAMP:20250601T000000Z\r\n" +
	"DTSTART:20250613T120000Z\r\n" +
	"DTEND:20250613T130000Z\r\n" +
	"SUMMARY:Salsa History\r\n" +
	"LOCATION:dance-workshops\r\n" +
	"CATEGORIES:talk\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:allday\r\n" +
	"DTSTAMP:20250601T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20250614\r\n" +
	"SUMMARY:Setup\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func newApp(t *testing.T, program string) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ProgramPath = filepath.Join(dir, "program.yaml")
	cfg.RefreshCron = ""
	if program != "" {
		require.NoError(t, os.WriteFile(cfg.ProgramPath, []byte(program), 0o600))
	}
	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

func TestNew_MissingProgram(t *testing.T) {
	a := newApp(t, "")
	assert.Nil(t, a.Snapshot())

	_, err := a.Check(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = a.Load()
	assert.Error(t, err)

	assert.ErrorIs(t, a.Export(filepath.Join(t.TempDir(), "out.ics")), ErrNotLoaded)
}

func TestCheck(t *testing.T) {
	var out bytes.Buffer
	ok, err := newApp(t, validProgram).Check(&out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "Test Fest: 2 events, 0 errors")

	out.Reset()
	ok, err = newApp(t, clashingProgram).Check(&out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "AREA_CONFLICT")
}

func TestExport(t *testing.T) {
	a := newApp(t, validProgram)
	path := filepath.Join(t.TempDir(), "program.ics")
	require.NoError(t, a.Export(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(body), "BEGIN:VEVENT"))
	assert.Contains(t, string(body), "UID:ws-1")

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}

func TestImport_File(t *testing.T) {
	a := newApp(t, validProgram)
	path := filepath.Join(t.TempDir(), "drafts.ics")
	require.NoError(t, os.WriteFile(path, []byte(draftCalendar), 0o600))

	var out bytes.Buffer
	sum, err := a.Import(context.Background(), path, &out)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Accepted: 1, Rejected: 1, Skipped: 1}, sum)
	assert.Contains(t, out.String(), "reject  clash")
	assert.Contains(t, out.String(), "BUSINESS_RULE_VIOLATION")
	assert.Contains(t, out.String(), "ok      free")
	assert.Contains(t, out.String(), "skip    allday")
}

func TestImport_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(draftCalendar))
	}))
	defer srv.Close()

	a := newApp(t, validProgram)
	sum, err := a.Import(context.Background(), srv.URL+"/drafts.ics", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Accepted)
	assert.Equal(t, 1, sum.Rejected)
}

func TestImport_MissingFile(t *testing.T) {
	a := newApp(t, validProgram)
	_, err := a.Import(context.Background(), filepath.Join(t.TempDir(), "nope.ics"), &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
