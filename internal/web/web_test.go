package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festsched/internal/config"
	"festsched/internal/label"
	"festsched/internal/rules"
	"festsched/internal/validation"
	"festsched/internal/watch"
)

const testProgram = `
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

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, loaded bool) (*Server, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()

	var store *watch.Store
	if loaded {
		path := filepath.Join(t.TempDir(), "program.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testProgram), 0o600))
		snap, err := watch.Build(path, rules.DefaultPolicy(), time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		store = watch.NewStore(snap)
	} else {
		store = watch.NewStore(nil)
	}

	labels := label.NewCatalog(map[string]string{"area.dance-workshops": "Dance Hall"})
	return NewServer(cfg, rules.DefaultPolicy(), store, labels), cfg
}

func do(t *testing.T, h http.Handler, method, path, body string, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mods {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func eventJSON(id, area, typ, start, end string) string {
	return `{"id":"` + id + `","title":"Candidate","start_time":"2025-06-13T` + start + `:00Z","end_time":"2025-06-13T` + end +
		`:00Z","area":"` + area + `","type":"` + typ + `","instructors":[{"id":"maria","name":"Maria"}],"metadata":{"difficulty":"beginner"}}`
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestValidateEvent(t *testing.T) {
	s, _ := newTestServer(t, true)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/events/validate", eventJSON("new", "dance-workshops", "workshop", "15:00", "16:00"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[validation.Result](t, rec).IsValid)

	rec = do(t, h, http.MethodPost, "/api/events/validate", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[validation.Result](t, rec)
	assert.False(t, res.IsValid)
	assert.True(t, res.HasCode(validation.CodeRequiredField))

	rec = do(t, h, http.MethodPost, "/api/events/validate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "invalid request body")
}

func TestValidateTimeSlot(t *testing.T) {
	s, _ := newTestServer(t, true)
	body := `{"id":"r1","day":"2025-06-14","start_time":"25:00","end_time":"26:00","title":"Late","area":"main-stage","type":"social"}`
	rec := do(t, s.Handler(), http.MethodPost, "/api/timeslots/validate", body)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[validation.Result](t, rec)
	assert.False(t, res.IsValid)
	assert.True(t, res.HasCode(validation.CodeInvalidTimeFormat))
}

func TestValidateSchedule(t *testing.T) {
	s, _ := newTestServer(t, false)
	h := s.Handler()

	body := `{"events":[` +
		eventJSON("a", "dance-workshops", "workshop", "11:00", "12:00") + `,` +
		eventJSON("b", "dance-workshops", "workshop", "11:30", "12:30") + `]}`
	rec := do(t, h, http.MethodPost, "/api/schedule/validate", body)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[validation.Result](t, rec)
	assert.False(t, res.IsValid)
	assert.True(t, res.HasCode(validation.CodeAreaConflict))

	body = `{"events":[` + eventJSON("a", "dance-workshops", "workshop", "11:00", "12:00") + `,{"id":"b"}]}`
	rec = do(t, h, http.MethodPost, "/api/schedule/validate", body)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[validation.Result](t, rec)
	assert.False(t, res.IsValid)
	require.NotEmpty(t, res.Errors)
	assert.True(t, strings.HasPrefix(res.Errors[0].Field, "events[1]."), res.Errors[0].Field)
}

func TestCheckSchedule(t *testing.T) {
	s, _ := newTestServer(t, true)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/schedule/check",
		`{"event":`+eventJSON("new", "dance-workshops", "workshop", "11:30", "12:15")+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[checkResponse](t, rec)
	assert.False(t, got.CanSchedule)
	assert.Equal(t, rules.RuleAreaOverlap, got.Rule)
	assert.NotEmpty(t, got.Reason)

	rec = do(t, h, http.MethodPost, "/api/schedule/check",
		`{"event":`+eventJSON("new", "dance-workshops", "workshop", "15:00", "16:00")+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[checkResponse](t, rec)
	assert.True(t, got.CanSchedule)
	assert.Empty(t, got.Reason)

	rec = do(t, h, http.MethodPost, "/api/schedule/check",
		`{"event":`+eventJSON("new", "dance-workshops", "workshop", "15:00", "16:00")+`,"area":"backstage"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckSchedule_NotLoaded(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s.Handler(), http.MethodPost, "/api/schedule/check",
		`{"event":`+eventJSON("new", "dance-workshops", "workshop", "15:00", "16:00")+`}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCapacity(t *testing.T) {
	s, _ := newTestServer(t, false)
	h := s.Handler()
	ev := eventJSON("new", "dance-workshops", "workshop", "15:00", "16:00")

	rec := do(t, h, http.MethodPost, "/api/capacity", `{"event":`+ev+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[capacityResponse](t, rec)
	assert.Positive(t, got.Base)
	assert.Equal(t, got.Base, got.Capacity)

	rec = do(t, h, http.MethodPost, "/api/capacity", `{"event":`+ev+`,"history":{"average":20,"peak":30}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[capacityResponse](t, rec)
	assert.Greater(t, got.Capacity, got.Base)
}

func TestValidateResources(t *testing.T) {
	s, cfg := newTestServer(t, true)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/resources/validate", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[rules.AllocationReport](t, rec).IsValid)

	cfg.Resources.Instructors = []string{"someone-else"}
	rec = do(t, h, http.MethodPost, "/api/resources/validate", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[rules.AllocationReport](t, rec)
	assert.False(t, report.IsValid)
	require.NotEmpty(t, report.Conflicts)
	assert.Equal(t, rules.ConflictInstructorUnavailable, report.Conflicts[0].Kind)

	rec = do(t, h, http.MethodPost, "/api/resources/validate", `{"resources":{"instructors":["maria"]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[rules.AllocationReport](t, rec).IsValid)
}

func TestProgram(t *testing.T) {
	s, _ := newTestServer(t, true)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/program", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)

	resp := decode[programResponse](t, rec)
	assert.Equal(t, "Test Fest", resp.Name)
	assert.Equal(t, []string{"2025-06-13"}, resp.Days)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "ws-1", resp.Events[0].ID)
	assert.Equal(t, "Dance Hall", resp.Events[0].DisplayArea)
	assert.Equal(t, "Shines", resp.Events[0].DisplayTitle)
	assert.True(t, resp.Report.IsValid)

	rec = do(t, h, http.MethodGet, "/api/program", "", func(r *http.Request) {
		r.Header.Set("If-None-Match", tag)
	})
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestProgram_NotLoaded(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s.Handler(), http.MethodGet, "/api/program", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, errNotLoaded.Error(), decode[ErrorResponse](t, rec).Error)
}

func TestProgramICS(t *testing.T) {
	s, _ := newTestServer(t, true)
	rec := do(t, s.Handler(), http.MethodGet, "/api/program.ics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Equal(t, 2, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "Dance Hall")
}

func TestBasicAuth(t *testing.T) {
	s, cfg := newTestServer(t, true)
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/program", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = do(t, h, http.MethodGet, "/api/program", "", func(r *http.Request) {
		r.SetBasicAuth("admin", "wrong")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/program", "", func(r *http.Request) {
		r.SetBasicAuth("admin", "secret")
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, secureCompare("abc", "abc"))
	assert.False(t, secureCompare("abc", "abd"))
	assert.False(t, secureCompare("abc", "abcd"))
}
