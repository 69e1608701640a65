package watch

import (
	"fmt"
	"sync"
	"time"

	appLog "festsched/internal/log"
	"festsched/internal/model"
	"festsched/internal/program"
	"festsched/internal/rules"
	"festsched/internal/validation"
)

// Report is the validation outcome of one loaded program.
type Report struct {
	IsValid bool `json:"is_valid"`
	// Rows holds findings per entry id; clean rows are left out.
	Rows     map[string]validation.Result `json:"rows"`
	Schedule validation.Result            `json:"schedule"`
	Timing   []rules.TimingWarning        `json:"timing"`
}

// ErrorCount is the number of blocking findings across rows and schedule.
func (r Report) ErrorCount() int {
	n := len(r.Schedule.Errors)
	for _, row := range r.Rows {
		n += len(row.Errors)
	}
	return n
}

func (r Report) WarningCount() int {
	n := len(r.Schedule.Warnings) + len(r.Timing)
	for _, row := range r.Rows {
		n += len(row.Warnings)
	}
	return n
}

// Snapshot is an immutable, fully validated view of the program. A new
// snapshot replaces the old one wholesale on reload.
type Snapshot struct {
	Program   *program.Program
	Engine    *rules.Engine
	Validator *validation.Validator
	// Events is the program in start order.
	Events   []model.Event
	Report   Report
	LoadedAt time.Time
}

// Build loads the program at path and validates it under base. When base
// pins no festival days the program's own days are used.
func Build(path string, base rules.Policy, now time.Time) (*Snapshot, error) {
	const op = "watch.Build"

	prog, err := program.Load(path, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	policy := base
	if len(policy.Days) == 0 {
		policy.Days = prog.Days
	}
	engine := rules.NewEngine(policy)
	v := validation.New(engine)

	report := Report{Rows: make(map[string]validation.Result)}
	for _, rec := range prog.Records {
		res := v.ValidateTimeSlotData(rec)
		if len(res.Errors) > 0 || len(res.Warnings) > 0 {
			report.Rows[rec.ID] = res
		}
	}
	report.Schedule = v.ValidateEventSchedule(prog.Events)

	sorted, timing := engine.OptimizeEventTiming(prog.Events)
	report.Timing = timing
	if report.Timing == nil {
		report.Timing = []rules.TimingWarning{}
	}
	for _, w := range timing {
		appLog.Debug("timing advice", "event", w.EventID, "kind", w.Kind, "msg", w.Message)
	}

	report.IsValid = report.ErrorCount() == 0

	return &Snapshot{
		Program:   prog,
		Engine:    engine,
		Validator: v,
		Events:    sorted,
		Report:    report,
		LoadedAt:  now,
	}, nil
}

// Store holds the current snapshot for concurrent readers.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
}

func NewStore(initial *Snapshot) *Store {
	return &Store{current: initial}
}

// Current returns the latest snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Set(snap *Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
}
