package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"festsched/internal/ics"
	"festsched/internal/model"
	"festsched/internal/rules"
	"festsched/internal/validation"
	"festsched/internal/watch"
)

var ErrNotLoaded = errors.New("no program loaded")

// Check prints the validation report of the loaded program and reports
// whether it is valid.
func (a *App) Check(w io.Writer) (bool, error) {
	snap := a.store.Current()
	if snap == nil {
		return false, ErrNotLoaded
	}
	writeReport(w, snap)
	return snap.Report.IsValid, nil
}

func writeReport(w io.Writer, snap *watch.Snapshot) {
	rep := snap.Report
	fmt.Fprintf(w, "%s: %d events, %d errors, %d warnings\n",
		programName(snap), len(snap.Events), rep.ErrorCount(), rep.WarningCount())

	for _, rec := range snap.Program.Records {
		if res, ok := rep.Rows[rec.ID]; ok {
			writeIssues(w, rec.ID, res)
		}
	}
	writeIssues(w, "schedule", rep.Schedule)
	for _, tw := range rep.Timing {
		fmt.Fprintf(w, "  timing  %s: %s\n", tw.Kind, tw.Message)
	}
}

func programName(snap *watch.Snapshot) string {
	if snap.Program.Name != "" {
		return snap.Program.Name
	}
	return "program"
}

func writeIssues(w io.Writer, subject string, res validation.Result) {
	for _, is := range res.Errors {
		fmt.Fprintf(w, "  error   %s %s %s: %s\n", subject, is.Code, is.Field, is.Message)
	}
	for _, is := range res.Warnings {
		fmt.Fprintf(w, "  warning %s %s %s: %s\n", subject, is.Code, is.Field, is.Message)
	}
}

// Export writes the loaded program as an ICS calendar to path. The file
// is replaced atomically.
func (a *App) Export(path string) error {
	const op = "app.Export"

	snap := a.store.Current()
	if snap == nil {
		return fmt.Errorf("%s: %w", op, ErrNotLoaded)
	}

	var buf bytes.Buffer
	if err := ics.Export(&buf, snap.Events, a.labels, snap.LoadedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".festsched-export-*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ImportSummary counts the outcome of an ICS import.
type ImportSummary struct {
	Accepted int
	Rejected int
	Skipped  int
}

// Import reads draft events from an ICS file or http(s) URL, validates
// each one and checks it against the loaded program. Findings are written
// to w.
func (a *App) Import(ctx context.Context, src string, w io.Writer) (ImportSummary, error) {
	const op = "app.Import"

	var sum ImportSummary
	body, err := a.readCalendar(ctx, src)
	if err != nil {
		return sum, fmt.Errorf("%s: %w", op, err)
	}

	engine := rules.NewEngine(a.policy)
	validator := validation.New(engine)
	var existing []model.Event
	if snap := a.store.Current(); snap != nil {
		engine, validator, existing = snap.Engine, snap.Validator, snap.Events
	}

	drafts, skipped, err := ics.Parse(bytes.NewReader(body), ics.Window(engine.Policy().Days))
	if err != nil {
		return sum, fmt.Errorf("%s: %w", op, err)
	}

	for _, s := range skipped {
		sum.Skipped++
		fmt.Fprintf(w, "skip    %s: %v\n", s.UID, s.Err)
	}

	for _, d := range drafts {
		res := validator.ValidateEvent(d.Input)
		if res.IsValid {
			ev, err := d.Input.Event()
			if err != nil {
				return sum, fmt.Errorf("%s: %s: %w", op, d.UID, err)
			}
			res.Merge(validator.ValidateBusinessRules(ev, existing, ev.Area))
		}

		if res.IsValid {
			sum.Accepted++
			fmt.Fprintf(w, "ok      %s %q\n", d.UID, d.Input.Title)
		} else {
			sum.Rejected++
			fmt.Fprintf(w, "reject  %s %q\n", d.UID, d.Input.Title)
		}
		writeIssues(w, d.UID, res)
	}
	return sum, nil
}

func (a *App) readCalendar(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		body, _, err := a.fetcher.Fetch(ctx, src)
		return body, err
	}
	return os.ReadFile(src)
}
