package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "festsched/internal/log"
	"festsched/internal/rules"
)

// Reloader rebuilds the program snapshot on a cron schedule. A failed
// reload is logged and the previous snapshot stays in place.
type Reloader struct {
	path   string
	policy rules.Policy
	store  *Store
	now    func() time.Time

	// OnReload, if set, is called after every successful reload.
	OnReload func(*Snapshot)
}

func NewReloader(path string, policy rules.Policy, store *Store) *Reloader {
	return &Reloader{path: path, policy: policy, store: store, now: time.Now}
}

// Reload builds a fresh snapshot and publishes it.
func (r *Reloader) Reload() error {
	snap, err := Build(r.path, r.policy, r.now())
	if err != nil {
		if prev := r.store.Current(); prev != nil {
			appLog.Warn("program reload failed; keeping previous program",
				"path", r.path, "loaded_at", prev.LoadedAt, "err", err)
		} else {
			appLog.Error("program load failed; no program available", err, "path", r.path)
		}
		return err
	}
	r.store.Set(snap)
	appLog.Info("program loaded",
		"path", r.path,
		"events", len(snap.Events),
		"valid", snap.Report.IsValid,
		"errors", snap.Report.ErrorCount(),
		"warnings", snap.Report.WarningCount(),
	)
	if r.OnReload != nil {
		r.OnReload(snap)
	}
	return nil
}

// Run reloads on spec until ctx is done. With an empty spec it only waits
// for ctx.
func (r *Reloader) Run(ctx context.Context, spec string) error {
	if spec == "" {
		<-ctx.Done()
		return nil
	}

	loc := r.policy.Location
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() { _ = r.Reload() }); err != nil {
		return fmt.Errorf("watch.Run: refresh %q: %w", spec, err)
	}
	c.Start()
	appLog.Info("program reload scheduled", "refresh", spec)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
