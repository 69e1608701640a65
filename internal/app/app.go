package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"festsched/internal/config"
	"festsched/internal/ics"
	"festsched/internal/label"
	appLog "festsched/internal/log"
	"festsched/internal/rules"
	"festsched/internal/watch"
	"festsched/internal/web"
)

// App wires the program store, the reloader and the HTTP API together.
type App struct {
	cfg      *config.Config
	policy   rules.Policy
	labels   *label.Catalog
	store    *watch.Store
	reloader *watch.Reloader
	server   *web.Server
	fetcher  *ics.Fetcher
}

// New builds the application and loads the program once. A program that
// fails to load is logged; the API answers 503 for program endpoints until
// a later reload succeeds. Use Load when the failure should be fatal.
func New(cfg *config.Config) (*App, error) {
	const op = "app.New"

	policy, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	labels := label.NewCatalog(cfg.Labels)
	store := watch.NewStore(nil)
	a := &App{
		cfg:      cfg,
		policy:   policy,
		labels:   labels,
		store:    store,
		reloader: watch.NewReloader(cfg.ProgramPath, policy, store),
		server:   web.NewServer(cfg, policy, store, labels),
		fetcher:  ics.NewFetcher(nil),
	}
	_ = a.reloader.Reload()
	return a, nil
}

// Snapshot returns the current program snapshot, or nil when no program
// has loaded yet.
func (a *App) Snapshot() *watch.Snapshot {
	return a.store.Current()
}

// Load forces a reload and returns the resulting snapshot.
func (a *App) Load() (*watch.Snapshot, error) {
	if err := a.reloader.Reload(); err != nil {
		return nil, err
	}
	return a.store.Current(), nil
}

// Run serves the API and reloads the program until ctx is cancelled or
// the process receives SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Serve(gCtx)
	})

	g.Go(func() error {
		return a.reloader.Run(gCtx, a.cfg.RefreshCron)
	})

	err := g.Wait()
	appLog.Info("festsched stopped")
	return err
}
