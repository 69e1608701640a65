package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"festsched/internal/config"
	"festsched/internal/label"
	appLog "festsched/internal/log"
	"festsched/internal/rules"
	"festsched/internal/validation"
	"festsched/internal/watch"
)

const programCacheTTL = 30 * time.Second

var errNotLoaded = errors.New("program not loaded")

// Server serves the validation API. Stateless endpoints use the base
// policy; program-aware endpoints read the current snapshot from store.
type Server struct {
	cfg       *config.Config
	engine    *rules.Engine
	validator *validation.Validator
	store     *watch.Store
	labels    label.Resolver
	now       func() time.Time

	// In-memory cache for /api/program keyed by snapshot load time.
	programMu    sync.RWMutex
	programCache *programCache
}

type programCache struct {
	resp      programResponse
	loadedAt  time.Time
	updatedAt time.Time
}

func NewServer(cfg *config.Config, policy rules.Policy, store *watch.Store, labels label.Resolver) *Server {
	if labels == nil {
		labels = label.Identity{}
	}
	engine := rules.NewEngine(policy)
	return &Server{
		cfg:       cfg,
		engine:    engine,
		validator: validation.New(engine),
		store:     store,
		labels:    labels,
		now:       time.Now,
	}
}

// Handler builds the gin engine with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(), CORS())

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		api.Use(s.basicAuthMiddleware())
	}
	{
		api.POST("/events/validate", s.handleValidateEvent)
		api.POST("/timeslots/validate", s.handleValidateTimeSlot)
		api.POST("/schedule/validate", s.handleValidateSchedule)
		api.POST("/schedule/check", s.handleCheckSchedule)
		api.POST("/capacity", s.handleCapacity)
		api.POST("/resources/validate", s.handleValidateResources)
		api.GET("/program", s.handleProgram)
		api.GET("/program.ics", s.handleProgramICS)
	}
	return r
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured with both
// a username and a password.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

func (s *Server) basicAuthMiddleware() gin.HandlerFunc {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return func(c *gin.Context) {
		u, p, ok := c.Request.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			c.Header("WWW-Authenticate", `Basic realm="festsched", charset="UTF-8"`)
			writeError(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// snapshot returns the current program snapshot or errNotLoaded.
func (s *Server) snapshot() (*watch.Snapshot, error) {
	if s.store == nil {
		return nil, errNotLoaded
	}
	snap := s.store.Current()
	if snap == nil {
		return nil, errNotLoaded
	}
	return snap, nil
}

// activeEngine prefers the snapshot's engine, which knows the program's
// festival days.
func (s *Server) activeEngine() (*rules.Engine, *validation.Validator) {
	if snap, err := s.snapshot(); err == nil {
		return snap.Engine, snap.Validator
	}
	return s.engine, s.validator
}

// Serve runs an HTTP server on cfg.Listen until ctx is done, then shuts
// it down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLog.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
