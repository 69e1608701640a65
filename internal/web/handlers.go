package web

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"festsched/internal/ics"
	appLog "festsched/internal/log"
	"festsched/internal/model"
	"festsched/internal/rules"
	"festsched/internal/validation"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleValidateEvent(c *gin.Context) {
	var in validation.EventInput
	if !bind(c, &in) {
		return
	}
	_, v := s.activeEngine()
	writeJSON(c, http.StatusOK, v.ValidateEvent(in))
}

func (s *Server) handleValidateTimeSlot(c *gin.Context) {
	var rec validation.TimeSlotRecord
	if !bind(c, &rec) {
		return
	}
	_, v := s.activeEngine()
	writeJSON(c, http.StatusOK, v.ValidateTimeSlotData(rec))
}

// handleValidateSchedule validates every record on its own first; the
// schedule-wide checks only run when all records are well formed.
func (s *Server) handleValidateSchedule(c *gin.Context) {
	var req scheduleRequest
	if !bind(c, &req) {
		return
	}
	_, v := s.activeEngine()

	events, structural := toEvents(v, req.Events)
	if !structural.IsValid {
		writeJSON(c, http.StatusOK, structural)
		return
	}
	res := v.ValidateEventSchedule(events)
	res.Warnings = append(structural.Warnings, res.Warnings...)
	writeJSON(c, http.StatusOK, res)
}

// handleCheckSchedule runs the placement rules for one candidate against
// the loaded program.
func (s *Server) handleCheckSchedule(c *gin.Context) {
	var req checkRequest
	if !bind(c, &req) {
		return
	}
	snap, err := s.snapshot()
	if err != nil {
		respondErr(c, err)
		return
	}

	res := snap.Validator.ValidateEvent(req.Event)
	if !res.IsValid {
		writeJSON(c, http.StatusOK, checkResponse{Reason: "event record is invalid", Validation: res})
		return
	}
	ev, err := req.Event.Event()
	if err != nil {
		respondErr(c, err)
		return
	}

	area := ev.Area
	if req.Area != "" {
		if area, err = model.ParseArea(req.Area); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	d := snap.Engine.CanScheduleEvent(ev, snap.Events, area)
	res.Merge(snap.Validator.ValidateBusinessRules(ev, snap.Events, area))
	writeJSON(c, http.StatusOK, checkResponse{
		CanSchedule: d.CanSchedule,
		Reason:      d.Reason,
		Rule:        d.Rule,
		Validation:  res,
	})
}

func (s *Server) handleCapacity(c *gin.Context) {
	var req capacityRequest
	if !bind(c, &req) {
		return
	}
	ev, err := req.Event.Event()
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	engine, _ := s.activeEngine()
	writeJSON(c, http.StatusOK, capacityResponse{
		Base:     rules.BaseCapacity(ev.Area, ev.Type),
		Capacity: engine.CalculateOptimalCapacity(ev, req.History),
	})
}

// handleValidateResources checks the posted events, or the loaded program
// when none are posted, against the posted pool or the configured one.
func (s *Server) handleValidateResources(c *gin.Context) {
	var req resourcesRequest
	if !bind(c, &req) {
		return
	}

	var events []model.Event
	if len(req.Events) > 0 {
		_, v := s.activeEngine()
		evs, structural := toEvents(v, req.Events)
		if !structural.IsValid {
			writeJSON(c, http.StatusUnprocessableEntity, structural)
			return
		}
		events = evs
	} else {
		snap, err := s.snapshot()
		if err != nil {
			respondErr(c, err)
			return
		}
		events = snap.Events
	}

	pool := s.cfg.ResourcePool()
	if req.Resources != nil {
		pool = *req.Resources
	}
	writeJSON(c, http.StatusOK, rules.ValidateResourceAllocation(events, pool))
}

// handleProgram returns the loaded program. Responses are cached for a
// short time and rebuilt immediately when a new snapshot is published.
func (s *Server) handleProgram(c *gin.Context) {
	snap, err := s.snapshot()
	if err != nil {
		respondErr(c, err)
		return
	}

	now := s.now()
	s.programMu.RLock()
	pc := s.programCache
	s.programMu.RUnlock()
	if pc != nil && pc.loadedAt.Equal(snap.LoadedAt) && now.Sub(pc.updatedAt) < programCacheTTL {
		writeJSONWithCache(c, http.StatusOK, pc.resp, "private, max-age=30")
		return
	}

	resp := programResponse{
		Name:     snap.Program.Name,
		LoadedAt: snap.LoadedAt,
		Days:     make([]string, 0, len(snap.Program.Days)),
		Events:   make([]programEvent, 0, len(snap.Events)),
		Report:   snap.Report,
	}
	for _, d := range snap.Program.Days {
		resp.Days = append(resp.Days, d.Format("2006-01-02"))
	}
	for _, ev := range snap.Events {
		resp.Events = append(resp.Events, programEvent{
			EventInput:   validation.FromEvent(ev),
			DisplayTitle: s.labels.Resolve(ev.Title),
			DisplayArea:  s.labels.Resolve(ics.AreaLabelKey(ev.Area)),
		})
	}

	s.programMu.Lock()
	s.programCache = &programCache{resp: resp, loadedAt: snap.LoadedAt, updatedAt: now}
	s.programMu.Unlock()

	writeJSONWithCache(c, http.StatusOK, resp, "private, max-age=30")
}

func (s *Server) handleProgramICS(c *gin.Context) {
	snap, err := s.snapshot()
	if err != nil {
		respondErr(c, err)
		return
	}
	var buf bytes.Buffer
	if err := ics.Export(&buf, snap.Events, s.labels, snap.LoadedAt); err != nil {
		respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="program.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// toEvents validates each record and converts the valid ones. Issue
// fields are prefixed with the record index.
func toEvents(v *validation.Validator, inputs []validation.EventInput) ([]model.Event, validation.Result) {
	all := validation.Result{IsValid: true, Errors: []validation.Issue{}, Warnings: []validation.Issue{}}
	events := make([]model.Event, 0, len(inputs))

	for i, in := range inputs {
		res := v.ValidateEvent(in)
		for j := range res.Errors {
			res.Errors[j].Field = fmt.Sprintf("events[%d].%s", i, res.Errors[j].Field)
		}
		for j := range res.Warnings {
			res.Warnings[j].Field = fmt.Sprintf("events[%d].%s", i, res.Warnings[j].Field)
		}
		all.Merge(res)
		if !res.IsValid {
			continue
		}
		ev, err := in.Event()
		if err != nil {
			all.Merge(validation.Result{Errors: []validation.Issue{{
				Field:    fmt.Sprintf("events[%d]", i),
				Code:     validation.CodeInvalidTimeRange,
				Message:  err.Error(),
				Severity: validation.SeverityError,
			}}})
			continue
		}
		events = append(events, ev)
	}
	return events, all
}

// bind decodes the JSON body into v and answers 400 on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func respondErr(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, errNotLoaded):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, model.ErrInvalidTimeRange),
		errors.Is(err, model.ErrUnknownArea),
		errors.Is(err, model.ErrUnknownEventType),
		errors.Is(err, model.ErrCapacityExceeded),
		errors.Is(err, model.ErrNegativeCapacity):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, ErrorResponse{Error: msg})
}

// writeJSONWithCache writes v with a strong ETag and answers 304 when the
// client already has it.
func writeJSONWithCache(c *gin.Context, status int, v any, cacheControl string) {
	b, err := json.Marshal(v)
	if err != nil {
		appLog.Error("failed to encode JSON response", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	tag := etag(b)
	c.Header("ETag", tag)
	c.Header("Cache-Control", cacheControl)
	if c.GetHeader("If-None-Match") == tag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}

func etag(b []byte) string {
	sum := sha256.Sum256(b)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
