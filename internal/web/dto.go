package web

import (
	"time"

	"festsched/internal/rules"
	"festsched/internal/validation"
	"festsched/internal/watch"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type scheduleRequest struct {
	Events []validation.EventInput `json:"events" binding:"required"`
}

type checkRequest struct {
	Event validation.EventInput `json:"event"`
	// Area defaults to the event's own area.
	Area string `json:"area"`
}

type checkResponse struct {
	CanSchedule bool              `json:"can_schedule"`
	Reason      string            `json:"reason,omitempty"`
	Rule        rules.Rule        `json:"rule,omitempty"`
	Validation  validation.Result `json:"validation"`
}

type capacityRequest struct {
	Event   validation.EventInput    `json:"event"`
	History *rules.AttendanceHistory `json:"history,omitempty"`
}

type capacityResponse struct {
	Base     int `json:"base"`
	Capacity int `json:"capacity"`
}

type resourcesRequest struct {
	Events    []validation.EventInput `json:"events,omitempty"`
	Resources *rules.Resources        `json:"resources,omitempty"`
}

type programEvent struct {
	validation.EventInput
	DisplayTitle string `json:"display_title"`
	DisplayArea  string `json:"display_area"`
}

type programResponse struct {
	Name     string         `json:"name,omitempty"`
	LoadedAt time.Time      `json:"loaded_at"`
	Days     []string       `json:"days"`
	Events   []programEvent `json:"events"`
	Report   watch.Report   `json:"report"`
}
