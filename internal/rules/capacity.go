package rules

import (
	"math"

	"festsched/internal/model"
)

// baseCapacity is the expected audience per area and event type before any
// historical adjustment.
var baseCapacity = map[model.Area]map[model.EventType]int{
	model.AreaMainStage: {
		model.TypeMain:        500,
		model.TypeDanceShow:   400,
		model.TypeWorkshop:    100,
		model.TypeTalk:        150,
		model.TypePerformance: 450,
		model.TypeSocial:      300,
	},
	model.AreaDanceWorkshops: {
		model.TypeMain:        80,
		model.TypeDanceShow:   60,
		model.TypeWorkshop:    30,
		model.TypeTalk:        40,
		model.TypePerformance: 50,
		model.TypeSocial:      60,
	},
	model.AreaMusicWorkshops: {
		model.TypeMain:        60,
		model.TypeDanceShow:   40,
		model.TypeWorkshop:    25,
		model.TypeTalk:        40,
		model.TypePerformance: 50,
		model.TypeSocial:      40,
	},
	model.AreaSalsaTalks: {
		model.TypeMain:        80,
		model.TypeDanceShow:   50,
		model.TypeWorkshop:    40,
		model.TypeTalk:        60,
		model.TypePerformance: 60,
		model.TypeSocial:      60,
	},
}

// BaseCapacity returns the matrix value for area and type, or 0 for an
// unknown combination.
func BaseCapacity(area model.Area, typ model.EventType) int {
	return baseCapacity[area][typ]
}

// AttendanceHistory summarises past attendance for comparable events.
type AttendanceHistory struct {
	Average float64 `json:"average"`
	Peak    float64 `json:"peak"`
}

// CalculateOptimalCapacity scales the base capacity by peak/average,
// capped at MaxCapacityMultiplier. Without usable history the base
// capacity is returned unchanged.
func (e *Engine) CalculateOptimalCapacity(ev model.Event, history *AttendanceHistory) int {
	base := BaseCapacity(ev.Area, ev.Type)
	if history == nil || history.Average <= 0 || history.Peak <= 0 {
		return base
	}
	factor := math.Min(history.Peak/history.Average, e.policy.MaxCapacityMultiplier)
	return int(math.Round(float64(base) * factor))
}
