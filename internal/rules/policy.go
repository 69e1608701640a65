package rules

import (
	"fmt"
	"time"

	"festsched/internal/model"
)

// Program-committee policy values. They are not derived from anything
// structural and may be overridden per festival through config.
const (
	DefaultBufferTime            = 15 * time.Minute
	DefaultMaxWorkshopDuration   = 120 * time.Minute
	DefaultMinBreak              = 30 * time.Minute
	DefaultBeginnerRatioFloor    = 0.30
	DefaultAdvancedRatioCeiling  = 0.50
	DefaultMaxCapacityMultiplier = 2.0
	DefaultPeakStartMinute       = 10 * 60
	// DefaultPeakEndMinute is inclusive to the minute: 22:00 is peak,
	// 22:01 is already off-peak.
	DefaultPeakEndMinute         = 22 * 60
	// DefaultNightEndMinute is the latest end clock a slot may roll over
	// midnight to.
	DefaultNightEndMinute        = 6 * 60
)

// Policy is the immutable scheduling configuration for one festival. Build
// it once (usually from config) and pass it to NewEngine / validation.New.
type Policy struct {
	// Location is the festival's local timezone. Off-peak detection and
	// "HH:MM" program times are interpreted here.
	Location *time.Location

	// Days are the festival days as local midnights, in order.
	Days []time.Time

	BufferTime            time.Duration
	MaxWorkshopDuration   time.Duration
	MinBreak              time.Duration
	BeginnerRatioFloor    float64
	AdvancedRatioCeiling  float64
	MaxCapacityMultiplier float64

	// PeakStartMinute / PeakEndMinute bound the peak window in minutes
	// after local midnight.
	PeakStartMinute int
	PeakEndMinute   int

	// NightEndMinute bounds midnight rollover: a slot whose end clock is
	// before its start clock ends on the next day only when the end clock
	// is at or before this minute.
	NightEndMinute int

	// TargetAudience drives the difficulty-progression advice.
	TargetAudience model.Difficulty
}

func DefaultPolicy() Policy {
	return Policy{
		Location:              time.UTC,
		BufferTime:            DefaultBufferTime,
		MaxWorkshopDuration:   DefaultMaxWorkshopDuration,
		MinBreak:              DefaultMinBreak,
		BeginnerRatioFloor:    DefaultBeginnerRatioFloor,
		AdvancedRatioCeiling:  DefaultAdvancedRatioCeiling,
		MaxCapacityMultiplier: DefaultMaxCapacityMultiplier,
		PeakStartMinute:       DefaultPeakStartMinute,
		PeakEndMinute:         DefaultPeakEndMinute,
		NightEndMinute:        DefaultNightEndMinute,
		TargetAudience:        model.DifficultyAllLevels,
	}
}

// withDefaults fills zero fields so a partially built Policy still behaves.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.Location == nil {
		p.Location = d.Location
	}
	if p.BufferTime <= 0 {
		p.BufferTime = d.BufferTime
	}
	if p.MaxWorkshopDuration <= 0 {
		p.MaxWorkshopDuration = d.MaxWorkshopDuration
	}
	if p.MinBreak <= 0 {
		p.MinBreak = d.MinBreak
	}
	if p.BeginnerRatioFloor <= 0 {
		p.BeginnerRatioFloor = d.BeginnerRatioFloor
	}
	if p.AdvancedRatioCeiling <= 0 {
		p.AdvancedRatioCeiling = d.AdvancedRatioCeiling
	}
	if p.MaxCapacityMultiplier <= 0 {
		p.MaxCapacityMultiplier = d.MaxCapacityMultiplier
	}
	if p.PeakStartMinute <= 0 && p.PeakEndMinute <= 0 {
		p.PeakStartMinute = d.PeakStartMinute
		p.PeakEndMinute = d.PeakEndMinute
	}
	if p.NightEndMinute <= 0 {
		p.NightEndMinute = d.NightEndMinute
	}
	if p.TargetAudience == "" {
		p.TargetAudience = d.TargetAudience
	}
	return p
}

// DayOf returns the index of the festival day containing local date t, or
// -1 when t falls on no festival day.
func (p Policy) DayOf(t time.Time) int {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	ly, lm, ld := t.In(loc).Date()
	for i, d := range p.Days {
		y, m, dd := d.In(loc).Date()
		if y == ly && m == lm && dd == ld {
			return i
		}
	}
	return -1
}

// Engine evaluates scheduling rules under a fixed Policy. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	policy Policy
}

func NewEngine(p Policy) *Engine {
	return &Engine{policy: p.withDefaults()}
}

// Policy returns the effective policy (with defaults applied).
func (e *Engine) Policy() Policy {
	return e.policy
}

const (
	dayLayout   = "2006-01-02"
	clockLayout = "15:04"
)

// ParseDay parses a YYYY-MM-DD date as local midnight.
func (p Policy) ParseDay(s string) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(dayLayout, s, loc)
}

// SlotTimes resolves "HH:MM" start/end clock strings on day. An end before
// the start rolls over to the next day when it is no later than
// NightEndMinute, which is how late-night socials are written in the
// program. Equal clocks, or an earlier end past that cutoff, fail with
// model.ErrInvalidTimeRange.
func (p Policy) SlotTimes(day time.Time, start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(clockLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := time.Parse(clockLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	y, m, d := day.Date()
	loc := day.Location()
	startAt := time.Date(y, m, d, s.Hour(), s.Minute(), 0, 0, loc)
	endAt := time.Date(y, m, d, e.Hour(), e.Minute(), 0, 0, loc)
	if endAt.Equal(startAt) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s-%s", model.ErrInvalidTimeRange, start, end)
	}
	if endAt.Before(startAt) {
		night := p.NightEndMinute
		if night <= 0 {
			night = DefaultNightEndMinute
		}
		if e.Hour()*60+e.Minute() > night {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %s-%s ends before it starts", model.ErrInvalidTimeRange, start, end)
		}
		endAt = endAt.AddDate(0, 0, 1)
	}
	return startAt, endAt, nil
}
