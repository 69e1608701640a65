package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festsched/internal/model"
)

func TestOptimizeEventTiming(t *testing.T) {
	t.Parallel()
	e := NewEngine(DefaultPolicy())

	main := newEvent(t, "main", model.AreaMainStage, model.TypeMain, hm(20, 0), hm(22, 0))
	talk := newEvent(t, "talk", model.AreaSalsaTalks, model.TypeTalk, hm(10, 0), hm(11, 0))
	ws := newEvent(t, "ws", model.AreaDanceWorkshops, model.TypeWorkshop, hm(11, 10), hm(12, 0))

	sorted, warnings := e.OptimizeEventTiming([]model.Event{main, ws, talk})

	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"talk", "ws", "main"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnShortBreak, warnings[0].Kind)
	assert.Equal(t, "ws", warnings[0].EventID)
}

func TestOptimizeEventTiming_OffPeak(t *testing.T) {
	t.Parallel()
	e := NewEngine(DefaultPolicy())

	tests := []struct {
		name string
		h, m int
		want bool
	}{
		{"morning show", 9, 30, true},
		{"peak start", 10, 0, false},
		{"peak end is still peak", 22, 0, false},
		{"after peak", 22, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := hm(tt.h, tt.m)
			ev := newEvent(t, "perf", model.AreaMainStage, model.TypePerformance, start, start.Add(time.Hour))
			_, warnings := e.OptimizeEventTiming([]model.Event{ev})
			if tt.want {
				require.Len(t, warnings, 1)
				assert.Equal(t, WarnOffPeak, warnings[0].Kind)
			} else {
				assert.Empty(t, warnings)
			}
		})
	}
}

func TestOptimizeEventTiming_LocalTime(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	p := DefaultPolicy()
	p.Location = loc
	e := NewEngine(p)

	// 21:00 UTC is 23:00 local.
	ev := newEvent(t, "late", model.AreaMainStage, model.TypeMain, hm(21, 0), hm(23, 0))
	_, warnings := e.OptimizeEventTiming([]model.Event{ev})
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnOffPeak, warnings[0].Kind)
}

func TestOptimizeEventTiming_KeepsInput(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	in := []model.Event{
		newEvent(t, "b", model.AreaSalsaTalks, model.TypeTalk, hm(16, 0), hm(17, 0)),
		newEvent(t, "a", model.AreaSalsaTalks, model.TypeTalk, hm(14, 0), hm(15, 0)),
	}

	out, _ := e.OptimizeEventTiming(in)
	assert.Equal(t, "b", in[0].ID)
	assert.Equal(t, "a", out[0].ID)
}
