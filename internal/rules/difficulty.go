package rules

import (
	"fmt"

	"festsched/internal/model"
)

// ProgressionReport is advisory only: IsValid is always true and
// Suggestions never block a schedule.
type ProgressionReport struct {
	IsValid     bool     `json:"is_valid"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// DifficultyCounts tallies workshops per difficulty level. Workshops
// without a level are counted in Total only.
type DifficultyCounts struct {
	Beginner     int
	Intermediate int
	Advanced     int
	AllLevels    int
	Total        int
}

func CountWorkshopDifficulty(events []model.Event) DifficultyCounts {
	var c DifficultyCounts
	for _, ev := range events {
		if ev.Type != model.TypeWorkshop {
			continue
		}
		c.Total++
		switch ev.Metadata.Difficulty {
		case model.DifficultyBeginner:
			c.Beginner++
		case model.DifficultyIntermediate:
			c.Intermediate++
		case model.DifficultyAdvanced:
			c.Advanced++
		case model.DifficultyAllLevels:
			c.AllLevels++
		}
	}
	return c
}

// ValidateDifficultyProgression looks at the workshop mix and suggests
// changes for the given target audience.
func (e *Engine) ValidateDifficultyProgression(events []model.Event, audience model.Difficulty) ProgressionReport {
	report := ProgressionReport{IsValid: true}

	c := CountWorkshopDifficulty(events)
	if c.Total == 0 {
		return report
	}

	if (c.Advanced > 0 || c.Intermediate > 0) && c.Beginner == 0 {
		report.Suggestions = append(report.Suggestions,
			"There are intermediate or advanced workshops but no beginner workshops; add at least one beginner workshop as an entry point.")
	}
	if c.Advanced > 0 && c.Intermediate == 0 {
		report.Suggestions = append(report.Suggestions,
			"There are advanced workshops but no intermediate workshops; add intermediate workshops to bridge the gap.")
	}

	beginnerRatio := float64(c.Beginner) / float64(c.Total)
	advancedRatio := float64(c.Advanced) / float64(c.Total)

	if audience == model.DifficultyBeginner && beginnerRatio < e.policy.BeginnerRatioFloor {
		report.Suggestions = append(report.Suggestions, fmt.Sprintf(
			"Only %.0f%% of workshops are for beginners while the target audience is beginners; aim for at least %.0f%%.",
			beginnerRatio*100, e.policy.BeginnerRatioFloor*100))
	}
	if audience != model.DifficultyAdvanced && advancedRatio > e.policy.AdvancedRatioCeiling {
		report.Suggestions = append(report.Suggestions, fmt.Sprintf(
			"%.0f%% of workshops are advanced, which is more than %.0f%% for a %s audience; consider lowering some levels.",
			advancedRatio*100, e.policy.AdvancedRatioCeiling*100, audienceLabel(audience)))
	}

	return report
}

func audienceLabel(d model.Difficulty) string {
	if d == "" {
		return string(model.DifficultyAllLevels)
	}
	return string(d)
}
