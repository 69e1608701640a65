package validation

import (
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"festsched/internal/model"
	"festsched/internal/rules"
)

const clockLayout = "15:04"

const (
	MinEventMinutes      = 15
	MaxEventMinutes      = 180
	MaxDescriptionLength = 500
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".avif"}

// Validator runs structural and business validation under one policy.
// Expected validation failures are reported in the Result, never as errors.
type Validator struct {
	engine *rules.Engine
}

func New(engine *rules.Engine) *Validator {
	return &Validator{engine: engine}
}

// ValidateEvent checks a single, possibly partial, record.
func (v *Validator) ValidateEvent(in EventInput) Result {
	r := newResult()

	if strings.TrimSpace(in.Title) == "" {
		r.errorf("title", CodeRequiredField, "title is required")
	}
	if in.StartTime == nil {
		r.errorf("start_time", CodeRequiredField, "start time is required")
	}
	if in.EndTime == nil {
		r.errorf("end_time", CodeRequiredField, "end time is required")
	}
	if in.Area == "" {
		r.errorf("area", CodeRequiredField, "area is required")
	} else if !model.Area(in.Area).Valid() {
		r.errorf("area", CodeInvalidArea, "unknown area %q", in.Area)
	}
	if in.Type == "" {
		r.errorf("type", CodeRequiredField, "type is required")
	} else if !model.EventType(in.Type).Valid() {
		r.errorf("type", CodeInvalidType, "unknown event type %q", in.Type)
	}
	if in.Status != "" && !validStatus(model.Status(in.Status)) {
		r.errorf("status", CodeInvalidStatus, "unknown status %q", in.Status)
	}
	if in.Metadata.Difficulty != "" && !model.Difficulty(in.Metadata.Difficulty).Valid() {
		r.errorf("metadata.difficulty", CodeInvalidDifficulty, "unknown difficulty %q", in.Metadata.Difficulty)
	}

	minutes := in.Duration
	if in.StartTime != nil && in.EndTime != nil {
		tr, err := model.NewTimeRange(*in.StartTime, *in.EndTime)
		if err != nil {
			r.errorf("end_time", CodeInvalidTimeRange, "end time must be after start time")
			minutes = 0
		} else {
			if in.Duration > 0 && in.Duration != tr.DurationInMinutes() {
				r.warnf("duration", CodeDurationMismatch, "duration %d does not match the %d minutes between start and end",
					in.Duration, tr.DurationInMinutes())
			}
			minutes = tr.DurationInMinutes()
		}
	}
	if minutes > 0 {
		v.checkDuration(r, model.EventType(in.Type), minutes)
	}

	if in.Capacity != nil {
		current := 0
		if in.CurrentAttendees != nil {
			current = *in.CurrentAttendees
		}
		if _, err := model.NewCapacity(*in.Capacity, current); err != nil {
			r.errorf("capacity", CodeInvalidCapacity, "%v", err)
		}
	}

	v.checkTypeRequirements(r, in)
	checkContent(r, in.Metadata)

	return *r
}

func (v *Validator) checkDuration(r *Result, typ model.EventType, minutes int) {
	if minutes < MinEventMinutes {
		r.warnf("duration", CodeDurationTooShort, "event is only %d minutes long; events under %d minutes are unusually short",
			minutes, MinEventMinutes)
	}
	if minutes > MaxEventMinutes {
		r.warnf("duration", CodeDurationTooLong, "event lasts %d minutes; events over %d minutes are unusually long",
			minutes, MaxEventMinutes)
	}
	limit := int(v.engine.Policy().MaxWorkshopDuration.Minutes())
	if typ == model.TypeWorkshop && minutes > limit {
		r.errorf("duration", CodeWorkshopTooLong, "workshop lasts %d minutes; workshops may not exceed %d minutes",
			minutes, limit)
	}
}

func (v *Validator) checkTypeRequirements(r *Result, in EventInput) {
	switch model.EventType(in.Type) {
	case model.TypeWorkshop:
		if len(in.Instructors) == 0 {
			r.errorf("instructors", CodeMissingInstructor, "workshops need at least one instructor")
		}
		if in.Metadata.Difficulty == "" {
			r.warnf("metadata.difficulty", CodeMissingDifficulty, "workshop has no difficulty level")
		}
	case model.TypeTalk:
		if len(in.Presenters) == 0 {
			r.warnf("presenters", CodeMissingPresenter, "talk has no presenter")
		}
	case model.TypeDanceShow:
		if strings.TrimSpace(in.Metadata.Description) == "" {
			r.warnf("metadata.description", CodeMissingDescription, "dance show has no description")
		}
	}

	if model.Area(in.Area) == model.AreaMainStage && model.EventType(in.Type) != model.TypeDanceShow && len(in.DJs) == 0 {
		r.warnf("djs", CodeMissingDJ, "main-stage event has no DJ")
	}
}

func checkContent(r *Result, md MetadataInput) {
	if n := utf8.RuneCountInString(md.Description); n > MaxDescriptionLength {
		r.warnf("metadata.description", CodeDescriptionTooLong, "description has %d characters; keep it under %d",
			n, MaxDescriptionLength)
	}
	for i, img := range md.Images {
		if !IsValidImageURL(img) {
			r.errorf(fmt.Sprintf("metadata.images[%d]", i), CodeInvalidImageURL, "invalid image URL %q", img)
		}
	}
	for i, s := range md.Slides {
		if strings.TrimSpace(s.Type) == "" {
			r.errorf(fmt.Sprintf("metadata.slides[%d].type", i), CodeMissingSlideType, "slide %d has no type", i+1)
		}
		if s.Image != "" && !IsValidImageURL(s.Image) {
			r.errorf(fmt.Sprintf("metadata.slides[%d].image", i), CodeInvalidImageURL, "invalid slide image URL %q", s.Image)
		}
	}
}

// IsValidImageURL accepts root-relative paths and absolute http(s) URLs
// whose path ends in a known image extension.
func IsValidImageURL(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return slices.Contains(imageExtensions, strings.ToLower(path.Ext(u.Path)))
}

func validStatus(s model.Status) bool {
	switch s {
	case model.StatusScheduled, model.StatusInProgress, model.StatusCompleted, model.StatusCancelled, model.StatusPostponed:
		return true
	}
	return false
}

// ValidateEventSchedule checks every pair of events for area and
// instructor conflicts and folds in difficulty-progression advice.
func (v *Validator) ValidateEventSchedule(events []model.Event) Result {
	r := newResult()

	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			a, b := events[i], events[j]
			if a.Area == b.Area && a.Range.Overlaps(b.Range) && !rules.Nested(a, b) {
				r.errorf("area", CodeAreaConflict, "%q and %q overlap in %s", a.Title, b.Title, a.Area)
			}
			if !rules.AreEventsCompatible(a, b) {
				r.errorf("instructors", CodeInstructorConflict, "%q and %q share an instructor at the same time", a.Title, b.Title)
			}
		}
	}

	progression := v.engine.ValidateDifficultyProgression(events, v.engine.Policy().TargetAudience)
	for _, s := range progression.Suggestions {
		r.warnf("difficulty", CodeDifficultyProgression, "%s", s)
	}

	return *r
}

// ValidateTimeSlotData checks a raw program row and then validates the
// event it describes.
func (v *Validator) ValidateTimeSlotData(rec TimeSlotRecord) Result {
	r := newResult()
	policy := v.engine.Policy()

	in := EventInput{
		ID:          rec.ID,
		Title:       rec.Title,
		Area:        rec.Area,
		Type:        rec.Type,
		Instructors: rec.Instructors,
		Presenters:  rec.Presenters,
		Hosts:       rec.Hosts,
		DJs:         rec.DJs,
		Metadata: MetadataInput{
			Description:  rec.Description,
			Difficulty:   rec.Difficulty,
			Images:       rec.Images,
			Slides:       rec.Slides,
			Requirements: rec.Requirements,
		},
	}

	var day time.Time
	dayOK := false
	if rec.Day == "" {
		r.errorf("day", CodeRequiredField, "day is required")
	} else if d, err := policy.ParseDay(rec.Day); err != nil {
		r.errorf("day", CodeInvalidDate, "day %q is not a YYYY-MM-DD date", rec.Day)
	} else if len(policy.Days) > 0 && policy.DayOf(d) < 0 {
		r.errorf("day", CodeNotFestivalDay, "%s is not a festival day", rec.Day)
	} else {
		day, dayOK = d, true
	}

	clocksOK := true
	for _, f := range []struct{ field, value string }{
		{"start_time", rec.StartTime},
		{"end_time", rec.EndTime},
	} {
		if f.value == "" {
			clocksOK = false
			continue
		}
		if _, err := time.Parse(clockLayout, f.value); err != nil {
			r.errorf(f.field, CodeInvalidTimeFormat, "%q is not an HH:MM time", f.value)
			clocksOK = false
		}
	}

	if dayOK && clocksOK {
		start, end, err := policy.SlotTimes(day, rec.StartTime, rec.EndTime)
		if err != nil {
			r.errorf("end_time", CodeInvalidTimeRange, "%s-%s is not a valid time slot: %v", rec.StartTime, rec.EndTime, err)
		} else {
			in.StartTime, in.EndTime = &start, &end
		}
	}

	ev := v.ValidateEvent(in)
	// A time that was given but could not be placed is already reported
	// above; do not also call it missing.
	ev.Errors = slices.DeleteFunc(ev.Errors, func(is Issue) bool {
		if is.Code != CodeRequiredField {
			return false
		}
		return (is.Field == "start_time" && rec.StartTime != "") || (is.Field == "end_time" && rec.EndTime != "")
	})
	r.Merge(ev)
	return *r
}

// ValidateBusinessRules runs the scheduling gate for ev and reports a
// rejection as a single error.
func (v *Validator) ValidateBusinessRules(ev model.Event, existing []model.Event, area model.Area) Result {
	r := newResult()
	d := v.engine.CanScheduleEvent(ev, existing, area)
	if !d.CanSchedule {
		r.errorf(string(d.Rule), CodeBusinessRule, "%s", d.Reason)
	}
	return *r
}
