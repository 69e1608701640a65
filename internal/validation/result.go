package validation

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code classifies an Issue. Codes are stable identifiers for callers; the
// Message is for humans.
type Code string

const (
	CodeRequiredField         Code = "REQUIRED_FIELD"
	CodeInvalidArea           Code = "INVALID_AREA"
	CodeInvalidType           Code = "INVALID_TYPE"
	CodeInvalidStatus         Code = "INVALID_STATUS"
	CodeInvalidDifficulty     Code = "INVALID_DIFFICULTY"
	CodeInvalidTimeRange      Code = "INVALID_TIME_RANGE"
	CodeInvalidCapacity       Code = "INVALID_CAPACITY"
	CodeDurationMismatch      Code = "DURATION_MISMATCH"
	CodeDurationTooShort      Code = "DURATION_TOO_SHORT"
	CodeDurationTooLong       Code = "DURATION_TOO_LONG"
	CodeWorkshopTooLong       Code = "WORKSHOP_TOO_LONG"
	CodeMissingInstructor     Code = "MISSING_INSTRUCTOR"
	CodeMissingDifficulty     Code = "MISSING_DIFFICULTY"
	CodeMissingPresenter      Code = "MISSING_PRESENTER"
	CodeMissingDescription    Code = "MISSING_DESCRIPTION"
	CodeMissingDJ             Code = "MISSING_DJ"
	CodeDescriptionTooLong    Code = "DESCRIPTION_TOO_LONG"
	CodeInvalidImageURL       Code = "INVALID_IMAGE_URL"
	CodeMissingSlideType      Code = "MISSING_SLIDE_TYPE"
	CodeInvalidDate           Code = "INVALID_DATE"
	CodeNotFestivalDay        Code = "NOT_FESTIVAL_DAY"
	CodeInvalidTimeFormat     Code = "INVALID_TIME_FORMAT"
	CodeAreaConflict          Code = "AREA_CONFLICT"
	CodeInstructorConflict    Code = "INSTRUCTOR_CONFLICT"
	CodeDifficultyProgression Code = "DIFFICULTY_PROGRESSION"
	CodeBusinessRule          Code = "BUSINESS_RULE_VIOLATION"
)

// Issue is a single validation finding.
type Issue struct {
	Field    string   `json:"field"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Result collects every finding for one validation call. Errors block
// acceptance; warnings are advisory.
type Result struct {
	IsValid  bool    `json:"is_valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func newResult() *Result {
	return &Result{IsValid: true, Errors: []Issue{}, Warnings: []Issue{}}
}

func (r *Result) errorf(field string, code Code, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{
		Field:    field,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	})
	r.IsValid = false
}

func (r *Result) warnf(field string, code Code, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{
		Field:    field,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
	})
}

// Merge folds o into r.
func (r *Result) Merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
	r.IsValid = len(r.Errors) == 0
}

// HasCode reports whether any error or warning carries code.
func (r Result) HasCode(code Code) bool {
	for _, is := range r.Errors {
		if is.Code == code {
			return true
		}
	}
	for _, is := range r.Warnings {
		if is.Code == code {
			return true
		}
	}
	return false
}
