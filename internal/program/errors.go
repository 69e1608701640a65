package program

import (
	"errors"
	"fmt"
)

var (
	ErrNoDays          = errors.New("program declares no festival days")
	ErrNotFestivalDay  = errors.New("day is not a festival day")
	ErrUnknownKind     = errors.New("unknown entry kind")
	ErrDuplicateID     = errors.New("duplicate entry id")
	ErrUnknownParent   = errors.New("dance show parent not found")
	ErrMissingPersonID = errors.New("person without id")
)

// UnknownPersonError is returned when an entry references a person id that
// is not in the people registry.
type UnknownPersonError struct {
	Role    string
	ID      string
	EntryID string
}

func (e *UnknownPersonError) Error() string {
	return fmt.Sprintf("entry %s references unknown %s %q", e.EntryID, e.Role, e.ID)
}
