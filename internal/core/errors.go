package core

import (
	"errors"
	"fmt"
)

var (
	ErrReadOnlySource    = errors.New("record source is read-only")
	ErrInvalidDate       = errors.New("invalid date")
	ErrUnknownWriteRoute = errors.New("no write route for category and source")
	ErrNotFound          = errors.New("record not found")
)

// SkipError reports a raw record the normalizer dropped.
type SkipError struct {
	Kind   string
	ID     string
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skip %s record %q: %s", e.Kind, e.ID, e.Reason)
}

// PartialRecurrenceError reports that occurrence Index (zero based) of Total
// failed to insert. Occurrences before Index were written and are listed in
// InsertedIDs; they are not rolled back.
type PartialRecurrenceError struct {
	GroupID     string
	Index       int
	Total       int
	InsertedIDs []string
	Err         error
}

func (e *PartialRecurrenceError) Error() string {
	return fmt.Sprintf("recurrence group %s: occurrence %d of %d failed: %v", e.GroupID, e.Index+1, e.Total, e.Err)
}

func (e *PartialRecurrenceError) Unwrap() error {
	return e.Err
}
