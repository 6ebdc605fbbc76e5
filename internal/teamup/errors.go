package teamup

import (
	"fmt"
	"time"
)

// UnsupportedFormatError is returned when a date/time input matches none of
// the recognized shapes. It carries the original string for diagnostics.
type UnsupportedFormatError struct {
	Input string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported date format: %q", e.Input)
}

// InvalidIdentifierError is returned when a field that must be numeric
// (e.g. a subcalendar ID) does not parse as an integer.
type InvalidIdentifierError struct {
	Field string
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s: %q is not an integer", e.Field, e.Value)
}

// MissingBaseRecordError is returned when an update is attempted but the
// prior fetch of the existing record yielded nothing usable.
type MissingBaseRecordError struct {
	Resource string
	ID       string
}

func (e *MissingBaseRecordError) Error() string {
	return fmt.Sprintf("%s %s not found or invalid response body", e.Resource, e.ID)
}

// MissingEnvelopeError is returned when a response lacks the wrapper key
// (event, events, subcalendar, subcalendars) the API nests its payload under.
type MissingEnvelopeError struct {
	Key string
}

func (e *MissingEnvelopeError) Error() string {
	return fmt.Sprintf("response missing %q envelope", e.Key)
}

// RequiredFieldError is returned before any request is sent when a
// caller-required parameter is absent.
type RequiredFieldError struct {
	Op    string
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("%s is required for %s", e.Field, e.Op)
}

// StaleCutoffError is returned when a changed-events cutoff predates the
// change history the API keeps, before any request is sent.
type StaleCutoffError struct {
	Cutoff time.Time
}

func (e *StaleCutoffError) Error() string {
	return `the "modified since" date cannot be more than 30 days in the past`
}

// RequestError wraps a transport-level failure with the operation and the
// entity identifier so batch failures stay attributable to a specific input.
type RequestError struct {
	Op  string
	ID  string
	Err error
}

func (e *RequestError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.ID, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
