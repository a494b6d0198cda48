package extract

import "fmt"

// ParseError reports a field or region that is missing from the page or
// shaped unexpectedly.
type ParseError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func missing(field string) error {
	return &ParseError{Field: field, Reason: "not found"}
}

// convErr wraps a numeric conversion failure with the field it came from.
// The ConversionError stays reachable through errors.As.
func convErr(field string, err error) error {
	return fmt.Errorf("field %s: %w", field, err)
}
