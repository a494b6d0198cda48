// Package dates provides calendar dates without a clock or zone, and lazy
// half-open ranges over consecutive days.
package dates

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// Date is a calendar day. It marshals as YYYY-MM-DD text, and AddDays,
// DaysSince, Before and After work on whole days with no duration limit.
type Date = civil.Date

// Parse reads a YYYY-MM-DD date, ignoring surrounding whitespace.
func Parse(s string) (Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for constants and tests; it panics on bad input.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}
