// Package numeric converts locale-formatted number text such as "1,806 원"
// or "10.5%" into clean integer and decimal values.
package numeric

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Kind selects the value type produced by Normalize.
type Kind int

const (
	// KindString yields the canonical digit string.
	KindString Kind = iota
	// KindInt yields an int64.
	KindInt
	// KindDecimal yields a float64 and keeps a single decimal point.
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindDecimal:
		return "decimal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ConversionError reports text that could not be turned into the requested kind.
type ConversionError struct {
	Text   string
	Kind   Kind
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("convert %q to %s: %s", e.Text, e.Kind, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Normalize strips everything but digits from text (and, for KindDecimal, a
// decimal point that precedes a digit) and converts the result to kind. The
// returned value is a string, int64 or float64 respectively.
func Normalize(text string, kind Kind) (any, error) {
	switch kind {
	case KindString:
		return String(text)
	case KindInt:
		return Int(text)
	case KindDecimal:
		return Decimal(text)
	default:
		return nil, &ConversionError{Text: text, Kind: kind, Reason: "unknown kind"}
	}
}

// String returns the digits of text with separators, units and symbols removed.
func String(text string) (string, error) {
	digits, _, _ := canonical(text, false)
	if digits == "" {
		return "", &ConversionError{Text: text, Kind: KindString, Reason: "no digits"}
	}
	return digits, nil
}

// Int parses the digits of text as a base-10 integer.
func Int(text string) (int64, error) {
	digits, _, _ := canonical(text, false)
	if digits == "" {
		return 0, &ConversionError{Text: text, Kind: KindInt, Reason: "no digits"}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, &ConversionError{Text: text, Kind: KindInt, Reason: "out of range", Err: err}
	}
	return n, nil
}

// Decimal parses the digits of text, keeping one decimal point, as a float64.
// A point followed by digits is kept, so ".5" is 0.5. A point after the last
// digit is dropped. A point that separates digits from digits that do not
// follow it directly, as in "1. 5", is an error.
func Decimal(text string) (float64, error) {
	digits, points, detached := canonical(text, true)
	if digits == "" {
		return 0, &ConversionError{Text: text, Kind: KindDecimal, Reason: "no digits"}
	}
	if points > 1 {
		return 0, &ConversionError{Text: text, Kind: KindDecimal, Reason: fmt.Sprintf("%d decimal points", points)}
	}
	if detached {
		return 0, &ConversionError{Text: text, Kind: KindDecimal, Reason: "detached decimal point"}
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, &ConversionError{Text: text, Kind: KindDecimal, Reason: "malformed decimal", Err: err}
	}
	return f, nil
}

// canonical folds fullwidth forms to ASCII and keeps only digits. With
// keepPoint, a '.' directly followed by a digit is kept. A '.' directly after
// a digit but not before one is pending: it is dropped at the end of text,
// counts as a point when another point follows, and marks the result detached
// when more digits follow. Points touching no digit are ignored.
func canonical(text string, keepPoint bool) (digits string, points int, detached bool) {
	folded := []rune(width.Fold.String(text))
	var b strings.Builder
	pending := false
	for i, r := range folded {
		switch {
		case isDigit(r):
			if pending {
				detached = true
				pending = false
			}
			b.WriteRune(r)
		case r == '.' && keepPoint:
			next := i+1 < len(folded) && isDigit(folded[i+1])
			prev := i > 0 && isDigit(folded[i-1])
			switch {
			case next:
				if pending {
					points++
					pending = false
				}
				b.WriteRune(r)
				points++
			case prev:
				pending = true
			}
		}
	}
	return b.String(), points, detached
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
