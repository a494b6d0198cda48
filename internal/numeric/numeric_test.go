package numeric

import (
	"errors"
	"testing"
)

func TestString(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"160", "160"},
		{"1,694", "1694"},
		{"1,806 원", "1806"},
		{" 24개월 ", "24"},
		{"１,８０６원", "1806"},
		{"₩3,925,321", "3925321"},
	}
	for _, c := range cases {
		in, want := c.in, c.want
		got, err := String(in)
		if err != nil {
			t.Fatalf("String(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("String(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestInt(t *testing.T) {
	if n, err := Int("170"); err != nil || n != 170 {
		t.Fatalf("Int(170)=%d,%v", n, err)
	}
	if n, err := Int("3,925,321"); err != nil || n != 3925321 {
		t.Fatalf("Int(3,925,321)=%d,%v", n, err)
	}
	// A decimal point is a separator for integers, not a fraction marker.
	if n, err := Int("1.000"); err != nil || n != 1000 {
		t.Fatalf("Int(1.000)=%d,%v", n, err)
	}
}

func TestDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"150.25", 150.25},
		{"10.5%", 10.5},
		{"8.5%.", 8.5},
		{"12", 12},
		{"12.", 12},
		{"1,234.5", 1234.5},
		{".5", 0.5},
		{"연 .5%", 0.5},
		{"０．７５", 0.75},
	}
	for _, c := range cases {
		in, want := c.in, c.want
		got, err := Decimal(in)
		if err != nil {
			t.Fatalf("Decimal(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("Decimal(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestDecimal_AmbiguousPointsFail(t *testing.T) {
	cases := map[string]string{
		"1.2.3": "2 decimal points",
		"1..2":  "2 decimal points",
		"1. 5":  "detached decimal point",
		"8.5.":  "",
	}
	for in, reason := range cases {
		got, err := Decimal(in)
		if reason == "" {
			if err != nil || got != 8.5 {
				t.Fatalf("Decimal(%q)=%v,%v, want 8.5", in, got, err)
			}
			continue
		}
		var ce *ConversionError
		if !errors.As(err, &ce) {
			t.Fatalf("Decimal(%q)=%v, expected ConversionError, got %v", in, got, err)
		}
		if ce.Kind != KindDecimal || ce.Reason != reason {
			t.Fatalf("Decimal(%q): kind=%v reason=%q, want %q", in, ce.Kind, ce.Reason, reason)
		}
	}
}

func TestNoDigitsFails(t *testing.T) {
	for _, k := range []Kind{KindString, KindInt, KindDecimal} {
		_, err := Normalize("abc", k)
		var ce *ConversionError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: expected ConversionError, got %v", k, err)
		}
	}
}

func TestInt_OverflowFails(t *testing.T) {
	_, err := Int("99,999,999,999,999,999,999")
	var ce *ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if ce.Unwrap() == nil {
		t.Fatalf("expected wrapped strconv error")
	}
}

func TestNormalize_ReturnsTypedValues(t *testing.T) {
	v, err := Normalize("1,806 원", KindString)
	if s, ok := v.(string); err != nil || !ok || s != "1806" {
		t.Fatalf("string: %v %v", v, err)
	}
	v, err = Normalize("170", KindInt)
	if n, ok := v.(int64); err != nil || !ok || n != 170 {
		t.Fatalf("int: %v %v", v, err)
	}
	v, err = Normalize("150.25", KindDecimal)
	if f, ok := v.(float64); err != nil || !ok || f != 150.25 {
		t.Fatalf("decimal: %v %v", v, err)
	}
	if _, err := Normalize("1", Kind(9)); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
