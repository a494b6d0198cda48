package dates

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	d, err := Parse(" 2016-04-11 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != (Date{Year: 2016, Month: time.April, Day: 11}) {
		t.Fatalf("got %+v", d)
	}
	if d.String() != "2016-04-11" {
		t.Fatalf("String()=%q", d.String())
	}
	for _, bad := range []string{"", "2016-13-01", "2016-02-30", "11/04/2016"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestAddDays_CrossesMonthsAndLeapDays(t *testing.T) {
	if got := MustParse("2016-01-31").AddDays(1); got != MustParse("2016-02-01") {
		t.Fatalf("month end: got %s", got)
	}
	if got := MustParse("2016-02-28").AddDays(1); got != MustParse("2016-02-29") {
		t.Fatalf("leap day: got %s", got)
	}
	if got := MustParse("2016-03-01").AddDays(-1); got != MustParse("2016-02-29") {
		t.Fatalf("backwards: got %s", got)
	}
}

func TestDaysSinceAndOrdering(t *testing.T) {
	a, b := MustParse("2016-01-01"), MustParse("2017-01-01")
	if n := b.DaysSince(a); n != 366 {
		t.Fatalf("DaysSince=%d, want 366", n)
	}
	if n := a.DaysSince(b); n != -366 {
		t.Fatalf("DaysSince reverse=%d", n)
	}
	if !a.Before(b) || b.Before(a) || !b.After(a) || a.Before(a) || a.After(a) {
		t.Fatalf("ordering broken")
	}
	// Four centuries hold 146097 days, past what a time.Duration can span.
	if n := MustParse("2100-01-01").DaysSince(MustParse("1700-01-01")); n != 146097 {
		t.Fatalf("long span=%d, want 146097", n)
	}
}

func TestJSONRoundTripsAsText(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{MustParse("2018-03-12")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"d":"2018-03-12"}` {
		t.Fatalf("got %s", b)
	}
	var out struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.D != MustParse("2018-03-12") {
		t.Fatalf("got %s", out.D)
	}
}
