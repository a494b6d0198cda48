// Package extract locates the fields of a loan product page in its markup and
// assembles them into a listing.Listing.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/p2pscrape/internal/dates"
	"github.com/hyperifyio/p2pscrape/internal/listing"
	"github.com/hyperifyio/p2pscrape/internal/numeric"
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// FromHTML extracts a listing from page bytes using DefaultLayout.
func FromHTML(input []byte) (listing.Listing, error) {
	return parse(string(input), DefaultLayout)
}

// parse is all-or-nothing: any missing field or bad cell fails the whole page.
func parse(document string, lay Layout) (listing.Listing, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return listing.Listing{}, &ParseError{Field: "document", Reason: "invalid markup", Err: err}
	}

	var l listing.Listing
	if l.Name, err = requiredText(root, tagClass("h3", lay.TitleClass), "name"); err != nil {
		return listing.Listing{}, err
	}
	if l.Grade, err = requiredText(root, tagClass("span", lay.GradeClass), "grade"); err != nil {
		return listing.Listing{}, err
	}

	summary, err := summaryValues(root, lay)
	if err != nil {
		return listing.Listing{}, err
	}

	raw, err := lookup(summary, lay.DurationLabel, "duration")
	if err != nil {
		return listing.Listing{}, err
	}
	duration, err := numeric.Int(raw)
	if err != nil {
		return listing.Listing{}, convErr("duration", err)
	}
	l.Duration = int(duration)

	if raw, err = lookup(summary, lay.YieldLabel, "annual_percentage_yield"); err != nil {
		return listing.Listing{}, err
	}
	pct, err := numeric.Decimal(raw)
	if err != nil {
		return listing.Listing{}, convErr("annual_percentage_yield", err)
	}
	l.AnnualPercentageYield = pct / 100

	if raw, err = lookup(summary, lay.AmountLabel, "amount"); err != nil {
		return listing.Listing{}, err
	}
	if l.Amount, err = numeric.Int(raw); err != nil {
		return listing.Listing{}, convErr("amount", err)
	}

	if l.Records, err = schedule(root, lay); err != nil {
		return listing.Listing{}, err
	}
	return l, nil
}

func requiredText(root *html.Node, m matcher, field string) (string, error) {
	n := findFirst(root, m)
	if n == nil {
		return "", missing(field)
	}
	s := textOf(n)
	if s == "" {
		return "", &ParseError{Field: field, Reason: "empty"}
	}
	return s, nil
}

// summaryValues maps each summary label to its value text.
func summaryValues(root *html.Node, lay Layout) (map[string]string, error) {
	ul := findFirst(root, tagClass("ul", lay.SummaryClass))
	if ul == nil {
		return nil, missing("summary")
	}
	out := make(map[string]string)
	for _, li := range children(ul, tag("li")) {
		label := findFirst(li, tagClass("", lay.LabelClass))
		value := findFirst(li, tagClass("", lay.ValueClass))
		if label == nil || value == nil {
			continue
		}
		key := textOf(label)
		if _, dup := out[key]; dup {
			continue
		}
		out[key] = textOf(value)
	}
	return out, nil
}

func lookup(summary map[string]string, label, field string) (string, error) {
	v, ok := summary[label]
	if !ok {
		return "", missing(field)
	}
	return v, nil
}

// schedule reads every body row of the repayment table: one date cell then
// listing.FigureCount integer cells.
func schedule(root *html.Node, lay Layout) ([]listing.PeriodRecord, error) {
	table := findFirst(root, tagID("table", lay.ScheduleID))
	if table == nil {
		return nil, missing("records")
	}
	var rows []*html.Node
	for _, body := range children(table, tag("tbody")) {
		rows = append(rows, children(body, tag("tr"))...)
	}
	if len(rows) == 0 {
		return nil, &ParseError{Field: "records", Reason: "no rows"}
	}

	records := make([]listing.PeriodRecord, 0, len(rows))
	for i, tr := range rows {
		rec, err := record(tr, i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func record(tr *html.Node, index int) (listing.PeriodRecord, error) {
	var rec listing.PeriodRecord
	cells := children(tr, tag("td"))
	if len(cells) != 1+listing.FigureCount {
		return rec, &ParseError{
			Field:  rowField(index),
			Reason: fmt.Sprintf("expected %d cells, found %d", 1+listing.FigureCount, len(cells)),
		}
	}

	dateText := datePattern.FindString(textOf(cells[0]))
	if dateText == "" {
		return rec, &ParseError{Field: rowField(index), Reason: "no date in " + textOf(cells[0])}
	}
	d, err := dates.Parse(dateText)
	if err != nil {
		return rec, &ParseError{Field: rowField(index), Reason: "bad date", Err: err}
	}
	rec.Date = d

	for j, cell := range cells[1:] {
		v, err := numeric.Int(textOf(cell))
		if err != nil {
			return rec, convErr(rowField(index), err)
		}
		rec.Figures[j] = v
	}
	return rec, nil
}

func rowField(index int) string { return fmt.Sprintf("records[%d]", index) }
