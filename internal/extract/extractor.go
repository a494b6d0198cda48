package extract

import "github.com/hyperifyio/p2pscrape/internal/listing"

// Extractor turns the markup of one product page into a Listing.
// Implementations must be deterministic and free of side effects so that a
// single value can serve concurrent callers.
type Extractor interface {
	Extract(document string) (listing.Listing, error)
}

// Layout names the structural anchors of a product page.
type Layout struct {
	// TitleClass is the class of the h3 holding the product name.
	TitleClass string
	// GradeClass is the class of the span holding the risk grade.
	GradeClass string
	// SummaryClass is the class of the ul whose li items pair a label span
	// with a value span.
	SummaryClass string
	LabelClass   string
	ValueClass   string

	DurationLabel string
	YieldLabel    string
	AmountLabel   string

	// ScheduleID is the id of the repayment table.
	ScheduleID string
}

// DefaultLayout matches the 8percent deal detail page.
var DefaultLayout = Layout{
	TitleClass:    "deal-title",
	GradeClass:    "deal-grade",
	SummaryClass:  "deal-summary",
	LabelClass:    "label",
	ValueClass:    "value",
	DurationLabel: "투자기간",
	YieldLabel:    "수익률",
	AmountLabel:   "모집금액",
	ScheduleID:    "repayment-schedule",
}

// PageExtractor extracts listings laid out as described by Layout. The zero
// value uses DefaultLayout.
type PageExtractor struct {
	Layout Layout
}

func (p PageExtractor) layout() Layout {
	if p.Layout == (Layout{}) {
		return DefaultLayout
	}
	return p.Layout
}

// Extract implements Extractor.
func (p PageExtractor) Extract(document string) (listing.Listing, error) {
	return parse(document, p.layout())
}
