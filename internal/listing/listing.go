// Package listing holds the structured form of one loan product page.
package listing

import "github.com/hyperifyio/p2pscrape/internal/dates"

// FigureCount is the number of integer metrics on every repayment row.
const FigureCount = 4

// PeriodRecord is one repayment-schedule row. Figures keeps the row's integer
// cells in the order they appear on the page.
type PeriodRecord struct {
	Date    dates.Date         `json:"date"`
	Figures [FigureCount]int64 `json:"figures"`
}

// Listing is a loan product and its repayment schedule. Records are in page
// order, which is chronological.
type Listing struct {
	Name                  string         `json:"name"`
	Grade                 string         `json:"grade"`
	Duration              int            `json:"duration"`
	AnnualPercentageYield float64        `json:"annual_percentage_yield"`
	Amount                int64          `json:"amount"`
	Records               []PeriodRecord `json:"records"`
}

// FirstDate and LastDate bound the schedule. Both are zero for an empty
// schedule.
func (l Listing) FirstDate() dates.Date {
	if len(l.Records) == 0 {
		return dates.Date{}
	}
	return l.Records[0].Date
}

func (l Listing) LastDate() dates.Date {
	if len(l.Records) == 0 {
		return dates.Date{}
	}
	return l.Records[len(l.Records)-1].Date
}

// Totals sums each figure column across the schedule.
func (l Listing) Totals() [FigureCount]int64 {
	var sum [FigureCount]int64
	for _, r := range l.Records {
		for i, v := range r.Figures {
			sum[i] += v
		}
	}
	return sum
}
