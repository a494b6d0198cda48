package dates

import "iter"

// Range yields every day from start inclusive to end exclusive in ascending
// order. Days are computed on demand; ranging again restarts from start. The
// sequence is empty when start is not before end.
func Range(start, end Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := start; d.Before(end); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Collect materializes Range(start, end).
func Collect(start, end Date) []Date {
	n := end.DaysSince(start)
	if n <= 0 {
		return nil
	}
	out := make([]Date, 0, n)
	for d := range Range(start, end) {
		out = append(out, d)
	}
	return out
}
