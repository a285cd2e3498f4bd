// Package availability expands an event's date window into bookable
// calendar days.
package availability

import (
	"iter"
	"slices"
	"time"
)

// Span is anything with an optional inclusive date window
type Span interface {
	DateRange() (start, end *time.Time)
}

// Day truncates t to its UTC calendar day, whatever zone t carries
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Resolve yields every calendar day from start to end inclusive. A missing
// end means a single day; a missing start (or an end before the start)
// yields nothing. The sequence can be ranged over any number of times.
func Resolve(s Span) iter.Seq[time.Time] {
	start, end := s.DateRange()
	return func(yield func(time.Time) bool) {
		if start == nil {
			return
		}
		first := Day(*start)
		last := first
		if end != nil {
			last = Day(*end)
		}
		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Dates collects Resolve into a slice
func Dates(s Span) []time.Time {
	return slices.Collect(Resolve(s))
}

// HasDates reports whether s has at least one bookable day
func HasDates(s Span) bool {
	for range Resolve(s) {
		return true
	}
	return false
}

// Contains reports whether day falls on one of the resolved calendar days
func Contains(s Span, day time.Time) bool {
	start, end := s.DateRange()
	if start == nil {
		return false
	}
	first := Day(*start)
	last := first
	if end != nil {
		last = Day(*end)
	}
	d := Day(day)
	return !d.Before(first) && !d.After(last)
}
