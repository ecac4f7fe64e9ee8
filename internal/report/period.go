// Package report is the aggregation engine: it turns a snapshot of
// records plus a period specification into bucketed series and summary
// totals. Every function is pure; inputs are never mutated and nothing
// is cached inside the package.
package report

import (
	"time"

	"registro/internal/core"
)

// Granularity is the time resolution used for bucketing.
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// SpecKind distinguishes predefined period selections from explicit
// custom ranges.
type SpecKind int

const (
	Predefined SpecKind = iota
	Custom
)

// Spec describes which records a report covers. Predefined specs carry
// a granularity plus year (and month for Daily); zero year/month mean
// "take it from the reference date". Custom specs carry explicit
// inclusive bounds and, optionally, a caller-chosen granularity.
type Spec struct {
	Kind        SpecKind
	Granularity Granularity
	Year        int
	Month       int // 1-12, Daily predefined specs only
	Start       core.Date
	End         core.Date
}

// YearSummary selects a whole year bucketed as a single yearly total.
func YearSummary(year int) Spec {
	return Spec{Kind: Predefined, Granularity: Yearly, Year: year}
}

// YearByMonth selects a whole year bucketed month by month.
func YearByMonth(year int) Spec {
	return Spec{Kind: Predefined, Granularity: Monthly, Year: year}
}

// MonthByDay selects a single month bucketed day by day.
func MonthByDay(year, month int) Spec {
	return Spec{Kind: Predefined, Granularity: Daily, Year: year, Month: month}
}

// CustomRange selects an explicit inclusive range. The bucketing
// granularity is derived from the span; use CustomRangeWith to force
// one.
func CustomRange(start, end core.Date) Spec {
	return Spec{Kind: Custom, Start: start, End: end}
}

// CustomRangeWith selects an explicit inclusive range with a
// caller-chosen bucketing granularity.
func CustomRangeWith(start, end core.Date, g Granularity) Spec {
	return Spec{Kind: Custom, Start: start, End: end, Granularity: g}
}

// Range is an inclusive pair of calendar dates. The zero Range is the
// empty selection: it contains nothing and summarizes to zero.
type Range struct {
	Start core.Date
	End   core.Date
}

// Empty reports whether the range selects nothing.
func (r Range) Empty() bool {
	return r.Start.IsZero() || r.End.IsZero()
}

// Contains reports whether d falls within the range, both boundaries
// included.
func (r Range) Contains(d core.Date) bool {
	if r.Empty() {
		return false
	}
	return !d.Before(r.Start) && !d.After(r.End)
}

// Resolve turns a spec into inclusive boundaries and a bucketing
// granularity. ref supplies the current year/month when a predefined
// spec omits them. Custom specs with reversed bounds are swapped, never
// rejected; a custom spec missing a boundary resolves to the empty
// range.
func Resolve(spec Spec, ref time.Time) (Range, Granularity) {
	switch spec.Kind {
	case Custom:
		start, end := spec.Start, spec.End
		if start.IsZero() || end.IsZero() {
			return Range{}, granularityOr(spec.Granularity, Daily)
		}
		if start.After(end) {
			start, end = end, start
		}
		g := spec.Granularity
		if g == "" {
			g = GranularityForSpan(start, end)
		}
		return Range{Start: start, End: end}, g
	default:
		year := spec.Year
		if year == 0 {
			year = ref.Year()
		}
		switch spec.Granularity {
		case Daily:
			month := spec.Month
			if month == 0 {
				month = int(ref.Month())
			}
			start := core.NewDate(year, month, 1)
			end := core.NewDate(year, month, daysIn(year, month))
			return Range{Start: start, End: end}, Daily
		case Yearly:
			return yearRange(year), Yearly
		default:
			return yearRange(year), Monthly
		}
	}
}

// GranularityForSpan is the fallback heuristic for custom ranges with
// no explicit granularity: spans of at least two whole months bucket
// monthly, shorter spans bucket daily.
func GranularityForSpan(start, end core.Date) Granularity {
	if start.After(end) {
		start, end = end, start
	}
	months := (end.Year()-start.Year())*12 + end.Month() - start.Month()
	if end.Day() < start.Day() {
		months--
	}
	if months >= 2 {
		return Monthly
	}
	return Daily
}

func yearRange(year int) Range {
	return Range{Start: core.NewDate(year, 1, 1), End: core.NewDate(year, 12, 31)}
}

func granularityOr(g, fallback Granularity) Granularity {
	if g == "" {
		return fallback
	}
	return g
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC).Day()
}
