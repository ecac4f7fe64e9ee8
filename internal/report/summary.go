package report

import (
	"sort"
	"time"

	"registro/internal/core"
)

// Summary holds the overall totals and secondary metrics for one
// period selection. Income, Expense and Investment are magnitudes;
// Balance is the sum of raw signed amounts. When every record honors
// the sign convention, Balance equals Income - Expense - Investment;
// a record that violates the convention keeps its stored sign in the
// balance and its magnitude in the per-kind totals, so the violation
// stays visible instead of being rewritten.
type Summary struct {
	Income     core.Money
	Expense    core.Money
	Investment core.Money
	Balance    core.Money

	DailyAvgIncome  core.Money
	DailyAvgExpense core.Money

	Records       int
	Invalid       int
	ActiveDays    int
	ActiveMembers int
}

// ReasonStat is one entry of a top-reasons ranking.
type ReasonStat struct {
	ReasonID   string
	Count      int
	Income     core.Money
	Expense    core.Money
	Investment core.Money
}

// Series is a chart-ready bucket sequence. The granularity tag lets a
// presentation layer format the raw keys however it likes.
type Series struct {
	Granularity Granularity
	Buckets     []Bucket
}

// ChartOptions are presentation policies the caller opts into.
type ChartOptions struct {
	// ExpandSingleYear switches a yearly series to monthly buckets when
	// all the selected data falls in a single calendar year.
	ExpandSingleYear bool
}

// Summarize filters records to r and reduces them to a Summary. An
// empty selection yields the zero Summary; daily averages are zero
// when no day has a record.
func Summarize(records []core.Record, r Range) Summary {
	kept, invalid := Filter(records, r)

	var s Summary
	s.Records = len(kept)
	s.Invalid = invalid

	days := make(map[string]struct{})
	members := make(map[string]struct{})
	for _, rec := range kept {
		s.Balance.Cents += rec.Amount.Cents
		m := abs(rec.Amount.Cents)
		switch rec.Movement {
		case core.Income:
			s.Income.Cents += m
		case core.Expense:
			s.Expense.Cents += m
		case core.Investment:
			s.Investment.Cents += m
		}
		days[rec.Date] = struct{}{}
		if rec.MemberID != "" {
			members[rec.MemberID] = struct{}{}
		}
	}
	s.ActiveDays = len(days)
	s.ActiveMembers = len(members)
	if s.ActiveDays > 0 {
		n := int64(s.ActiveDays)
		s.DailyAvgIncome.Cents = s.Income.Cents / n
		s.DailyAvgExpense.Cents = s.Expense.Cents / n
	}
	return s
}

// DefaultTopReasons is the ranking size used when the caller asks for
// zero or fewer entries.
const DefaultTopReasons = 5

// TopReasons ranks the given (already filtered) records by reason
// occurrence count, descending, ties broken by reason id ascending,
// and returns at most n entries. Per-reason totals use the same
// magnitude conversion as the buckets.
func TopReasons(records []core.Record, n int) []ReasonStat {
	if n <= 0 {
		n = DefaultTopReasons
	}
	byReason := make(map[string]*ReasonStat)
	for _, rec := range records {
		st, ok := byReason[rec.ReasonID]
		if !ok {
			st = &ReasonStat{ReasonID: rec.ReasonID}
			byReason[rec.ReasonID] = st
		}
		st.Count++
		m := abs(rec.Amount.Cents)
		switch rec.Movement {
		case core.Income:
			st.Income.Cents += m
		case core.Expense:
			st.Expense.Cents += m
		case core.Investment:
			st.Investment.Cents += m
		}
	}

	ranked := make([]ReasonStat, 0, len(byReason))
	for _, st := range byReason {
		ranked = append(ranked, *st)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].ReasonID < ranked[j].ReasonID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Chart resolves a spec and produces its bucket series. With
// ExpandSingleYear set, a yearly series whose data all lands in one
// calendar year is re-bucketed monthly so a one-bar chart becomes a
// trend.
func Chart(records []core.Record, spec Spec, ref time.Time, opts ChartOptions) Series {
	r, g := Resolve(spec, ref)
	buckets := FilterAndBucket(records, r, g)
	if opts.ExpandSingleYear && g == Yearly && len(buckets) == 1 {
		g = Monthly
		buckets = FilterAndBucket(records, r, g)
	}
	return Series{Granularity: g, Buckets: buckets}
}
