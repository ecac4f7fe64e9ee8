package report

import (
	"reflect"
	"testing"

	"registro/internal/core"
)

func TestSummarizeScenario(t *testing.T) {
	records := []core.Record{
		rec("a", "01/03/2024", core.Income, 100),
		rec("b", "15/03/2024", core.Expense, -40),
		rec("c", "01/04/2024", core.Income, 50),
	}
	r, _ := Resolve(YearByMonth(2024), ref)

	s := Summarize(records, r)
	if s.Income.Cents != 150 || s.Expense.Cents != 40 || s.Investment.Cents != 0 {
		t.Errorf("totals = (%d, %d, %d), want (150, 40, 0)", s.Income.Cents, s.Expense.Cents, s.Investment.Cents)
	}
	if s.Balance.Cents != 110 {
		t.Errorf("balance = %d, want 110", s.Balance.Cents)
	}
	if s.Records != 3 {
		t.Errorf("records = %d, want 3", s.Records)
	}
}

func TestSummarizeBalanceIdentity(t *testing.T) {
	records := []core.Record{
		rec("a", "02/01/2024", core.Income, 123456),
		rec("b", "02/01/2024", core.Expense, -789),
		rec("c", "10/05/2024", core.Investment, -40000),
		rec("d", "10/05/2024", core.Expense, -1),
		rec("e", "28/12/2024", core.Income, 7),
	}
	r, _ := Resolve(YearByMonth(2024), ref)

	s := Summarize(records, r)
	if s.Balance.Cents != s.Income.Cents-s.Expense.Cents-s.Investment.Cents {
		t.Errorf("balance %d != income %d - expense %d - investment %d",
			s.Balance.Cents, s.Income.Cents, s.Expense.Cents, s.Investment.Cents)
	}
}

func TestSummarizeSignViolationKeepsStoredSign(t *testing.T) {
	// A positive expense is bad data. The magnitude feeds the expense
	// total, but the balance must trust the stored sign.
	records := []core.Record{
		rec("a", "01/03/2024", core.Income, 100),
		rec("b", "15/03/2024", core.Expense, 40),
	}
	r, _ := Resolve(YearByMonth(2024), ref)

	s := Summarize(records, r)
	if s.Expense.Cents != 40 {
		t.Errorf("expense magnitude = %d, want 40", s.Expense.Cents)
	}
	if s.Balance.Cents != 140 {
		t.Errorf("balance = %d, want 140 (stored sign is ground truth)", s.Balance.Cents)
	}
}

func TestSummarizeEmptySelection(t *testing.T) {
	records := []core.Record{rec("a", "01/03/2024", core.Income, 100)}

	s := Summarize(records, Range{})
	if s != (Summary{}) {
		t.Errorf("empty selection summary = %+v, want zero value", s)
	}
}

func TestSummarizeDailyAverages(t *testing.T) {
	records := []core.Record{
		rec("a", "01/03/2024", core.Income, 300),
		rec("b", "01/03/2024", core.Expense, -100),
		rec("c", "10/03/2024", core.Income, 100),
		rec("d", "20/03/2024", core.Expense, -80),
	}
	r, _ := Resolve(MonthByDay(2024, 3), ref)

	s := Summarize(records, r)
	if s.ActiveDays != 3 {
		t.Fatalf("active days = %d, want 3", s.ActiveDays)
	}
	// Divided by active days, not by the 31 days of March.
	if s.DailyAvgIncome.Cents != 133 {
		t.Errorf("daily avg income = %d, want 133", s.DailyAvgIncome.Cents)
	}
	if s.DailyAvgExpense.Cents != 60 {
		t.Errorf("daily avg expense = %d, want 60", s.DailyAvgExpense.Cents)
	}
}

func TestSummarizeZeroActiveDays(t *testing.T) {
	records := []core.Record{rec("a", "01/03/2023", core.Income, 100)}
	r, _ := Resolve(MonthByDay(2024, 3), ref)

	s := Summarize(records, r)
	if s.ActiveDays != 0 || s.DailyAvgIncome.Cents != 0 || s.DailyAvgExpense.Cents != 0 {
		t.Errorf("zero active days must yield zero averages, got %+v", s)
	}
}

func TestSummarizeActiveMembers(t *testing.T) {
	records := []core.Record{
		{ID: "a", Date: "01/03/2024", MemberID: "m1", ReasonID: "z1", Movement: core.Income, Amount: core.Money{Cents: 10}},
		{ID: "b", Date: "02/03/2024", MemberID: "m2", ReasonID: "z1", Movement: core.Income, Amount: core.Money{Cents: 10}},
		{ID: "c", Date: "03/03/2024", MemberID: "m1", ReasonID: "z2", Movement: core.Income, Amount: core.Money{Cents: 10}},
	}
	r, _ := Resolve(YearByMonth(2024), ref)

	if s := Summarize(records, r); s.ActiveMembers != 2 {
		t.Errorf("active members = %d, want 2", s.ActiveMembers)
	}
}

func TestSummarizeCountsInvalidRecords(t *testing.T) {
	records := []core.Record{
		rec("a", "01/03/2024", core.Income, 100),
		rec("b", "31/02/2024", core.Income, 100),
		rec("c", "99/99/9999", core.Income, 100),
	}
	r, _ := Resolve(YearByMonth(2024), ref)

	s := Summarize(records, r)
	if s.Invalid != 2 {
		t.Errorf("invalid = %d, want 2", s.Invalid)
	}
	if s.Income.Cents != 100 {
		t.Errorf("income = %d, want 100 (invalid dates excluded)", s.Income.Cents)
	}
}

func TestTopReasons(t *testing.T) {
	reasonRec := func(reason string, kind core.MovementKind, cents int64) core.Record {
		return core.Record{Date: "01/03/2024", MemberID: "m1", ReasonID: reason, Movement: kind, Amount: core.Money{Cents: cents}}
	}
	var records []core.Record
	// Counts per reason: z1=10, z2=10, z3=7, z4=3, z5=3, z6=1.
	for _, spec := range []struct {
		reason string
		count  int
	}{{"z2", 10}, {"z1", 10}, {"z3", 7}, {"z5", 3}, {"z4", 3}, {"z6", 1}} {
		for i := 0; i < spec.count; i++ {
			records = append(records, reasonRec(spec.reason, core.Expense, -100))
		}
	}

	for run := 0; run < 3; run++ {
		top := TopReasons(records, 5)
		if len(top) != 5 {
			t.Fatalf("run %d: got %d entries, want 5", run, len(top))
		}
		var ids []string
		for _, st := range top {
			ids = append(ids, st.ReasonID)
		}
		// Ties broken by reason id ascending, stable across calls.
		want := []string{"z1", "z2", "z3", "z4", "z5"}
		if !reflect.DeepEqual(ids, want) {
			t.Errorf("run %d: order = %v, want %v", run, ids, want)
		}
	}

	top := TopReasons(records, 5)
	if top[0].Count != 10 || top[0].Expense.Cents != 1000 {
		t.Errorf("top entry = %+v, want count 10 expense 1000", top[0])
	}
}

func TestTopReasonsDefaultN(t *testing.T) {
	var records []core.Record
	for i, reason := range []string{"z1", "z2", "z3", "z4", "z5", "z6", "z7"} {
		for j := 0; j <= i; j++ {
			records = append(records, core.Record{Date: "01/03/2024", ReasonID: reason, Movement: core.Income, Amount: core.Money{Cents: 1}})
		}
	}
	if got := len(TopReasons(records, 0)); got != DefaultTopReasons {
		t.Errorf("default ranking size = %d, want %d", got, DefaultTopReasons)
	}
}

func TestChartExpandSingleYear(t *testing.T) {
	records := []core.Record{
		rec("a", "01/03/2024", core.Income, 100),
		rec("b", "01/04/2024", core.Income, 50),
	}

	plain := Chart(records, YearSummary(2024), ref, ChartOptions{})
	if plain.Granularity != Yearly || len(plain.Buckets) != 1 || plain.Buckets[0].Key != "2024" {
		t.Errorf("plain yearly series = %+v", plain)
	}

	expanded := Chart(records, YearSummary(2024), ref, ChartOptions{ExpandSingleYear: true})
	if expanded.Granularity != Monthly {
		t.Fatalf("expanded granularity = %s, want monthly", expanded.Granularity)
	}
	keys := []string{expanded.Buckets[0].Key, expanded.Buckets[1].Key}
	if !reflect.DeepEqual(keys, []string{"2024-03", "2024-04"}) {
		t.Errorf("expanded keys = %v", keys)
	}
}

func TestChartExpandLeavesMultiYearAlone(t *testing.T) {
	records := []core.Record{
		rec("a", "01/03/2023", core.Income, 100),
		rec("b", "01/04/2024", core.Income, 50),
	}
	spec := CustomRangeWith(core.NewDate(2023, 1, 1), core.NewDate(2024, 12, 31), Yearly)

	s := Chart(records, spec, ref, ChartOptions{ExpandSingleYear: true})
	if s.Granularity != Yearly || len(s.Buckets) != 2 {
		t.Errorf("multi-year series must stay yearly, got %+v", s)
	}
}
