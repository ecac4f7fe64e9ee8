package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"registro/internal/core"
	"registro/internal/report"
)

type summaryResponse struct {
	IncomeCents     int64  `json:"income_cents"`
	Income          string `json:"income"`
	ExpenseCents    int64  `json:"expense_cents"`
	Expense         string `json:"expense"`
	InvestmentCents int64  `json:"investment_cents"`
	Investment      string `json:"investment"`
	BalanceCents    int64  `json:"balance_cents"`
	Balance         string `json:"balance"`

	DailyAvgIncomeCents  int64  `json:"daily_avg_income_cents"`
	DailyAvgIncome       string `json:"daily_avg_income"`
	DailyAvgExpenseCents int64  `json:"daily_avg_expense_cents"`
	DailyAvgExpense      string `json:"daily_avg_expense"`

	Records       int `json:"records"`
	Invalid       int `json:"invalid"`
	ActiveDays    int `json:"active_days"`
	ActiveMembers int `json:"active_members"`
}

func toSummaryResponse(s report.Summary) summaryResponse {
	return summaryResponse{
		IncomeCents:     s.Income.Cents,
		Income:          core.FormatCents(s.Income.Cents),
		ExpenseCents:    s.Expense.Cents,
		Expense:         core.FormatCents(s.Expense.Cents),
		InvestmentCents: s.Investment.Cents,
		Investment:      core.FormatCents(s.Investment.Cents),
		BalanceCents:    s.Balance.Cents,
		Balance:         core.FormatCents(s.Balance.Cents),

		DailyAvgIncomeCents:  s.DailyAvgIncome.Cents,
		DailyAvgIncome:       core.FormatCents(s.DailyAvgIncome.Cents),
		DailyAvgExpenseCents: s.DailyAvgExpense.Cents,
		DailyAvgExpense:      core.FormatCents(s.DailyAvgExpense.Cents),

		Records:       s.Records,
		Invalid:       s.Invalid,
		ActiveDays:    s.ActiveDays,
		ActiveMembers: s.ActiveMembers,
	}
}

type bucketResponse struct {
	Key             string `json:"key"`
	IncomeCents     int64  `json:"income_cents"`
	ExpenseCents    int64  `json:"expense_cents"`
	InvestmentCents int64  `json:"investment_cents"`
}

type trendResponse struct {
	Granularity string           `json:"granularity"`
	Buckets     []bucketResponse `json:"buckets"`
}

func toTrendResponse(s report.Series) trendResponse {
	out := trendResponse{
		Granularity: string(s.Granularity),
		Buckets:     make([]bucketResponse, 0, len(s.Buckets)),
	}
	for _, b := range s.Buckets {
		out.Buckets = append(out.Buckets, bucketResponse{
			Key:             b.Key,
			IncomeCents:     b.Income.Cents,
			ExpenseCents:    b.Expense.Cents,
			InvestmentCents: b.Investment.Cents,
		})
	}
	return out
}

type reasonStatResponse struct {
	ReasonID        string `json:"reason_id"`
	Count           int    `json:"count"`
	IncomeCents     int64  `json:"income_cents"`
	ExpenseCents    int64  `json:"expense_cents"`
	InvestmentCents int64  `json:"investment_cents"`
}

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	key := cacheKey(r)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	spec, err := parseReportSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.records.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot failed", "error", err)
		writeDomainError(w, err)
		return
	}

	rng, _ := report.Resolve(spec, time.Now())
	resp := toSummaryResponse(report.Summarize(records, rng))

	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReportTrend(w http.ResponseWriter, r *http.Request) {
	key := cacheKey(r)
	if cached, ok := s.trendCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toTrendResponse(cached))
		return
	}

	spec, err := parseReportSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.records.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot failed", "error", err)
		writeDomainError(w, err)
		return
	}

	opts := report.ChartOptions{
		ExpandSingleYear: parseBool(r.URL.Query().Get("expand")),
	}
	series := report.Chart(records, spec, time.Now(), opts)

	s.trendCache.Set(key, series)
	writeJSON(w, http.StatusOK, toTrendResponse(series))
}

func (s *Server) handleTopReasons(w http.ResponseWriter, r *http.Request) {
	spec, err := parseReportSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.records.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot failed", "error", err)
		writeDomainError(w, err)
		return
	}

	rng, _ := report.Resolve(spec, time.Now())
	kept, _ := report.Filter(records, rng)
	stats := report.TopReasons(kept, parseLimit(r, report.DefaultTopReasons))

	out := make([]reasonStatResponse, 0, len(stats))
	for _, st := range stats {
		out = append(out, reasonStatResponse{
			ReasonID:        st.ReasonID,
			Count:           st.Count,
			IncomeCents:     st.Income.Cents,
			ExpenseCents:    st.Expense.Cents,
			InvestmentCents: st.Investment.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type balanceResponse struct {
	BalanceCents int64  `json:"balance_cents"`
	Balance      string `json:"balance"`
	Records      int    `json:"records"`
}

// handleOverallBalance sums raw signed amounts over the whole data
// set, dates included or not. This is bookkeeping, not reporting.
func (s *Server) handleOverallBalance(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot failed", "error", err)
		writeDomainError(w, err)
		return
	}

	var total int64
	for _, rec := range records {
		total += rec.Amount.Cents
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		BalanceCents: total,
		Balance:      core.FormatCents(total),
		Records:      len(records),
	})
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
