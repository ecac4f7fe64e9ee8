package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"registro/internal/core"
	"registro/internal/report"
	"registro/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps a service or storage error to a status code.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, core.ErrProtectedMember):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidMovement),
		errors.Is(err, core.ErrSignMismatch),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyMember),
		errors.Is(err, core.ErrEmptyReason):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseReportSpec builds a period spec from query parameters.
//
//	?year=2024                 whole year, single yearly bucket
//	?year=2024&by=month        whole year, monthly buckets
//	?year=2024&month=3         one month, daily buckets
//	?start=dd/mm/yyyy&end=...  custom range, granularity from span
//	                           unless ?granularity= overrides it
func parseReportSpec(r *http.Request) (report.Spec, error) {
	q := r.URL.Query()

	startStr := strings.TrimSpace(q.Get("start"))
	endStr := strings.TrimSpace(q.Get("end"))
	if startStr != "" || endStr != "" {
		var start, end core.Date
		var err error
		if startStr != "" {
			if start, err = core.ParseDate(startStr); err != nil {
				return report.Spec{}, fmt.Errorf("start: %w", err)
			}
		}
		if endStr != "" {
			if end, err = core.ParseDate(endStr); err != nil {
				return report.Spec{}, fmt.Errorf("end: %w", err)
			}
		}
		if g := parseGranularity(q.Get("granularity")); g != "" {
			return report.CustomRangeWith(start, end, g), nil
		}
		return report.CustomRange(start, end), nil
	}

	year := 0
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return report.Spec{}, fmt.Errorf("year: %w", err)
		}
		year = y
	}

	if v := strings.TrimSpace(q.Get("month")); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return report.Spec{}, fmt.Errorf("month: invalid value %q", v)
		}
		return report.MonthByDay(year, month), nil
	}

	if strings.EqualFold(strings.TrimSpace(q.Get("by")), "month") {
		return report.YearByMonth(year), nil
	}
	return report.YearSummary(year), nil
}

func parseGranularity(s string) report.Granularity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return report.Daily
	case "monthly":
		return report.Monthly
	case "yearly":
		return report.Yearly
	}
	return ""
}

// parseLimit reads a positive ?limit=, falling back to def.
func parseLimit(r *http.Request, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// cacheKey is the canonical form of the report query parameters.
func cacheKey(r *http.Request) string {
	q := r.URL.Query()
	parts := make([]string, 0, 6)
	for _, k := range []string{"year", "month", "by", "start", "end", "granularity", "expand"} {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "&")
}
