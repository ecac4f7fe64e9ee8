package http

import (
	"log/slog"
	"net/http"
	"strings"

	"registro/internal/transfer"
)

type importResponse struct {
	Imported int      `json:"imported"`
	Rejected []string `json:"rejected,omitempty"`
}

// handleExport streams the whole data set as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := s.records.Snapshot(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	members, err := s.directory.ListMembers(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	reasons, err := s.directory.ListReasons(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="registro.csv"`)
	if err := transfer.Export(w, records, members, reasons); err != nil {
		slog.ErrorContext(ctx, "CSV export failed", "error", err)
	}
}

// handleImport reads CSV from the request body. ?mode=add appends,
// ?mode=replace swaps the data set (default add).
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	mode := transfer.ModeAdd
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("mode"))) {
	case "", "add":
	case "replace":
		mode = transfer.ModeReplace
	default:
		writeError(w, http.StatusBadRequest, "mode must be add or replace")
		return
	}

	summary, err := s.importer.Import(r.Context(), r.Body, mode)
	if err != nil {
		slog.ErrorContext(r.Context(), "CSV import failed", "error", err)
		writeDomainError(w, err)
		return
	}

	s.invalidateReports()

	resp := importResponse{Imported: summary.Imported}
	for _, le := range summary.Rejected {
		resp.Rejected = append(resp.Rejected, le.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}
