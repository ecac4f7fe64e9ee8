package http

import (
	"log/slog"
	"net/http"
	"strings"

	"registro/internal/core"
)

type recordPayload struct {
	Date        string `json:"date"`
	MemberID    string `json:"member_id"`
	ReasonID    string `json:"reason_id"`
	Movement    string `json:"movement"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type recordResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	MemberID    string `json:"member_id"`
	ReasonID    string `json:"reason_id"`
	Movement    string `json:"movement"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

func toRecordResponse(r core.Record) recordResponse {
	return recordResponse{
		ID:          r.ID,
		Date:        r.Date,
		MemberID:    r.MemberID,
		ReasonID:    r.ReasonID,
		Movement:    string(r.Movement),
		AmountCents: r.Amount.Cents,
		Amount:      core.FormatCents(r.Amount.Cents),
		Description: r.Description,
	}
}

func (p recordPayload) toRecord(id string) (core.Record, error) {
	cents, err := core.ParseDecimalToCents(p.Amount)
	if err != nil {
		return core.Record{}, core.ErrInvalidAmount
	}
	return core.Record{
		ID:          id,
		Date:        strings.TrimSpace(p.Date),
		MemberID:    strings.TrimSpace(p.MemberID),
		ReasonID:    strings.TrimSpace(p.ReasonID),
		Movement:    core.MovementKind(strings.ToUpper(strings.TrimSpace(p.Movement))),
		Amount:      core.Money{Cents: cents},
		Description: strings.TrimSpace(p.Description),
	}, nil
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := payload.toRecord("")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := s.records.Create(r.Context(), rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create record failed", "error", err)
		writeDomainError(w, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toRecordResponse(created))
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload recordPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := payload.toRecord(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.records.Update(r.Context(), rec); err != nil {
		slog.ErrorContext(r.Context(), "Update record failed", "id", id, "error", err)
		writeDomainError(w, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.records.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete record failed", "id", id, "error", err)
		writeDomainError(w, err)
		return
	}

	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20)

	records, err := s.records.Recent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "List records failed", "error", err)
		writeDomainError(w, err)
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}
