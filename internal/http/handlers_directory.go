package http

import (
	"log/slog"
	"net/http"

	"registro/internal/core"
)

type memberPayload struct {
	Name string `json:"name"`
}

type memberResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
}

func toMemberResponse(m core.Member) memberResponse {
	return memberResponse{ID: m.ID, Name: m.Name, Protected: m.Protected}
}

type reasonPayload struct {
	Description string `json:"description"`
	Quick       bool   `json:"quick"`
}

type reasonResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quick       bool   `json:"quick"`
}

func toReasonResponse(r core.Reason) reasonResponse {
	return reasonResponse{ID: r.ID, Description: r.Description, Quick: r.Quick}
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.directory.ListMembers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var payload memberPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	member, err := s.directory.CreateMember(r.Context(), payload.Name)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create member failed", "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberResponse(member))
}

func (s *Server) handleRenameMember(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload memberPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.directory.RenameMember(r.Context(), id, payload.Name); err != nil {
		slog.ErrorContext(r.Context(), "Rename member failed", "id", id, "error", err)
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.directory.DeleteMember(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete member failed", "id", id, "error", err)
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListReasons(w http.ResponseWriter, r *http.Request) {
	reasons, err := s.directory.ListReasons(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]reasonResponse, 0, len(reasons))
	for _, rs := range reasons {
		out = append(out, toReasonResponse(rs))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateReason(w http.ResponseWriter, r *http.Request) {
	var payload reasonPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reason, err := s.directory.CreateReason(r.Context(), payload.Description, payload.Quick)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create reason failed", "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReasonResponse(reason))
}

func (s *Server) handleUpdateReason(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload reasonPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.directory.UpdateReason(r.Context(), id, payload.Description, payload.Quick); err != nil {
		slog.ErrorContext(r.Context(), "Update reason failed", "id", id, "error", err)
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteReason(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.directory.DeleteReason(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete reason failed", "id", id, "error", err)
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
