package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"canvas-ai/internal/domain"
)

// promptRequestSchema mirrors domain.PromptRequest. Both fields are required;
// an empty canvas is sent as [].
const promptRequestSchema = `{
	"type": "object",
	"required": ["prompt", "current_objects"],
	"properties": {
		"prompt": {"type": "string"},
		"current_objects": {"type": "array", "items": {"type": "object"}}
	}
}`

// Error details returned to clients. Internal causes are only logged.
const (
	detailInvalidJSON = "AI returned invalid JSON."
	detailUnexpected  = "An unexpected error occurred."
	detailEmptyPrompt = "Prompt must not be empty."
)

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	s.metrics.PromptsTotal.Add(1)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.metrics.PromptErrorsTotal.Add(1)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		writeDetail(w, http.StatusBadRequest, "Could not read request body.")
		return
	}

	req, err := s.decodePromptRequest(body)
	if err != nil {
		s.metrics.PromptErrorsTotal.Add(1)
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.logger.Info("prompt received", "prompt_chars", len(req.Prompt), "current_objects", len(req.CurrentObjects))

	resp, err := s.deps.Prompts.HandlePrompt(r.Context(), req)
	if err != nil {
		s.metrics.PromptErrorsTotal.Add(1)
		status, detail := promptErrorStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("prompt failed", "error", err, "code", domain.ErrorCodeOf(err))
		}
		writeDetail(w, status, detail)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodePromptRequest validates body against promptRequestSchema before
// decoding it.
func (s *Server) decodePromptRequest(body []byte) (domain.PromptRequest, error) {
	var req domain.PromptRequest
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return req, errors.New("Request body is not valid JSON.")
	}
	if result := s.requestSchema.Validate(doc); !result.IsValid() {
		return req, fmt.Errorf("Invalid request: %s", result.Error())
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("Invalid request: %v", err)
	}
	return req, nil
}

// promptErrorStatus maps a prompt failure to a status and client-facing detail.
func promptErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrPromptEmpty):
		return http.StatusUnprocessableEntity, detailEmptyPrompt
	case errors.Is(err, domain.ErrInvalidInput):
		var de *domain.DomainError
		if errors.As(err, &de) && de.Detail != "" {
			return http.StatusUnprocessableEntity, de.Detail
		}
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrInvalidModelOutput):
		return http.StatusInternalServerError, detailInvalidJSON
	default:
		return http.StatusInternalServerError, detailUnexpected
	}
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeDetail(w, http.StatusBadRequest, "limit must be a non-negative integer.")
			return
		}
		limit = n
	}
	entries, err := s.deps.History.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history list failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, detailUnexpected)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "id must be an integer.")
		return
	}
	entry, err := s.deps.History.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "History entry not found.")
		return
	}
	if err != nil {
		s.logger.Error("history get failed", "error", err, "id", id)
		writeDetail(w, http.StatusInternalServerError, detailUnexpected)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, domain.ErrorResponse{Detail: detail})
}
