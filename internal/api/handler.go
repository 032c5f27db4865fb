// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kyn-317/qna/internal/service"
	"github.com/kyn-317/qna/internal/session"
	"github.com/kyn-317/qna/internal/store"
	"github.com/kyn-317/qna/internal/tools"
)

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
type Handler struct {
	store       store.Repository
	sessions    *session.Store
	questions   *service.QuestionWorkflow
	evaluations *service.EvaluationWorkflow
	generator   *service.SessionGenerator
	categories  *service.CategoryWorkflow
	tools       *tools.Registry
	logger      *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(
	s store.Repository,
	sessions *session.Store,
	questions *service.QuestionWorkflow,
	evaluations *service.EvaluationWorkflow,
	generator *service.SessionGenerator,
	categories *service.CategoryWorkflow,
	registry *tools.Registry,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		store:       s,
		sessions:    sessions,
		questions:   questions,
		evaluations: evaluations,
		generator:   generator,
		categories:  categories,
		tools:       registry,
		logger:      logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error body with the given status code.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// validator is implemented by request types that check their own fields.
type validator interface {
	Validate() error
}

// decodeAndValidate decodes the request body into v and runs its validation.
// Returns false if a response was already written (caller should return).
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validator) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := v.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// handleStoreError checks for common store errors and writes the appropriate
// HTTP response. Returns true if an error was handled (caller should return).
func (h *Handler) handleStoreError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, entity+" not found")
		return true
	}
	h.logger.Error("store error", "error", err, "entity", entity)
	respondError(w, http.StatusInternalServerError, "internal error")
	return true
}
