// internal/api/question_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kyn-317/qna/internal/genai"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateQuestionRequest struct {
	Category string `json:"category"`
	ExpYears int    `json:"expYears"`
}

func (r *CreateQuestionRequest) Validate() error {
	if r.Category == "" {
		return errors.New("category is required")
	}
	if r.ExpYears < 0 {
		return errors.New("expYears must not be negative")
	}
	return nil
}

type GradeQuestionRequest struct {
	Answer string `json:"answer"`
}

func (r *GradeQuestionRequest) Validate() error {
	if r.Answer == "" {
		return errors.New("answer is required")
	}
	return nil
}

// ── Handlers ────────────────────────────────────────────────────────────────

// POST /api/questions
func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q, err := h.questions.Create(r.Context(), req.Category, req.ExpYears)
	if h.handleGenerateError(w, err) {
		return
	}
	if h.handleStoreError(w, err, "question") {
		return
	}

	respondJSON(w, http.StatusCreated, q)
}

// GET /api/questions/{questionID}
func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	q, err := h.store.GetQuestion(r.Context(), questionID)
	if h.handleStoreError(w, err, "question") {
		return
	}

	respondJSON(w, http.StatusOK, q)
}

// GET /api/questions?category=
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.URL.Query().Get("category")

	if category != "" {
		questions, err := h.store.ListQuestionsByCategory(ctx, category)
		if h.handleStoreError(w, err, "question") {
			return
		}
		respondJSON(w, http.StatusOK, questions)
		return
	}

	questions, err := h.store.ListQuestions(ctx)
	if h.handleStoreError(w, err, "question") {
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

// GET /api/questions/simplified?category=
func (h *Handler) listSimplifiedQuestions(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		respondError(w, http.StatusBadRequest, "category is required")
		return
	}

	simplified, err := h.store.ListSimplifiedByCategory(r.Context(), category)
	if h.handleStoreError(w, err, "simplified question") {
		return
	}

	respondJSON(w, http.StatusOK, simplified)
}

// POST /api/questions/{questionID}/grade
func (h *Handler) gradeQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	var req GradeQuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q, err := h.questions.Grade(r.Context(), questionID, req.Answer)
	if h.handleGenerateError(w, err) {
		return
	}
	if h.handleStoreError(w, err, "question") {
		return
	}

	respondJSON(w, http.StatusOK, q)
}

// POST /api/questions/{questionID}/expand
func (h *Handler) expandQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	q, err := h.questions.Expand(r.Context(), questionID)
	if h.handleGenerateError(w, err) {
		return
	}
	if h.handleStoreError(w, err, "question") {
		return
	}

	respondJSON(w, http.StatusOK, q)
}

// handleGenerateError maps model-call failures to 502 so clients can tell
// upstream model trouble apart from our own errors. Returns true if an error
// was handled.
func (h *Handler) handleGenerateError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	var genErr *genai.GenerateError
	if errors.As(err, &genErr) || errors.Is(err, genai.ErrEmptyGeneration) {
		h.logger.Error("model call failed", "error", err)
		respondError(w, http.StatusBadGateway, "model generation failed")
		return true
	}
	return false
}
