// internal/api/session_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kyn-317/qna/internal/llmtext"
	"github.com/kyn-317/qna/internal/service"
	"github.com/kyn-317/qna/internal/session"
)

// ── Request / Response types ────────────────────────────────────────────────

type StartSessionRequest struct {
	Subject         string `json:"subject"`
	TechnologyStack string `json:"technologyStack"`
	ExperienceLevel string `json:"experienceLevel"`
}

func (r *StartSessionRequest) Validate() error {
	if r.Subject == "" {
		return errors.New("subject is required")
	}
	if r.TechnologyStack == "" {
		return errors.New("technologyStack is required")
	}
	if r.ExperienceLevel == "" {
		return errors.New("experienceLevel is required")
	}
	return nil
}

type StartSessionResponse struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
}

type SubmitSessionAnswerRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

func (r *SubmitSessionAnswerRequest) Validate() error {
	if r.QuestionID == "" {
		return errors.New("questionId is required")
	}
	if r.Answer == "" {
		return errors.New("answer is required")
	}
	return nil
}

type AcceptAnswerRequest struct {
	QuestionID   string `json:"questionId"`
	AnswerID     string `json:"answerId"`
	EvaluationID string `json:"evaluationId"`
}

func (r *AcceptAnswerRequest) Validate() error {
	if r.QuestionID == "" {
		return errors.New("questionId is required")
	}
	if r.AnswerID == "" {
		return errors.New("answerId is required")
	}
	if r.EvaluationID == "" {
		return errors.New("evaluationId is required")
	}
	return nil
}

type AcceptAnswerResponse struct {
	Status string `json:"status"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// POST /api/qna/sessions
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sessionID := uuid.NewString()
	facts := []session.Fact{
		{Key: service.FactTechnologyStack, Value: req.TechnologyStack},
		{Key: service.FactExperienceLevel, Value: req.ExperienceLevel},
	}

	if err := h.sessions.Create(sessionID, req.Subject, facts); err != nil {
		h.logger.Error("failed to create session", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(w, http.StatusCreated, StartSessionResponse{
		ID:      sessionID,
		Subject: req.Subject,
	})
}

// POST /api/qna/sessions/{sessionID}/questions
func (h *Handler) generateSessionQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	q, err := h.generator.GenerateForSession(r.Context(), sessionID)
	if errors.Is(err, service.ErrContextNotFound) {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if errors.Is(err, service.ErrMissingFacts) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.handleGenerateError(w, err) {
		return
	}
	if h.handleStoreError(w, err, "question") {
		return
	}

	h.sessions.AppendMessage(sessionID, session.RoleAssistant, q.Question)

	respondJSON(w, http.StatusCreated, q)
}

// POST /api/qna/sessions/{sessionID}/answers
func (h *Handler) submitSessionAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req SubmitSessionAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	eval, err := h.evaluations.SubmitAnswer(r.Context(), sessionID, req.QuestionID, req.Answer)
	var missing *llmtext.MissingSectionError
	if errors.As(err, &missing) {
		h.logger.Error("evaluation response malformed", "error", err)
		respondError(w, http.StatusBadGateway, "model returned an unusable evaluation")
		return
	}
	if h.handleGenerateError(w, err) {
		return
	}
	if h.handleStoreError(w, err, "question") {
		return
	}

	respondJSON(w, http.StatusCreated, eval)
}

// POST /api/qna/sessions/{sessionID}/accept
func (h *Handler) acceptAnswer(w http.ResponseWriter, r *http.Request) {
	var req AcceptAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.generator.AcceptAnswer(r.Context(), req.QuestionID, req.AnswerID, req.EvaluationID)
	if h.handleStoreError(w, err, "record") {
		return
	}

	respondJSON(w, http.StatusOK, AcceptAnswerResponse{Status: "accepted"})
}
