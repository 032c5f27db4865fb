package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kyn-317/qna/internal/domain/evaluation"
	"github.com/kyn-317/qna/internal/domain/question"
	"github.com/kyn-317/qna/internal/genai"
	"github.com/kyn-317/qna/internal/llmtext"
	"github.com/kyn-317/qna/internal/session"
	"github.com/kyn-317/qna/internal/store"
	"github.com/kyn-317/qna/prompts"
)

// EvaluationWorkflow grades one answer against one question using the
// labelled key:value response protocol. Unlike QuestionWorkflow it is
// strict: an empty generation or a missing section is a fatal error, since
// a grade without its sections is not usable.
type EvaluationWorkflow struct {
	sessions *session.Store
	store    store.Repository
	gen      genai.Generator
	logger   *slog.Logger
}

// NewEvaluationWorkflow creates the answer-evaluation workflow.
func NewEvaluationWorkflow(sessions *session.Store, s store.Repository, gen genai.Generator, logger *slog.Logger) *EvaluationWorkflow {
	return &EvaluationWorkflow{
		sessions: sessions,
		store:    s,
		gen:      gen,
		logger:   logger,
	}
}

// SubmitAnswer records the candidate's answer, appends it to the session
// transcript, and evaluates it. The transcript append is best-effort: an
// unknown session is logged by the store and the evaluation still runs.
func (w *EvaluationWorkflow) SubmitAnswer(ctx context.Context, sessionID, questionID, answerText string) (*evaluation.Evaluation, error) {
	q, err := w.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", questionID, err)
	}

	a := evaluation.NewAnswer(questionID, answerText, "client_user")
	if err := w.store.SaveAnswer(ctx, a); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	w.sessions.AppendMessage(sessionID, session.RoleUser, answerText)

	return w.Evaluate(ctx, q, a)
}

// Evaluate builds the evaluation prompt, generates, parses the labelled
// sections, maps the qualitative verdict to a score, and persists the
// resulting record.
func (w *EvaluationWorkflow) Evaluate(ctx context.Context, q *question.Question, a *evaluation.Answer) (*evaluation.Evaluation, error) {
	prompt := prompts.Render(prompts.Evaluation, map[string]string{
		"question": q.Question,
		"answer":   a.Text,
	})

	text, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("evaluate answer %s: %w", a.ID, err)
	}

	sections, err := llmtext.ParseEvaluationBlock(text)
	if err != nil {
		return nil, fmt.Errorf("evaluate answer %s: %w", a.ID, err)
	}

	score := scoreForVerdict(sections.Evaluation)
	if score == evaluation.ScoreUnrecognized {
		w.logger.Warn("unrecognized qualitative evaluation, needs human review",
			"answer_id", a.ID, "verdict", sections.Evaluation)
	}

	e := evaluation.New(q.ID, a.ID, score, sections.Feedback, sections.ExemplaryAnswer, w.gen.Model())
	if err := w.store.SaveEvaluation(ctx, e); err != nil {
		return nil, fmt.Errorf("save evaluation: %w", err)
	}

	w.logger.Info("answer evaluated", "question_id", q.ID, "answer_id", a.ID, "score", score)
	return e, nil
}

// scoreForVerdict maps the model's qualitative verdict to a fixed score.
// Anything unrecognized maps to the sentinel rather than failing the
// request.
func scoreForVerdict(verdict string) float64 {
	switch strings.ToLower(strings.TrimSpace(verdict)) {
	case "correct":
		return evaluation.ScoreCorrect
	case "partially correct":
		return evaluation.ScorePartiallyCorrect
	case "incorrect":
		return evaluation.ScoreIncorrect
	default:
		return evaluation.ScoreUnrecognized
	}
}
