package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kyn-317/qna/internal/domain/question"
	"github.com/kyn-317/qna/internal/genai"
	"github.com/kyn-317/qna/internal/hash"
	"github.com/kyn-317/qna/internal/id"
	"github.com/kyn-317/qna/internal/session"
	"github.com/kyn-317/qna/internal/store"
	"github.com/kyn-317/qna/prompts"
)

// Fact keys every session must carry to generate questions.
const (
	FactTechnologyStack = "technologyStack"
	FactExperienceLevel = "experienceLevel"
)

var (
	// ErrContextNotFound is returned when a session id has no registered
	// context.
	ErrContextNotFound = errors.New("session context not found")

	// ErrMissingFacts is returned when a session lacks the technology
	// stack or experience level fact.
	ErrMissingFacts = errors.New("essential facts missing in session context")
)

// SessionGenerator produces interview questions from a session's accumulated
// context: the facts established at session start plus the questions already
// asked, which the prompt tells the model to avoid repeating.
type SessionGenerator struct {
	sessions *session.Store
	store    store.Repository
	gen      genai.Generator
	logger   *slog.Logger
}

// NewSessionGenerator creates a session-driven question generator.
func NewSessionGenerator(sessions *session.Store, s store.Repository, gen genai.Generator, logger *slog.Logger) *SessionGenerator {
	return &SessionGenerator{
		sessions: sessions,
		store:    s,
		gen:      gen,
		logger:   logger,
	}
}

// GenerateForSession streams a question from the backend for the given
// session and persists it. A generated question that hashes to an already
// accepted one is logged as a potential duplicate but still used — the check
// never blocks creation. The caller appends the question to the session
// transcript once it has been delivered.
func (g *SessionGenerator) GenerateForSession(ctx context.Context, sessionID string) (*question.Question, error) {
	sctx, ok := g.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrContextNotFound)
	}

	tech, okTech := sctx.FactValue(FactTechnologyStack)
	level, okLevel := sctx.FactValue(FactExperienceLevel)
	if !okTech || !okLevel {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrMissingFacts)
	}

	var previous []string
	for _, m := range sctx.Messages() {
		if m.Role == session.RoleAssistant {
			previous = append(previous, m.Content)
		}
	}
	previousJoined := "(none)"
	if len(previous) > 0 {
		previousJoined = strings.Join(previous, "; ")
	}

	prompt := prompts.Render(prompts.SessionQuestion, map[string]string{
		"technologyStack":   tech,
		"experienceLevel":   level,
		"previousQuestions": previousJoined,
	})

	var b strings.Builder
	for chunk, err := range g.gen.GenerateStream(ctx, prompt) {
		if err != nil {
			return nil, fmt.Errorf("generate question for session %s: %w", sessionID, err)
		}
		b.WriteString(chunk)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, fmt.Errorf("generate question for session %s: %w", sessionID, genai.ErrEmptyGeneration)
	}

	expYears, _ := strconv.Atoi(level)
	questionHash := hash.SHA256Hex(text)
	exists, err := g.store.SummaryExists(ctx, questionHash, tech, expYears)
	if err != nil {
		g.logger.Warn("duplicate check failed", "session_id", sessionID, "error", err)
	} else if exists {
		g.logger.Warn("generated question is a potential duplicate, proceeding",
			"session_id", sessionID, "hash", questionHash, "category", tech)
	}

	q := question.New(text, tech, expYears)
	if err := g.store.SaveQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("save generated question: %w", err)
	}

	g.logger.Info("question generated for session", "session_id", sessionID, "question_id", q.ID)
	return q, nil
}

// AcceptAnswer records a duplicate-detection summary for a question whose
// answer the candidate accepted. The referenced answer and evaluation must
// exist.
func (g *SessionGenerator) AcceptAnswer(ctx context.Context, questionID, answerID, evaluationID string) error {
	q, err := g.store.GetQuestion(ctx, questionID)
	if err != nil {
		return fmt.Errorf("question %s: %w", questionID, err)
	}
	if _, err := g.store.GetAnswer(ctx, answerID); err != nil {
		return fmt.Errorf("answer %s: %w", answerID, err)
	}
	if _, err := g.store.GetEvaluation(ctx, evaluationID); err != nil {
		return fmt.Errorf("evaluation %s: %w", evaluationID, err)
	}

	sum := &store.Summary{
		ID:           id.GenerateID(),
		QuestionID:   q.ID,
		QuestionHash: hash.SHA256Hex(q.Question),
		Category:     q.Category,
		ExpYears:     q.ExpYears,
		CreatedAt:    time.Now(),
	}
	if err := g.store.SaveSummary(ctx, sum); err != nil {
		return fmt.Errorf("save summary for question %s: %w", questionID, err)
	}

	g.logger.Info("answer accepted, summary recorded", "question_id", questionID, "hash", sum.QuestionHash)
	return nil
}
