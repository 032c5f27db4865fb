// simulation/simulation.go
package simulation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kyn-317/qna/internal/genai"
	"github.com/kyn-317/qna/internal/service"
	"github.com/kyn-317/qna/internal/session"
	"github.com/kyn-317/qna/internal/store"
)

// Run drives one full interview round against a live model backend: start a
// session, generate a question, submit a canned answer, evaluate it, and
// accept the result. A manual smoke harness for the whole pipeline, not a
// test.
func Run(ctx context.Context, repo store.Repository, gen genai.Generator, logger *slog.Logger) error {
	sessions := session.NewStore(logger)
	generator := service.NewSessionGenerator(sessions, repo, gen, logger)
	evaluations := service.NewEvaluationWorkflow(sessions, repo, gen, logger)

	sessionID := uuid.NewString()
	err := sessions.Create(sessionID, "Backend Interview Simulation", []session.Fact{
		{Key: service.FactTechnologyStack, Value: "Go, PostgreSQL, Docker"},
		{Key: service.FactExperienceLevel, Value: "3"},
	})
	if err != nil {
		return err
	}
	fmt.Printf("Session started: %s\n", sessionID)

	q, err := generator.GenerateForSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	sessions.AppendMessage(sessionID, session.RoleAssistant, q.Question)
	fmt.Printf("\n=== Question %s ===\n%s\n", q.ID, q.Question)

	answer := "I would profile first with pprof, then look at allocation hot spots " +
		"and reduce pressure on the garbage collector before touching concurrency."
	eval, err := evaluations.SubmitAnswer(ctx, sessionID, q.ID, answer)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	fmt.Printf("\nScore: %.1f\nFeedback: %s\nExemplary: %s\n", eval.Score, eval.Feedback, eval.ExemplaryAnswer)

	if err := generator.AcceptAnswer(ctx, q.ID, eval.AnswerID, eval.ID); err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	fmt.Println("\nAnswer accepted, duplicate-detection summary recorded.")
	return nil
}
