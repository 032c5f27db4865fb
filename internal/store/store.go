// Package store provides persistence for questions, answers, evaluations,
// and condensed question history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kyn-317/qna/internal/domain/category"
	"github.com/kyn-317/qna/internal/domain/evaluation"
	"github.com/kyn-317/qna/internal/domain/question"
)

var (
	ErrNotFound = errors.New("not found")
)

// Summary is a hash row recorded when an answer is accepted, used only for
// best-effort duplicate detection of newly generated questions.
type Summary struct {
	ID           string
	QuestionID   string
	QuestionHash string
	Category     string
	ExpYears     int
	CreatedAt    time.Time
}

// Repository defines the persistence operations the workflows need.
type Repository interface {
	// Questions.
	SaveQuestion(ctx context.Context, q *question.Question) error
	GetQuestion(ctx context.Context, id string) (*question.Question, error)
	UpdateQuestion(ctx context.Context, q *question.Question) error
	ListQuestions(ctx context.Context) ([]*question.Question, error)
	ListQuestionsByCategory(ctx context.Context, category string) ([]*question.Question, error)
	CountQuestionsByCategory(ctx context.Context, category string) (int, error)

	// Categories.
	SaveCategory(ctx context.Context, c *category.Category) error
	GetCategoryByName(ctx context.Context, name string) (*category.Category, error)
	ListCategories(ctx context.Context) ([]*category.Category, error)
	UpdateCategory(ctx context.Context, c *category.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Condensed history.
	SaveSimplified(ctx context.Context, sq *question.SimplifiedQuestion) error
	ListSimplifiedByCategory(ctx context.Context, category string) ([]*question.SimplifiedQuestion, error)

	// Answers and evaluations.
	SaveAnswer(ctx context.Context, a *evaluation.Answer) error
	GetAnswer(ctx context.Context, id string) (*evaluation.Answer, error)
	SaveEvaluation(ctx context.Context, e *evaluation.Evaluation) error
	GetEvaluation(ctx context.Context, id string) (*evaluation.Evaluation, error)

	// Duplicate-detection summaries.
	SaveSummary(ctx context.Context, s *Summary) error
	SummaryExists(ctx context.Context, hash, category string, expYears int) (bool, error)

	Close() error
}
