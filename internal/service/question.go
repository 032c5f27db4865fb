// Package service contains the question-lifecycle and answer-evaluation
// workflows: prompt construction, generation calls, resilient response
// interpretation, and persistence of the results.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kyn-317/qna/internal/domain/question"
	"github.com/kyn-317/qna/internal/genai"
	"github.com/kyn-317/qna/internal/llmtext"
	"github.com/kyn-317/qna/internal/store"
	"github.com/kyn-317/qna/internal/worker"
	"github.com/kyn-317/qna/prompts"
)

// QuestionWorkflow drives the four question stages: create, grade, expand,
// and summarize. Parse failures degrade rather than fail: the workflow
// always produces some usable result, keeping the caller-supplied identity
// fields (id, category, expYears) authoritative over model output.
type QuestionWorkflow struct {
	store     store.Repository
	gen       genai.Generator
	logger    *slog.Logger
	summaries *worker.Pool[error]
}

// NewQuestionWorkflow creates the workflow and starts its detached summarize
// workers.
func NewQuestionWorkflow(s store.Repository, gen genai.Generator, logger *slog.Logger, summaryWorkers, summaryBuffer int) *QuestionWorkflow {
	w := &QuestionWorkflow{
		store:     s,
		gen:       gen,
		logger:    logger,
		summaries: worker.NewPool[error](summaryWorkers, summaryBuffer),
	}
	go w.drainSummaries()
	return w
}

type questionPayload struct {
	Question *string `json:"question"`
}

type gradePayload struct {
	Question    *string `json:"question"`
	Score       *int    `json:"score"`
	ModelAnswer *string `json:"modelAnswer"`
}

type summaryPayload struct {
	Question         *string `json:"question"`
	SimplifiedDetail *string `json:"simplifiedDetail"`
}

// Create generates a new question for a category and experience level,
// feeding condensed history of previously graded questions into the prompt.
func (w *QuestionWorkflow) Create(ctx context.Context, category string, expYears int) (*question.Question, error) {
	history, err := w.store.ListSimplifiedByCategory(ctx, category)
	if err != nil {
		w.logger.Warn("failed to load condensed history, creating without it", "category", category, "error", err)
		history = nil
	}

	prompt := prompts.Render(prompts.Creation, map[string]string{
		"category": category,
		"expYears": strconv.Itoa(expYears),
		"history":  renderHistory(history),
	})

	text, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	// Caller metadata is authoritative; only the question text comes from
	// the model. On parse failure the raw text is used as-is.
	questionText := llmtext.StripFences(text)
	parsed, perr := llmtext.ParseObject[questionPayload](text)
	if perr != nil {
		w.logger.Warn("question payload unparsable, using raw text", "category", category, "error", perr)
	} else if parsed.Question != nil && *parsed.Question != "" {
		questionText = *parsed.Question
	}

	q := question.New(questionText, category, expYears)
	if err := w.store.SaveQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("save question: %w", err)
	}

	w.logger.Info("question created", "question_id", q.ID, "category", category, "exp_years", expYears)
	return q, nil
}

// Grade scores the candidate's answer to a question and records the model's
// own answer. Parsed values only overwrite fields when non-nil; grading a
// question never loses its original text. On success a summarize job is
// queued as a detached side effect.
func (w *QuestionWorkflow) Grade(ctx context.Context, questionID, userAnswer string) (*question.Question, error) {
	q, err := w.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	record, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := prompts.Render(prompts.Grading, map[string]string{
		"record":     string(record),
		"userAnswer": userAnswer,
	})

	text, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("grade question %s: %w", questionID, err)
	}

	updated := q.WithUserAnswer(userAnswer)
	parsed, perr := llmtext.ParseObject[gradePayload](text)
	if perr != nil {
		w.logger.Warn("grade payload unparsable, keeping original fields", "question_id", questionID, "error", perr)
	} else {
		updated = updated.WithQuestion(parsed.Question).WithGrade(parsed.Score, parsed.ModelAnswer)
	}
	updated = updated.Touched()

	if err := w.store.UpdateQuestion(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save graded question: %w", err)
	}

	w.triggerSummarize(&updated)
	return &updated, nil
}

// Expand asks the model to fill in follow-up question/answer pairs and
// replaces the record's list wholesale with the parsed result — an empty
// list when every parse tier fails, never an error. On success a summarize
// job is queued as a detached side effect.
func (w *QuestionWorkflow) Expand(ctx context.Context, questionID string) (*question.Question, error) {
	q, err := w.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	record, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := prompts.Render(prompts.Expansion, map[string]string{
		"record": string(record),
	})

	text, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("expand question %s: %w", questionID, err)
	}

	pairs, perr := llmtext.ParsePairs(text)
	if perr != nil {
		w.logger.Warn("follow-up payload unparsable, storing empty list", "question_id", questionID, "error", perr)
	}
	followups := make([]question.AdditionalQuestion, 0, len(pairs))
	for _, p := range pairs {
		followups = append(followups, question.AdditionalQuestion{Question: p.Question, Answer: p.Answer})
	}

	updated := q.WithAdditionalQuestions(followups).Touched()
	if err := w.store.UpdateQuestion(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save expanded question: %w", err)
	}

	w.triggerSummarize(&updated)
	return &updated, nil
}

// Summarize condenses a question record into a SimplifiedQuestion used as
// compact history for future prompts. Usually queued via triggerSummarize;
// exported so callers can also run it synchronously.
func (w *QuestionWorkflow) Summarize(ctx context.Context, q *question.Question) error {
	record, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return err
	}
	prompt := prompts.Render(prompts.Summary, map[string]string{
		"record": string(record),
	})

	text, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("summarize question %s: %w", q.ID, err)
	}

	// Fallbacks: original question text, raw stripped text as detail.
	questionText := q.Question
	detail := llmtext.StripFences(text)
	parsed, perr := llmtext.ParseObject[summaryPayload](text)
	if perr != nil {
		w.logger.Warn("summary payload unparsable, using raw text", "question_id", q.ID, "error", perr)
	} else {
		if parsed.Question != nil && *parsed.Question != "" {
			questionText = *parsed.Question
		}
		if parsed.SimplifiedDetail != nil {
			detail = *parsed.SimplifiedDetail
		}
	}

	sq := question.NewSimplified(q, questionText, detail)
	if err := w.store.SaveSimplified(ctx, sq); err != nil {
		return fmt.Errorf("save simplified question %s: %w", q.ID, err)
	}
	return nil
}

// triggerSummarize queues a detached summarize job. It uses a background
// context so the triggering request's cancellation does not abort it, and
// never blocks: a full queue drops the job with a log line.
func (w *QuestionWorkflow) triggerSummarize(q *question.Question) {
	snapshot := *q
	ok := w.summaries.TrySubmit(q.ID, func() error {
		return w.Summarize(context.Background(), &snapshot)
	})
	if !ok {
		w.logger.Warn("summary queue full, dropping job", "question_id", q.ID)
	}
}

func (w *QuestionWorkflow) drainSummaries() {
	for r := range w.summaries.Results() {
		if r.Output != nil {
			w.logger.Error("summarize failed", "question_id", r.JobID, "error", r.Output)
		}
	}
}

func renderHistory(history []*question.SimplifiedQuestion) string {
	if len(history) == 0 {
		return "(no prior records)"
	}
	var b strings.Builder
	for _, h := range history {
		fmt.Fprintf(&b, "- %s: %s\n", h.Question, h.SimplifiedDetail)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
