package service_test

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/kyn-317/qna/internal/domain/category"
	"github.com/kyn-317/qna/internal/domain/evaluation"
	"github.com/kyn-317/qna/internal/domain/question"
	"github.com/kyn-317/qna/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGen replays canned responses in order and records every prompt it was
// given. Calls beyond the canned list fail. Tests that interleave foreground
// stages with background summarize jobs set respondFn to pick responses by
// prompt content instead of call order.
type fakeGen struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	next      int
	respondFn func(prompt string) (string, error)
}

func newFakeGen(responses ...string) *fakeGen {
	return &fakeGen{responses: responses}
}

func (g *fakeGen) take(prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.respondFn != nil {
		return g.respondFn(prompt)
	}
	if g.next >= len(g.responses) {
		return "", errors.New("no canned response left")
	}
	text := g.responses[g.next]
	g.next++
	return text, nil
}

func (g *fakeGen) promptAt(i int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i >= len(g.prompts) {
		return ""
	}
	return g.prompts[i]
}

func (g *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	return g.take(prompt)
}

func (g *fakeGen) GenerateStream(_ context.Context, prompt string) iter.Seq2[string, error] {
	text, err := g.take(prompt)
	return func(yield func(string, error) bool) {
		if err != nil {
			yield("", err)
			return
		}
		for _, chunk := range strings.SplitAfter(text, " ") {
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

func (g *fakeGen) Model() string { return "fake-model" }

// fakeRepo is an in-memory store.Repository. Background summarize jobs touch
// it concurrently with test assertions, so everything is mutex-guarded.
type fakeRepo struct {
	mu          sync.Mutex
	questions   map[string]*question.Question
	categories  map[string]*category.Category
	simplified  map[string][]*question.SimplifiedQuestion
	answers     map[string]*evaluation.Answer
	evaluations map[string]*evaluation.Evaluation
	summaries   []*store.Summary

	summaryExists     bool
	listSimplifiedErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		questions:   make(map[string]*question.Question),
		categories:  make(map[string]*category.Category),
		simplified:  make(map[string][]*question.SimplifiedQuestion),
		answers:     make(map[string]*evaluation.Answer),
		evaluations: make(map[string]*evaluation.Evaluation),
	}
}

func (r *fakeRepo) SaveQuestion(_ context.Context, q *question.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *q
	r.questions[q.ID] = &cp
	return nil
}

func (r *fakeRepo) GetQuestion(_ context.Context, id string) (*question.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakeRepo) UpdateQuestion(_ context.Context, q *question.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[q.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *q
	r.questions[q.ID] = &cp
	return nil
}

func (r *fakeRepo) ListQuestions(_ context.Context) ([]*question.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*question.Question, 0, len(r.questions))
	for _, q := range r.questions {
		cp := *q
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) ListQuestionsByCategory(_ context.Context, category string) ([]*question.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*question.Question
	for _, q := range r.questions {
		if q.Category == category {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountQuestionsByCategory(_ context.Context, category string) (int, error) {
	qs, _ := r.ListQuestionsByCategory(context.Background(), category)
	return len(qs), nil
}

func (r *fakeRepo) SaveCategory(_ context.Context, c *category.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.categories[c.Name] = &cp
	return nil
}

func (r *fakeRepo) GetCategoryByName(_ context.Context, name string) (*category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) ListCategories(_ context.Context) ([]*category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*category.Category, 0, len(names))
	for _, name := range names {
		cp := *r.categories[name]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) UpdateCategory(_ context.Context, c *category.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.Name]; !ok {
		return store.ErrNotFound
	}
	cp := *c
	r.categories[c.Name] = &cp
	return nil
}

func (r *fakeRepo) DeleteCategory(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, c := range r.categories {
		if c.ID == id {
			delete(r.categories, name)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *fakeRepo) SaveSimplified(_ context.Context, sq *question.SimplifiedQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sq
	r.simplified[sq.Category] = append(r.simplified[sq.Category], &cp)
	return nil
}

func (r *fakeRepo) ListSimplifiedByCategory(_ context.Context, category string) ([]*question.SimplifiedQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listSimplifiedErr != nil {
		return nil, r.listSimplifiedErr
	}
	return append([]*question.SimplifiedQuestion(nil), r.simplified[category]...), nil
}

func (r *fakeRepo) SaveAnswer(_ context.Context, a *evaluation.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.answers[a.ID] = &cp
	return nil
}

func (r *fakeRepo) GetAnswer(_ context.Context, id string) (*evaluation.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.answers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) SaveEvaluation(_ context.Context, e *evaluation.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.evaluations[e.ID] = &cp
	return nil
}

func (r *fakeRepo) GetEvaluation(_ context.Context, id string) (*evaluation.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.evaluations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeRepo) SaveSummary(_ context.Context, s *store.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.summaries = append(r.summaries, &cp)
	return nil
}

func (r *fakeRepo) SummaryExists(_ context.Context, _, _ string, _ int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryExists, nil
}

func (r *fakeRepo) Close() error { return nil }

func (r *fakeRepo) savedSummaries() []*store.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*store.Summary(nil), r.summaries...)
}

func (r *fakeRepo) savedEvaluations() []*evaluation.Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*evaluation.Evaluation, 0, len(r.evaluations))
	for _, e := range r.evaluations {
		cp := *e
		out = append(out, &cp)
	}
	return out
}
