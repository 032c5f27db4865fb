package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/kyn-317/qna/internal/domain/question"
	"github.com/kyn-317/qna/internal/service"
)

func newQuestionWorkflow(repo *fakeRepo, gen *fakeGen) *service.QuestionWorkflow {
	return service.NewQuestionWorkflow(repo, gen, discardLogger(), 1, 4)
}

func TestCreate_ParsesQuestionPayload(t *testing.T) {
	repo := newFakeRepo()
	gen := newFakeGen(`{"question": "Explain how a slice grows."}`)
	w := newQuestionWorkflow(repo, gen)

	q, err := w.Create(context.Background(), "Go", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.Question != "Explain how a slice grows." {
		t.Errorf("unexpected question text: %q", q.Question)
	}
	if q.Category != "Go" || q.ExpYears != 3 {
		t.Errorf("caller metadata not preserved: category=%q expYears=%d", q.Category, q.ExpYears)
	}

	saved, err := repo.GetQuestion(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("question was not persisted: %v", err)
	}
	if saved.Question != q.Question {
		t.Errorf("persisted text differs: %q", saved.Question)
	}
}

func TestCreate_FallsBackToRawText(t *testing.T) {
	repo := newFakeRepo()
	gen := newFakeGen("What is the zero value of a map?")
	w := newQuestionWorkflow(repo, gen)

	q, err := w.Create(context.Background(), "Go", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Question != "What is the zero value of a map?" {
		t.Errorf("expected raw text fallback, got %q", q.Question)
	}
}

func TestCreate_FeedsHistoryIntoPrompt(t *testing.T) {
	repo := newFakeRepo()
	seed := question.New("old question", "Go", 3)
	repo.SaveQuestion(context.Background(), seed)
	repo.SaveSimplified(context.Background(), question.NewSimplified(seed, "Slices", "growth and capacity"))

	gen := newFakeGen(`{"question": "next"}`)
	w := newQuestionWorkflow(repo, gen)

	if _, err := w.Create(context.Background(), "Go", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := gen.promptAt(0)
	if !strings.Contains(prompt, "- Slices: growth and capacity") {
		t.Errorf("condensed history missing from prompt:\n%s", prompt)
	}
}

func TestCreate_HistoryLoadFailureDegrades(t *testing.T) {
	repo := newFakeRepo()
	repo.listSimplifiedErr = context.DeadlineExceeded

	gen := newFakeGen(`{"question": "still works"}`)
	w := newQuestionWorkflow(repo, gen)

	q, err := w.Create(context.Background(), "Go", 2)
	if err != nil {
		t.Fatalf("history failure must not fail creation: %v", err)
	}
	if q.Question != "still works" {
		t.Errorf("unexpected question: %q", q.Question)
	}
	if !strings.Contains(gen.promptAt(0), "(no prior records)") {
		t.Error("expected empty-history placeholder in prompt")
	}
}

func TestGrade_MergesNonNilFields(t *testing.T) {
	repo := newFakeRepo()
	seed := question.New("What is a mutex?", "Go", 3)
	repo.SaveQuestion(context.Background(), seed)

	gen := newFakeGen(`{"question": null, "score": 1, "modelAnswer": null}`)
	w := newQuestionWorkflow(repo, gen)

	updated, err := w.Grade(context.Background(), seed.ID, "A lock.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Question != "What is a mutex?" {
		t.Errorf("nil question field must keep original text, got %q", updated.Question)
	}
	if updated.Score == nil || *updated.Score != 1 {
		t.Errorf("unexpected score: %v", updated.Score)
	}
	if updated.UserAnswer == nil || *updated.UserAnswer != "A lock." {
		t.Errorf("unexpected user answer: %v", updated.UserAnswer)
	}
	if updated.ModelAnswer != nil {
		t.Errorf("nil model answer field must stay unset, got %q", *updated.ModelAnswer)
	}
	if updated.Category != "Go" || updated.ExpYears != 3 {
		t.Errorf("identity fields must survive grading: category=%q expYears=%d", updated.Category, updated.ExpYears)
	}
}

func TestGrade_UnparsableKeepsOriginalFields(t *testing.T) {
	repo := newFakeRepo()
	seed := question.New("What is a channel?", "Go", 3)
	repo.SaveQuestion(context.Background(), seed)

	gen := newFakeGen("I cannot grade this right now.")
	w := newQuestionWorkflow(repo, gen)

	updated, err := w.Grade(context.Background(), seed.ID, "A pipe.")
	if err != nil {
		t.Fatalf("parse failure must degrade, not fail: %v", err)
	}

	if updated.Question != "What is a channel?" {
		t.Errorf("unexpected question: %q", updated.Question)
	}
	if updated.Score != nil {
		t.Errorf("expected no score on parse failure, got %d", *updated.Score)
	}
	if updated.UserAnswer == nil || *updated.UserAnswer != "A pipe." {
		t.Errorf("user answer must be recorded regardless: %v", updated.UserAnswer)
	}
}

func TestGrade_UnknownQuestion(t *testing.T) {
	repo := newFakeRepo()
	gen := newFakeGen()
	w := newQuestionWorkflow(repo, gen)

	if _, err := w.Grade(context.Background(), "missing", "answer"); err == nil {
		t.Error("expected error for unknown question")
	}
}

func TestExpand_ReplacesFollowupsWholesale(t *testing.T) {
	repo := newFakeRepo()
	seed := question.New("Explain interfaces.", "Go", 5)
	seeded := seed.WithAdditionalQuestions([]question.AdditionalQuestion{
		{Question: "stale", Answer: "stale"},
	})
	repo.SaveQuestion(context.Background(), &seeded)

	gen := newFakeGen(`[{"question": "What is a method set?", "answer": "The methods callable on a type."},
	{"question": "What is an empty interface?", "answer": "An interface with no methods."}]`)
	w := newQuestionWorkflow(repo, gen)

	updated, err := w.Expand(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(updated.AdditionalQuestions) != 2 {
		t.Fatalf("expected 2 follow-ups, got %d", len(updated.AdditionalQuestions))
	}
	if updated.AdditionalQuestions[0].Question == "stale" {
		t.Error("old follow-ups must be replaced, not appended to")
	}
	if updated.Category != "Go" || updated.ExpYears != 5 {
		t.Errorf("identity fields must survive expansion: category=%q expYears=%d", updated.Category, updated.ExpYears)
	}
}

func TestExpand_GarbageStoresEmptyList(t *testing.T) {
	repo := newFakeRepo()
	seed := question.New("Explain defer.", "Go", 2)
	repo.SaveQuestion(context.Background(), seed)

	gen := newFakeGen("no structured content at all")
	w := newQuestionWorkflow(repo, gen)

	updated, err := w.Expand(context.Background(), seed.ID)
	if err != nil {
		t.Fatalf("total parse failure must degrade to empty list: %v", err)
	}
	if updated.AdditionalQuestions == nil {
		t.Fatal("expected non-nil empty list")
	}
	if len(updated.AdditionalQuestions) != 0 {
		t.Errorf("expected empty list, got %d entries", len(updated.AdditionalQuestions))
	}
}

func TestSummarize_PersistsCondensedRecord(t *testing.T) {
	repo := newFakeRepo()
	seed := question.New("Explain goroutine scheduling.", "Go", 7)
	repo.SaveQuestion(context.Background(), seed)

	gen := newFakeGen(`{"question": "Scheduling", "simplifiedDetail": "GMP model basics"}`)
	w := newQuestionWorkflow(repo, gen)

	if err := w.Summarize(context.Background(), seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, err := repo.ListSimplifiedByCategory(context.Background(), "Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 condensed record, got %d", len(history))
	}
	if history[0].Question != "Scheduling" || history[0].SimplifiedDetail != "GMP model basics" {
		t.Errorf("unexpected condensed record: %+v", history[0])
	}
	if history[0].QuestionID != seed.ID || history[0].ExpYears != 7 {
		t.Errorf("source question metadata not carried over: %+v", history[0])
	}
}

func TestGrade_PromptCarriesFullRecord(t *testing.T) {
	repo := newFakeRepo()
	seed := question.New("Explain context cancellation.", "Go", 4)
	repo.SaveQuestion(context.Background(), seed)

	gen := newFakeGen(`{"score": 70, "modelAnswer": "Use context.WithCancel."}`)
	w := newQuestionWorkflow(repo, gen)

	if _, err := w.Grade(context.Background(), seed.ID, "Cancel propagates down the tree."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := gen.promptAt(0)
	for _, want := range []string{
		seed.ID,
		"Explain context cancellation.",
		`"category": "Go"`,
		`"expYears": 4`,
		"Cancel propagates down the tree.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("grading prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestLifecycle_CreateGradeExpandKeepsCreationIdentity(t *testing.T) {
	repo := newFakeRepo()
	// None of the model responses echo category or expYears; the persisted
	// record must still carry the values fixed at creation.
	gen := newFakeGen()
	gen.respondFn = func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "grading a candidate's answer"):
			return `{"score": 85, "modelAnswer": "Variables that outlive a frame move to the heap."}`, nil
		case strings.Contains(prompt, "follow-up questions"):
			return `[{"question": "When does a slice escape?", "answer": "When it is referenced beyond its frame."}]`, nil
		case strings.Contains(prompt, "compact interview notes"):
			return `{"question": "Escape analysis", "simplifiedDetail": "stack vs heap placement"}`, nil
		default:
			return `{"question": "Explain escape analysis."}`, nil
		}
	}
	w := newQuestionWorkflow(repo, gen)

	q, err := w.Create(context.Background(), "Go", 6)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := w.Grade(context.Background(), q.ID, "The compiler decides stack versus heap."); err != nil {
		t.Fatalf("grade: %v", err)
	}
	if _, err := w.Expand(context.Background(), q.ID); err != nil {
		t.Fatalf("expand: %v", err)
	}

	saved, err := repo.GetQuestion(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("persisted record missing: %v", err)
	}
	if saved.Category != "Go" || saved.ExpYears != 6 {
		t.Errorf("creation-time identity lost: category=%q expYears=%d", saved.Category, saved.ExpYears)
	}
	if saved.Question != "Explain escape analysis." {
		t.Errorf("unexpected question text: %q", saved.Question)
	}
	if saved.Score == nil || *saved.Score != 85 {
		t.Errorf("unexpected score: %v", saved.Score)
	}
	if saved.UserAnswer == nil || *saved.UserAnswer != "The compiler decides stack versus heap." {
		t.Errorf("unexpected user answer: %v", saved.UserAnswer)
	}
	if len(saved.AdditionalQuestions) != 1 {
		t.Errorf("expected 1 follow-up, got %d", len(saved.AdditionalQuestions))
	}
}
