package llmtext_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kyn-317/qna/internal/llmtext"
)

func TestParseEvaluationBlock(t *testing.T) {
	text := `Evaluation: correct
Feedback: Good coverage of the topic.
Exemplary Answer: A goroutine is a lightweight thread managed by the Go runtime.`

	sections, err := llmtext.ParseEvaluationBlock(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sections.Evaluation != "correct" {
		t.Errorf("unexpected evaluation: %q", sections.Evaluation)
	}
	if sections.Feedback != "Good coverage of the topic." {
		t.Errorf("unexpected feedback: %q", sections.Feedback)
	}
	if !strings.HasPrefix(sections.ExemplaryAnswer, "A goroutine") {
		t.Errorf("unexpected exemplary answer: %q", sections.ExemplaryAnswer)
	}
}

func TestParseEvaluationBlock_AnyOrder(t *testing.T) {
	text := `Exemplary Answer: Use context for cancellation.
Evaluation: partially correct
Feedback: You missed cancellation propagation.`

	sections, err := llmtext.ParseEvaluationBlock(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sections.Evaluation != "partially correct" {
		t.Errorf("unexpected evaluation: %q", sections.Evaluation)
	}
}

func TestParseEvaluationBlock_MultiLineSection(t *testing.T) {
	text := `Evaluation: incorrect
Feedback: First point.
Second point.
Third point.
Exemplary Answer: The answer.`

	sections, err := llmtext.ParseEvaluationBlock(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "First point.\nSecond point.\nThird point."
	if sections.Feedback != want {
		t.Errorf("expected continuation lines joined, got %q", sections.Feedback)
	}
}

func TestParseEvaluationBlock_CRLF(t *testing.T) {
	text := "Evaluation: correct\r\nFeedback: fine\r\nExemplary Answer: done\r\n"

	sections, err := llmtext.ParseEvaluationBlock(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sections.ExemplaryAnswer != "done" {
		t.Errorf("unexpected exemplary answer: %q", sections.ExemplaryAnswer)
	}
}

func TestParseEvaluationBlock_MissingSections(t *testing.T) {
	text := "Evaluation: correct\nExemplary Answer: something"

	_, err := llmtext.ParseEvaluationBlock(text)
	var missing *llmtext.MissingSectionError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSectionError, got %v", err)
	}
	if len(missing.Missing) != 1 || missing.Missing[0] != "Feedback" {
		t.Errorf("unexpected missing sections: %v", missing.Missing)
	}
}

func TestParseEvaluationBlock_Empty(t *testing.T) {
	_, err := llmtext.ParseEvaluationBlock("")
	var missing *llmtext.MissingSectionError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSectionError, got %v", err)
	}
	if len(missing.Missing) != 3 {
		t.Errorf("expected all sections missing, got %v", missing.Missing)
	}
}
