package llmtext

import (
	"fmt"
	"strings"
)

// Markers introducing the three required sections of an evaluation response.
const (
	markerEvaluation = "Evaluation:"
	markerFeedback   = "Feedback:"
	markerExemplary  = "Exemplary Answer:"
)

// EvaluationSections holds the three labelled sections of an evaluation
// response. Multi-line sections keep their embedded newlines.
type EvaluationSections struct {
	Evaluation      string
	Feedback        string
	ExemplaryAnswer string
}

// MissingSectionError reports required sections absent from the response.
// Unlike the JSON cascade this protocol has no extraction fallback: a grade
// without all three sections is not usable.
type MissingSectionError struct {
	Missing []string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("evaluation response missing required sections: %s", strings.Join(e.Missing, ", "))
}

// ParseEvaluationBlock scans every line of text for the three section
// markers. Sections may appear in any order; a line that starts no section
// is appended, newline-joined, to whichever section is currently open.
func ParseEvaluationBlock(text string) (EvaluationSections, error) {
	parsed := make(map[string]string, 3)

	var (
		currentKey string
		current    strings.Builder
	)
	flush := func() {
		if currentKey != "" {
			parsed[currentKey] = strings.TrimSpace(current.String())
		}
	}
	open := func(marker, line string) {
		flush()
		currentKey = marker
		current.Reset()
		current.WriteString(strings.TrimSpace(strings.TrimPrefix(line, marker)))
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, markerEvaluation):
			open(markerEvaluation, line)
		case strings.HasPrefix(line, markerFeedback):
			open(markerFeedback, line)
		case strings.HasPrefix(line, markerExemplary):
			open(markerExemplary, line)
		case currentKey != "":
			current.WriteString("\n")
			current.WriteString(line)
		}
	}
	flush()

	var missing []string
	for _, marker := range []string{markerEvaluation, markerFeedback, markerExemplary} {
		if _, ok := parsed[marker]; !ok {
			missing = append(missing, strings.TrimSuffix(marker, ":"))
		}
	}
	if len(missing) > 0 {
		return EvaluationSections{}, &MissingSectionError{Missing: missing}
	}

	return EvaluationSections{
		Evaluation:      parsed[markerEvaluation],
		Feedback:        parsed[markerFeedback],
		ExemplaryAnswer: parsed[markerExemplary],
	}, nil
}
