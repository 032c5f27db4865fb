// Package llmtext recovers structured data from free-form model output.
//
// Generated text is frequently wrapped in code fences, trailed by commentary,
// or outright malformed. Recovery is an ordered list of pure strategies tried
// by a small first-success combinator, with each tier more lenient than the
// one before. Callers that can tolerate degradation substitute an explicit
// empty value when every tier fails; the package itself never hands back an
// absent result without an error saying so.
package llmtext

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Strategy is a single attempt at recovering a T from raw model text.
type Strategy[T any] func(text string) (T, error)

// ErrUnparsable is returned when every strategy in a cascade has failed.
var ErrUnparsable = errors.New("no parse strategy succeeded")

// FirstSuccess tries strategies in order and returns the first result that
// parses. When all of them fail it returns the zero T and ErrUnparsable
// carrying the last tier's failure.
func FirstSuccess[T any](text string, strategies ...Strategy[T]) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for _, s := range strategies {
		v, err := s(text)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return zero, fmt.Errorf("%w: %v", ErrUnparsable, lastErr)
}

// StripFences removes a leading "```json" or "```" marker and a trailing
// "```" marker, returning the trimmed remainder.
func StripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	}
	if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-len("```")]
	}
	return strings.TrimSpace(cleaned)
}

var (
	trailingCommaRe  = regexp.MustCompile(`,\s*([\]}])`)
	unescapedQuoteRe = regexp.MustCompile(`"([^"]*?)"([^"]*?)"([^"]*?)"`)
)

// RepairJSON fixes the two defects models produce most often: a trailing
// comma before a closing bracket or brace, and an unescaped quote pair
// inside a string value. The quote repair is a heuristic over "a"b"c"
// triples and is only safe on text that already failed strict parsing.
func RepairJSON(text string) string {
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = unescapedQuoteRe.ReplaceAllString(text, `"$1\"$2\"$3"`)
	return text
}

// ParseObject recovers a single JSON value of type T: first from the
// fence-stripped text, then from the repaired text.
func ParseObject[T any](text string) (T, error) {
	return FirstSuccess(text,
		func(s string) (T, error) { return unmarshal[T](StripFences(s)) },
		func(s string) (T, error) { return unmarshal[T](RepairJSON(StripFences(s))) },
	)
}

func unmarshal[T any](s string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, err
	}
	return v, nil
}
