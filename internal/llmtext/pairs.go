package llmtext

import (
	"errors"
	"regexp"
	"strings"
)

// Pair is one question/answer item recovered from an array payload.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// pairRe captures repeated "question": "...", "answer": "..." fragments
// directly from raw text, honoring escaped quotes inside each group.
var pairRe = regexp.MustCompile(`"question"\s*:\s*"((?:[^"\\]|\\.)*)"\s*,\s*"answer"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// ParsePairs runs the full three-tier cascade for array-of-pair targets:
// strict parse of the fence-stripped text, strict parse of the repaired
// text, then manual fragment extraction. The returned slice is never nil;
// on total failure it is empty and the error reports the last failure.
func ParsePairs(text string) ([]Pair, error) {
	pairs, err := FirstSuccess(text,
		func(s string) ([]Pair, error) { return unmarshal[[]Pair](StripFences(s)) },
		func(s string) ([]Pair, error) { return unmarshal[[]Pair](RepairJSON(StripFences(s))) },
		extractPairs,
	)
	if err != nil || pairs == nil {
		return []Pair{}, err
	}
	return pairs, nil
}

// extractPairs pulls question/answer fragments straight out of the raw text,
// recovering pairs whose quote boundaries are unambiguous even when the
// surrounding document is invalid as a whole.
func extractPairs(text string) ([]Pair, error) {
	matches := pairRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, errors.New("no question/answer fragments found")
	}
	pairs := make([]Pair, 0, len(matches))
	for _, m := range matches {
		pairs = append(pairs, Pair{
			Question: unescape(m[1]),
			Answer:   unescape(m[2]),
		})
	}
	return pairs, nil
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
