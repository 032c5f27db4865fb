// Package prompts holds the prompt templates sent to the generation backend.
// Templates are plain text with {name} placeholders substituted by literal
// replacement; a placeholder missing from a template is simply left alone.
package prompts

import (
	_ "embed"
	"strings"
)

//go:embed creation.txt
var Creation string

//go:embed grading.txt
var Grading string

//go:embed expansion.txt
var Expansion string

//go:embed summary.txt
var Summary string

//go:embed evaluation.txt
var Evaluation string

//go:embed session_question.txt
var SessionQuestion string

//go:embed category_single.txt
var CategorySingle string

//go:embed category_all.txt
var CategoryAll string

// Render substitutes each {key} in tmpl with its value.
func Render(tmpl string, vars map[string]string) string {
	for k, v := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	return tmpl
}
