package question

import (
	"time"

	"github.com/kyn-317/qna/internal/id"
)

// AdditionalQuestion is a follow-up question/answer pair attached to a
// question during the expand stage.
type AdditionalQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Question is the main domain entity for one interview question and its
// lifecycle (created → graded → expanded). Identity fields (ID, Category,
// ExpYears) are fixed at creation; model-generated fields are replaced by
// later stages.
type Question struct {
	ID                  string               `json:"id"`
	Question            string               `json:"question"`
	UserAnswer          *string              `json:"userAnswer,omitempty"`
	ModelAnswer         *string              `json:"modelAnswer,omitempty"`
	Category            string               `json:"category"`
	ExpYears            int                  `json:"expYears"`
	Score               *int                 `json:"score,omitempty"`
	AdditionalQuestions []AdditionalQuestion `json:"additionalQuestions"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// New creates a question with a fresh ID and creation timestamps.
func New(text, category string, expYears int) *Question {
	now := time.Now()
	return &Question{
		ID:                  id.GenerateID(),
		Question:            text,
		Category:            category,
		ExpYears:            expYears,
		AdditionalQuestions: []AdditionalQuestion{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// WithQuestion returns a copy with the question text replaced.
// A nil text leaves the original untouched.
func (q Question) WithQuestion(text *string) Question {
	if text != nil {
		q.Question = *text
	}
	return q
}

// WithUserAnswer returns a copy with the user answer replaced.
func (q Question) WithUserAnswer(answer string) Question {
	q.UserAnswer = &answer
	return q
}

// WithGrade returns a copy with score and model answer replaced.
// Nil values leave the corresponding original field untouched.
func (q Question) WithGrade(score *int, modelAnswer *string) Question {
	if score != nil {
		q.Score = score
	}
	if modelAnswer != nil {
		q.ModelAnswer = modelAnswer
	}
	return q
}

// WithAdditionalQuestions returns a copy with the follow-up list replaced
// wholesale. A nil slice becomes an empty list so callers never see nil.
func (q Question) WithAdditionalQuestions(aq []AdditionalQuestion) Question {
	if aq == nil {
		aq = []AdditionalQuestion{}
	}
	q.AdditionalQuestions = aq
	return q
}

// Touched returns a copy with UpdatedAt set to now.
func (q Question) Touched() Question {
	q.UpdatedAt = time.Now()
	return q
}

// SimplifiedQuestion is a condensed projection of a graded question, kept as
// compact history for future prompt construction. Created once, never mutated.
type SimplifiedQuestion struct {
	ID               string    `json:"id"`
	QuestionID       string    `json:"questionId"`
	Question         string    `json:"question"`
	SimplifiedDetail string    `json:"simplifiedDetail"`
	Category         string    `json:"category"`
	ExpYears         int       `json:"expYears"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewSimplified creates a condensed record derived from the given question.
func NewSimplified(q *Question, text, detail string) *SimplifiedQuestion {
	return &SimplifiedQuestion{
		ID:               id.GenerateID(),
		QuestionID:       q.ID,
		Question:         text,
		SimplifiedDetail: detail,
		Category:         q.Category,
		ExpYears:         q.ExpYears,
		CreatedAt:        time.Now(),
	}
}
