package evaluation

import (
	"time"

	"github.com/kyn-317/qna/internal/id"
)

// Score values produced from the model's qualitative verdict.
// ScoreUnrecognized marks an answer that needs human review rather than
// failing the request.
const (
	ScoreCorrect          = 1.0
	ScorePartiallyCorrect = 0.5
	ScoreIncorrect        = 0.0
	ScoreUnrecognized     = -1.0
)

// Answer is a candidate's submitted answer to a question.
type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	Text       string    `json:"text"`
	AnsweredBy string    `json:"answeredBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewAnswer creates an answer record for the given question.
func NewAnswer(questionID, text, answeredBy string) *Answer {
	return &Answer{
		ID:         id.GenerateID(),
		QuestionID: questionID,
		Text:       text,
		AnsweredBy: answeredBy,
		CreatedAt:  time.Now(),
	}
}

// Evaluation is the model's assessment of one answer. Immutable once created.
type Evaluation struct {
	ID              string    `json:"id"`
	QuestionID      string    `json:"questionId"`
	AnswerID        string    `json:"answerId"`
	Score           float64   `json:"score"`
	Feedback        string    `json:"feedback"`
	ExemplaryAnswer string    `json:"exemplaryAnswer"`
	EvaluatedBy     string    `json:"evaluatedBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

// New creates an evaluation record.
func New(questionID, answerID string, score float64, feedback, exemplary, evaluatedBy string) *Evaluation {
	return &Evaluation{
		ID:              id.GenerateID(),
		QuestionID:      questionID,
		AnswerID:        answerID,
		Score:           score,
		Feedback:        feedback,
		ExemplaryAnswer: exemplary,
		EvaluatedBy:     evaluatedBy,
		CreatedAt:       time.Now(),
	}
}
