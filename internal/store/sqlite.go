package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kyn-317/qna/internal/domain/category"
	"github.com/kyn-317/qna/internal/domain/evaluation"
	"github.com/kyn-317/qna/internal/domain/question"
)

const schema = `
CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    user_answer TEXT,
    model_answer TEXT,
    category TEXT NOT NULL,
    exp_years INTEGER NOT NULL,
    score INTEGER,
    additional_questions TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category);

CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS simplified_questions (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL,
    question TEXT NOT NULL,
    simplified_detail TEXT NOT NULL,
    category TEXT NOT NULL,
    exp_years INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (question_id) REFERENCES questions(id)
);

CREATE INDEX IF NOT EXISTS idx_simplified_category ON simplified_questions(category);

CREATE TABLE IF NOT EXISTS answers (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL,
    text TEXT NOT NULL,
    answered_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (question_id) REFERENCES questions(id)
);

CREATE TABLE IF NOT EXISTS evaluations (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL,
    answer_id TEXT NOT NULL,
    score REAL NOT NULL,
    feedback TEXT NOT NULL,
    exemplary_answer TEXT NOT NULL,
    evaluated_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (question_id) REFERENCES questions(id),
    FOREIGN KEY (answer_id) REFERENCES answers(id)
);

CREATE TABLE IF NOT EXISTS qa_summaries (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL,
    question_hash TEXT NOT NULL,
    category TEXT NOT NULL,
    exp_years INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_lookup ON qa_summaries(question_hash, category, exp_years);
`

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check: *SQLiteStore satisfies the Repository interface.
var _ Repository = (*SQLiteStore)(nil)

// NewSQLite opens (creating if needed) the database at dbPath and ensures
// the schema exists. WAL mode keeps concurrent request handling from
// stacking up on SQLITE_BUSY.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Questions
// ============================================================================

func (s *SQLiteStore) SaveQuestion(ctx context.Context, q *question.Question) error {
	aq, err := json.Marshal(q.AdditionalQuestions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (id, question, user_answer, model_answer, category, exp_years, score, additional_questions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Question, q.UserAnswer, q.ModelAnswer, q.Category, q.ExpYears, q.Score,
		string(aq), q.CreatedAt.Unix(), q.UpdatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) UpdateQuestion(ctx context.Context, q *question.Question) error {
	aq, err := json.Marshal(q.AdditionalQuestions)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE questions
		SET question = ?, user_answer = ?, model_answer = ?, score = ?, additional_questions = ?, updated_at = ?
		WHERE id = ?`,
		q.Question, q.UserAnswer, q.ModelAnswer, q.Score, string(aq), q.UpdatedAt.Unix(), q.ID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetQuestion(ctx context.Context, id string) (*question.Question, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, question, user_answer, model_answer, category, exp_years, score, additional_questions, created_at, updated_at
		FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return q, err
}

func (s *SQLiteStore) ListQuestions(ctx context.Context) ([]*question.Question, error) {
	return s.queryQuestions(ctx, `
		SELECT id, question, user_answer, model_answer, category, exp_years, score, additional_questions, created_at, updated_at
		FROM questions ORDER BY created_at`)
}

func (s *SQLiteStore) ListQuestionsByCategory(ctx context.Context, category string) ([]*question.Question, error) {
	return s.queryQuestions(ctx, `
		SELECT id, question, user_answer, model_answer, category, exp_years, score, additional_questions, created_at, updated_at
		FROM questions WHERE category = ? ORDER BY created_at`, category)
}

func (s *SQLiteStore) CountQuestionsByCategory(ctx context.Context, category string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions WHERE category = ?", category).Scan(&count)
	return count, err
}

func (s *SQLiteStore) queryQuestions(ctx context.Context, query string, args ...any) ([]*question.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*question.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*question.Question, error) {
	var (
		q          question.Question
		userAnswer sql.NullString
		modelAns   sql.NullString
		score      sql.NullInt64
		aqJSON     string
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(&q.ID, &q.Question, &userAnswer, &modelAns, &q.Category, &q.ExpYears, &score, &aqJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if userAnswer.Valid {
		q.UserAnswer = &userAnswer.String
	}
	if modelAns.Valid {
		q.ModelAnswer = &modelAns.String
	}
	if score.Valid {
		v := int(score.Int64)
		q.Score = &v
	}
	if err := json.Unmarshal([]byte(aqJSON), &q.AdditionalQuestions); err != nil {
		return nil, err
	}
	if q.AdditionalQuestions == nil {
		q.AdditionalQuestions = []question.AdditionalQuestion{}
	}
	q.CreatedAt = time.Unix(createdAt, 0)
	q.UpdatedAt = time.Unix(updatedAt, 0)
	return &q, nil
}

// ============================================================================
// Categories
// ============================================================================

func (s *SQLiteStore) SaveCategory(ctx context.Context, c *category.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.CreatedAt.Unix(), c.UpdatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) GetCategoryByName(ctx context.Context, name string) (*category.Category, error) {
	var (
		c         category.Category
		createdAt int64
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Description, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return &c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*category.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*category.Category
	for rows.Next() {
		var (
			c         category.Category
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		c.UpdatedAt = time.Unix(updatedAt, 0)
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, c *category.Category) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET description = ?, updated_at = ? WHERE name = ?`,
		c.Description, c.UpdatedAt.Unix(), c.Name,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================================
// Condensed history
// ============================================================================

func (s *SQLiteStore) SaveSimplified(ctx context.Context, sq *question.SimplifiedQuestion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO simplified_questions (id, question_id, question, simplified_detail, category, exp_years, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sq.ID, sq.QuestionID, sq.Question, sq.SimplifiedDetail, sq.Category, sq.ExpYears, sq.CreatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) ListSimplifiedByCategory(ctx context.Context, category string) ([]*question.SimplifiedQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, question, simplified_detail, category, exp_years, created_at
		FROM simplified_questions WHERE category = ? ORDER BY created_at`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var simplified []*question.SimplifiedQuestion
	for rows.Next() {
		var (
			sq        question.SimplifiedQuestion
			createdAt int64
		)
		if err := rows.Scan(&sq.ID, &sq.QuestionID, &sq.Question, &sq.SimplifiedDetail, &sq.Category, &sq.ExpYears, &createdAt); err != nil {
			return nil, err
		}
		sq.CreatedAt = time.Unix(createdAt, 0)
		simplified = append(simplified, &sq)
	}
	return simplified, rows.Err()
}

// ============================================================================
// Answers and evaluations
// ============================================================================

func (s *SQLiteStore) SaveAnswer(ctx context.Context, a *evaluation.Answer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (id, question_id, text, answered_by, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.QuestionID, a.Text, a.AnsweredBy, a.CreatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) GetAnswer(ctx context.Context, id string) (*evaluation.Answer, error) {
	var (
		a         evaluation.Answer
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, text, answered_by, created_at FROM answers WHERE id = ?`, id).
		Scan(&a.ID, &a.QuestionID, &a.Text, &a.AnsweredBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.CreatedAt = time.Unix(createdAt, 0)
	return &a, nil
}

func (s *SQLiteStore) SaveEvaluation(ctx context.Context, e *evaluation.Evaluation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, question_id, answer_id, score, feedback, exemplary_answer, evaluated_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.QuestionID, e.AnswerID, e.Score, e.Feedback, e.ExemplaryAnswer, e.EvaluatedBy, e.CreatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) GetEvaluation(ctx context.Context, id string) (*evaluation.Evaluation, error) {
	var (
		e         evaluation.Evaluation
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, answer_id, score, feedback, exemplary_answer, evaluated_by, created_at
		FROM evaluations WHERE id = ?`, id).
		Scan(&e.ID, &e.QuestionID, &e.AnswerID, &e.Score, &e.Feedback, &e.ExemplaryAnswer, &e.EvaluatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.CreatedAt = time.Unix(createdAt, 0)
	return &e, nil
}

// ============================================================================
// Duplicate-detection summaries
// ============================================================================

func (s *SQLiteStore) SaveSummary(ctx context.Context, sum *Summary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO qa_summaries (id, question_id, question_hash, category, exp_years, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.QuestionID, sum.QuestionHash, sum.Category, sum.ExpYears, sum.CreatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) SummaryExists(ctx context.Context, hash, category string, expYears int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM qa_summaries WHERE question_hash = ? AND category = ? AND exp_years = ?`,
		hash, category, expYears).Scan(&count)
	return count > 0, err
}
