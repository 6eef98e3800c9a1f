package store

import (
	"context"
	"database/sql"
	"fmt"

	"goldenbell/internal/domain"
)

// FetchQuestions returns up to count random questions, optionally filtered by
// category. Implements the battle engine's question supply.
func (s *Store) FetchQuestions(ctx context.Context, category string, count int) ([]domain.Question, error) {
	var rows *sql.Rows
	var err error

	if category != "" {
		rows, err = s.conn.QueryContext(ctx, `
			SELECT id, category, content, options, answer, type
			FROM questions WHERE category = $1
			ORDER BY random() LIMIT $2
		`, category, count)
	} else {
		rows, err = s.conn.QueryContext(ctx, `
			SELECT id, category, content, options, answer, type
			FROM questions
			ORDER BY random() LIMIT $1
		`, count)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// ListQuestions returns questions for review, newest first. A limit of 0
// means no limit.
func (s *Store) ListQuestions(ctx context.Context, category string, limit int) ([]domain.Question, error) {
	query := `
		SELECT id, category, content, options, answer, type
		FROM questions
	`
	args := []any{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// Categories returns the distinct question categories
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT DISTINCT category FROM questions ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateQuestions inserts a batch of questions and returns how many were added
func (s *Store) CreateQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, q := range questions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO questions (category, content, options, answer, type)
			VALUES ($1, $2, $3, $4, $5)
		`, q.Category, q.Prompt, q.Options, q.Answer, q.Type); err != nil {
			return 0, fmt.Errorf("inserting question: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return inserted, nil
}

// UpdateQuestion replaces a question's fields
func (s *Store) UpdateQuestion(ctx context.Context, id int64, q domain.Question) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE questions SET category = $1, content = $2, options = $3, answer = $4, type = $5
		WHERE id = $6
	`, q.Category, q.Prompt, q.Options, q.Answer, q.Type, id)
	if err != nil {
		return fmt.Errorf("updating question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteQuestion removes a question
func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting question: %w", err)
	}
	return nil
}

// CountQuestions returns the size of the question bank
func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting questions: %w", err)
	}
	return count, nil
}

func scanQuestions(rows *sql.Rows) ([]domain.Question, error) {
	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Category, &q.Prompt, &q.Options, &q.Answer, &q.Type); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
