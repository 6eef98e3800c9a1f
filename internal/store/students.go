package store

import (
	"context"
	"fmt"
	"time"
)

// Student is one logged student session
type Student struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	ClassName string    `json:"class_name"`
	LoginTime time.Time `json:"login_time"`
}

// RecordLogin logs a student login
func (s *Store) RecordLogin(ctx context.Context, fullName, className string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO students (full_name, class_name) VALUES ($1, $2)
	`, fullName, className)
	if err != nil {
		return fmt.Errorf("recording login: %w", err)
	}
	return nil
}

// ListStudents returns recent student logins, newest first
func (s *Store) ListStudents(ctx context.Context, limit int) ([]Student, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, full_name, class_name, login_time
		FROM students ORDER BY login_time DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.FullName, &st.ClassName, &st.LoginTime); err != nil {
			return nil, fmt.Errorf("scanning student: %w", err)
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// DeleteStudent removes a student record
func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting student: %w", err)
	}
	return nil
}

// CountStudents returns the number of logged student sessions
func (s *Store) CountStudents(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting students: %w", err)
	}
	return count, nil
}
