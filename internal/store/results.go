package store

import (
	"context"
	"fmt"
	"time"
)

// ExamResult is one solo-practice run submitted by a student
type ExamResult struct {
	StudentName string `json:"student_name"`
	ClassName   string `json:"class_name"`
	Score       int    `json:"score"`
	TotalTime   int    `json:"total_time"` // seconds
}

// LeaderboardEntry is a student's best result
type LeaderboardEntry struct {
	StudentName string    `json:"student_name"`
	ClassName   string    `json:"class_name"`
	Score       int       `json:"score"`
	TotalTime   int       `json:"total_time"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveResult archives a finished solo run
func (s *Store) SaveResult(ctx context.Context, r ExamResult) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO exam_results (student_name, class_name, score, total_time)
		VALUES ($1, $2, $3, $4)
	`, r.StudentName, r.ClassName, r.Score, r.TotalTime)
	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// Leaderboard returns each student's best result, highest score first and
// fastest time breaking ties.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT student_name, class_name, MAX(score) AS score, MIN(total_time) AS total_time, MAX(created_at) AS created_at
		FROM exam_results
		GROUP BY student_name, class_name
		ORDER BY score DESC, total_time ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.StudentName, &e.ClassName, &e.Score, &e.TotalTime, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
