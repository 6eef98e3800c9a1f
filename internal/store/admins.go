package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"goldenbell/internal/domain"
)

// Admin roles
const (
	RoleEditor     = "editor"
	RoleSuperAdmin = "super_admin"
)

// Change actions and statuses for the moderation workflow
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// ErrChangeNotFound is returned when a pending change does not exist
var ErrChangeNotFound = errors.New("pending change not found")

// Admin is a question-bank moderator
type Admin struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// PendingChange is a queued question edit awaiting super-admin approval
type PendingChange struct {
	ID         int64     `json:"id"`
	AdminID    int64     `json:"admin_id"`
	AdminEmail string    `json:"admin_email"`
	QuestionID int64     `json:"question_id,omitempty"`
	ActionType string    `json:"action_type"`
	NewContent string    `json:"new_content_json"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// GetOrCreateAdmin looks an admin up by email, registering first-time users
// as editors.
func (s *Store) GetOrCreateAdmin(ctx context.Context, email string) (Admin, error) {
	var admin Admin
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, email, role FROM admins WHERE email = $1
	`, email).Scan(&admin.ID, &admin.Email, &admin.Role)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Admin{}, fmt.Errorf("looking up admin: %w", err)
	}

	err = s.conn.QueryRowContext(ctx, `
		INSERT INTO admins (email, role) VALUES ($1, $2) RETURNING id
	`, email, RoleEditor).Scan(&admin.ID)
	if err != nil {
		return Admin{}, fmt.Errorf("registering admin: %w", err)
	}
	admin.Email = email
	admin.Role = RoleEditor
	return admin, nil
}

// SubmitChange queues a question edit for approval. questionID is 0 for
// CREATE actions.
func (s *Store) SubmitChange(ctx context.Context, adminID int64, questionID int64, action string, q domain.Question) (int64, error) {
	content, err := json.Marshal(q)
	if err != nil {
		return 0, fmt.Errorf("encoding change: %w", err)
	}

	var id int64
	err = s.conn.QueryRowContext(ctx, `
		INSERT INTO pending_changes (admin_id, question_id, action_type, new_content_json)
		VALUES ($1, NULLIF($2, 0), $3, $4) RETURNING id
	`, adminID, questionID, action, string(content)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("queueing change: %w", err)
	}
	return id, nil
}

// ListPendingChanges returns all changes awaiting approval, newest first
func (s *Store) ListPendingChanges(ctx context.Context) ([]PendingChange, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT p.id, p.admin_id, a.email, COALESCE(p.question_id, 0), p.action_type, p.new_content_json, p.status, p.created_at
		FROM pending_changes p
		JOIN admins a ON p.admin_id = a.id
		WHERE p.status = $1
		ORDER BY p.created_at DESC
	`, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("listing pending changes: %w", err)
	}
	defer rows.Close()

	var changes []PendingChange
	for rows.Next() {
		var c PendingChange
		if err := rows.Scan(&c.ID, &c.AdminID, &c.AdminEmail, &c.QuestionID, &c.ActionType, &c.NewContent, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pending change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// RejectChange marks a pending change as rejected
func (s *Store) RejectChange(ctx context.Context, changeID int64) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE pending_changes SET status = $1 WHERE id = $2 AND status = $3
	`, StatusRejected, changeID, StatusPending)
	if err != nil {
		return fmt.Errorf("rejecting change: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrChangeNotFound
	}
	return nil
}

// ApproveChange applies a pending change to the question bank and marks it
// approved, all in one transaction.
func (s *Store) ApproveChange(ctx context.Context, changeID int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	var c PendingChange
	err = tx.QueryRowContext(ctx, `
		SELECT id, COALESCE(question_id, 0), action_type, new_content_json
		FROM pending_changes WHERE id = $1 AND status = $2
	`, changeID, StatusPending).Scan(&c.ID, &c.QuestionID, &c.ActionType, &c.NewContent)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrChangeNotFound
	}
	if err != nil {
		return fmt.Errorf("loading change: %w", err)
	}

	var q domain.Question
	if err := json.Unmarshal([]byte(c.NewContent), &q); err != nil {
		return fmt.Errorf("decoding change payload: %w", err)
	}

	switch c.ActionType {
	case ActionCreate:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO questions (category, content, options, answer, type)
			VALUES ($1, $2, $3, $4, $5)
		`, q.Category, q.Prompt, q.Options, q.Answer, q.Type)
	case ActionUpdate:
		_, err = tx.ExecContext(ctx, `
			UPDATE questions SET category = $1, content = $2, options = $3, answer = $4, type = $5
			WHERE id = $6
		`, q.Category, q.Prompt, q.Options, q.Answer, q.Type, c.QuestionID)
	case ActionDelete:
		_, err = tx.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, c.QuestionID)
	default:
		return fmt.Errorf("unknown change action %q", c.ActionType)
	}
	if err != nil {
		return fmt.Errorf("applying change: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE pending_changes SET status = $1 WHERE id = $2
	`, StatusApproved, changeID); err != nil {
		return fmt.Errorf("marking change approved: %w", err)
	}

	return tx.Commit()
}
