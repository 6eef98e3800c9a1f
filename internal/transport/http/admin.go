package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"goldenbell/internal/domain"
	"goldenbell/internal/store"
)

// AdminAuthRequest is the body for admin authentication
type AdminAuthRequest struct {
	Email string `json:"email"`
}

// AdminAuthResponse carries the bearer token for subsequent admin calls
type AdminAuthResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// AdminStatsResponse is the response for admin stats
type AdminStatsResponse struct {
	TotalStudents  int `json:"total_students"`
	TotalQuestions int `json:"total_questions"`
	ActiveRooms    int `json:"active_rooms"`
}

// CreateQuestionsRequest accepts a batch of questions, or a single one
type CreateQuestionsRequest struct {
	Questions []domain.Question `json:"questions"`
}

// SubmitChangeRequest queues a question edit for approval
type SubmitChangeRequest struct {
	QuestionID int64           `json:"question_id,omitempty"`
	Action     string          `json:"action"`
	Question   domain.Question `json:"question"`
}

// ApproveRequest resolves a pending change
type ApproveRequest struct {
	ChangeID int64  `json:"change_id"`
	Action   string `json:"action"` // "APPROVE" or "REJECT"
}

// requireAdmin wraps an admin handler with bearer-token auth. superOnly
// restricts the endpoint to super admins.
func (s *Server) requireAdmin(next http.HandlerFunc, superOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, ok := s.adminFromRequest(r)
		if !ok {
			s.sendError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Admin authentication required")
			return
		}
		if superOnly && admin.Role != store.RoleSuperAdmin {
			s.sendError(w, http.StatusForbidden, "FORBIDDEN", "Super admin role required")
			return
		}
		next(w, r)
	}
}

func (s *Server) adminFromRequest(r *http.Request) (store.Admin, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		return store.Admin{}, false
	}

	s.adminMu.RLock()
	defer s.adminMu.RUnlock()
	admin, ok := s.adminSessions[token]
	return admin, ok
}

// handleAdminAuth handles POST /api/admin/auth. First-time emails are
// registered as editors; the returned token authenticates later calls.
func (s *Server) handleAdminAuth(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	var req AdminAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Email is required")
		return
	}

	admin, err := s.db.GetOrCreateAdmin(r.Context(), req.Email)
	if err != nil {
		s.logger.Error("admin auth failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed")
		return
	}

	token := uuid.New().String()
	s.adminMu.Lock()
	s.adminSessions[token] = admin
	s.adminMu.Unlock()

	s.sendSuccess(w, &AdminAuthResponse{Token: token, Role: admin.Role})
}

// handleAdminLogout handles POST /api/admin/logout
func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.adminMu.Lock()
	delete(s.adminSessions, token)
	s.adminMu.Unlock()

	s.sendSuccess(w, map[string]string{"message": "logged out"})
}

// handleAdminStats handles GET /api/admin/stats
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	students, err := s.db.CountStudents(r.Context())
	if err != nil {
		s.logger.Error("counting students failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load stats")
		return
	}
	questions, err := s.db.CountQuestions(r.Context())
	if err != nil {
		s.logger.Error("counting questions failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load stats")
		return
	}

	s.sendSuccess(w, &AdminStatsResponse{
		TotalStudents:  students,
		TotalQuestions: questions,
		ActiveRooms:    s.hub.SessionCount(),
	})
}

// handleAdminCreateQuestions handles POST /api/admin/questions
func (s *Server) handleAdminCreateQuestions(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	var req CreateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Questions) == 0 {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "No questions provided")
		return
	}

	inserted, err := s.db.CreateQuestions(r.Context(), req.Questions)
	if err != nil {
		s.logger.Error("creating questions failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create questions")
		return
	}
	s.sendSuccess(w, map[string]int{"inserted": inserted})
}

// handleAdminUpdateQuestion handles PUT /api/admin/questions/{id}
func (s *Server) handleAdminUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid question id")
		return
	}

	var q domain.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid question body")
		return
	}

	if err := s.db.UpdateQuestion(r.Context(), id, q); err != nil {
		s.logger.Error("updating question failed", "id", id, "error", err)
		s.sendError(w, http.StatusNotFound, "NOT_FOUND", "Question not found")
		return
	}
	s.sendSuccess(w, map[string]string{"message": "question updated"})
}

// handleAdminDeleteQuestion handles DELETE /api/admin/questions/{id}
func (s *Server) handleAdminDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid question id")
		return
	}

	if err := s.db.DeleteQuestion(r.Context(), id); err != nil {
		s.logger.Error("deleting question failed", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete question")
		return
	}
	s.sendSuccess(w, map[string]string{"message": "question deleted"})
}

// handleAdminSubmitChange handles POST /api/admin/changes
func (s *Server) handleAdminSubmitChange(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	admin, _ := s.adminFromRequest(r)

	var req SubmitChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid change body")
		return
	}
	switch req.Action {
	case store.ActionCreate, store.ActionUpdate, store.ActionDelete:
	default:
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Unknown change action")
		return
	}

	id, err := s.db.SubmitChange(r.Context(), admin.ID, req.QuestionID, req.Action, req.Question)
	if err != nil {
		s.logger.Error("queueing change failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to queue change")
		return
	}
	s.sendSuccess(w, map[string]int64{"change_id": id})
}

// handleAdminPending handles GET /api/admin/pending
func (s *Server) handleAdminPending(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	changes, err := s.db.ListPendingChanges(r.Context())
	if err != nil {
		s.logger.Error("listing pending changes failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list pending changes")
		return
	}
	s.sendSuccess(w, changes)
}

// handleAdminApprove handles POST /api/admin/approve (super admin only)
func (s *Server) handleAdminApprove(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChangeID == 0 {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Missing change id")
		return
	}

	var err error
	switch req.Action {
	case "APPROVE":
		err = s.db.ApproveChange(r.Context(), req.ChangeID)
	case "REJECT":
		err = s.db.RejectChange(r.Context(), req.ChangeID)
	default:
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Action must be APPROVE or REJECT")
		return
	}

	if errors.Is(err, store.ErrChangeNotFound) {
		s.sendError(w, http.StatusNotFound, "NOT_FOUND", "Change not found")
		return
	}
	if err != nil {
		s.logger.Error("resolving change failed", "changeID", req.ChangeID, "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve change")
		return
	}
	s.sendSuccess(w, map[string]string{"message": "processed"})
}

// handleAdminUsers handles GET /api/admin/users
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	students, err := s.db.ListStudents(r.Context(), 100)
	if err != nil {
		s.logger.Error("listing students failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list students")
		return
	}
	s.sendSuccess(w, students)
}

// handleAdminDeleteUser handles DELETE /api/admin/users/{id}
func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid user id")
		return
	}

	if err := s.db.DeleteStudent(r.Context(), id); err != nil {
		s.logger.Error("deleting student failed", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user")
		return
	}
	s.sendSuccess(w, map[string]string{"message": "user deleted"})
}

// handleAdminRooms handles GET /api/admin/rooms
func (s *Server) handleAdminRooms(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, s.hub.ListRooms())
}

// handleAdminDeleteRoom handles DELETE /api/admin/rooms/{code}. Members are
// notified and any scheduled round dies with the room.
func (s *Server) handleAdminDeleteRoom(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if err := s.hub.DeleteRoom(code); err != nil {
		s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		return
	}
	s.sendSuccess(w, map[string]string{"message": "room closed"})
}
