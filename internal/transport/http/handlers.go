package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"goldenbell/internal/store"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for the public stats endpoint
type StatsResponse struct {
	ActiveRooms  int `json:"active_rooms"`
	TotalPlayers int `json:"total_players"`
}

// LoginRequest is the body for student login
type LoginRequest struct {
	Name  string `json:"name"`
	Group string `json:"group"` // class name
}

// SubmitResultRequest is the body for archiving a solo run
type SubmitResultRequest struct {
	Name      string `json:"name"`
	Group     string `json:"group"`
	Score     int    `json:"score"`
	TimeSpent int    `json:"time_spent"`
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveRooms:  s.hub.SessionCount(),
		TotalPlayers: s.hub.TotalPlayerCount(),
	})
}

// handleCategories handles GET /api/categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.logger.Error("listing categories failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list categories")
		return
	}
	s.sendSuccess(w, categories)
}

// handleQuestions handles GET /api/questions for solo practice and review.
// mode=review returns the full bank (database only); otherwise a shuffled
// practice set is drawn.
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	mode := r.URL.Query().Get("mode")

	if mode == "review" && s.db != nil {
		questions, err := s.db.ListQuestions(r.Context(), category, 0)
		if err != nil {
			s.logger.Error("listing questions failed", "error", err)
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list questions")
			return
		}
		s.sendSuccess(w, questions)
		return
	}

	questions, err := s.catalog.FetchQuestions(r.Context(), category, 20)
	if err != nil {
		s.logger.Error("fetching questions failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch questions")
		return
	}
	s.sendSuccess(w, questions)
}

// handleStudentLogin handles POST /api/login
func (s *Server) handleStudentLogin(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Group == "" {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Missing name or class")
		return
	}

	if err := s.db.RecordLogin(r.Context(), req.Name, req.Group); err != nil {
		s.logger.Error("recording login failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record login")
		return
	}
	s.sendSuccess(w, map[string]string{"message": "login recorded"})
}

// handleSubmitResult handles POST /api/submit
func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	var req SubmitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Group == "" {
		s.sendError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Missing name or class")
		return
	}

	result := store.ExamResult{
		StudentName: req.Name,
		ClassName:   req.Group,
		Score:       req.Score,
		TotalTime:   req.TimeSpent,
	}
	if err := s.db.SaveResult(r.Context(), result); err != nil {
		s.logger.Error("saving result failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save result")
		return
	}
	s.sendSuccess(w, map[string]string{"message": "result saved"})
}

// handleLeaderboard handles GET /api/leaderboard
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatabase(w) {
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := s.db.Leaderboard(r.Context(), limit)
	if err != nil {
		s.logger.Error("querying leaderboard failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to query leaderboard")
		return
	}
	s.sendSuccess(w, entries)
}

// requireDatabase rejects persistence endpoints when no database is configured
func (s *Server) requireDatabase(w http.ResponseWriter) bool {
	if s.db == nil {
		s.sendError(w, http.StatusServiceUnavailable, "NO_DATABASE", "Database not configured")
		return false
	}
	return true
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
