package http

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"goldenbell/internal/app"
	"goldenbell/internal/config"
	"goldenbell/internal/domain"
	"goldenbell/internal/store"
	"goldenbell/internal/transport/ws"
)

// QuestionCatalog is the read side of the question supply used by the
// solo-practice API. Both the database store and the builtin set satisfy it.
type QuestionCatalog interface {
	FetchQuestions(ctx context.Context, category string, count int) ([]domain.Question, error)
	Categories(ctx context.Context) ([]string, error)
}

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	hub     *app.Hub
	catalog QuestionCatalog
	db      *store.Store // nil when running without a database
	config  *config.Config
	logger  *slog.Logger

	// Bearer-token sessions for the admin API
	adminMu       sync.RWMutex
	adminSessions map[string]store.Admin
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, hub *app.Hub, catalog QuestionCatalog, db *store.Store, logger *slog.Logger) *Server {
	s := &Server{
		hub:           hub,
		catalog:       catalog,
		db:            db,
		config:        cfg,
		logger:        logger,
		adminSessions: make(map[string]store.Admin),
	}

	// Set up routes
	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      s.middleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Public API
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/questions", s.handleQuestions)
	mux.HandleFunc("POST /api/login", s.handleStudentLogin)
	mux.HandleFunc("POST /api/submit", s.handleSubmitResult)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)

	// Admin API
	mux.HandleFunc("POST /api/admin/auth", s.handleAdminAuth)
	mux.HandleFunc("POST /api/admin/logout", s.requireAdmin(s.handleAdminLogout, false))
	mux.HandleFunc("GET /api/admin/stats", s.requireAdmin(s.handleAdminStats, false))
	mux.HandleFunc("POST /api/admin/questions", s.requireAdmin(s.handleAdminCreateQuestions, false))
	mux.HandleFunc("PUT /api/admin/questions/{id}", s.requireAdmin(s.handleAdminUpdateQuestion, false))
	mux.HandleFunc("DELETE /api/admin/questions/{id}", s.requireAdmin(s.handleAdminDeleteQuestion, false))
	mux.HandleFunc("POST /api/admin/changes", s.requireAdmin(s.handleAdminSubmitChange, false))
	mux.HandleFunc("GET /api/admin/pending", s.requireAdmin(s.handleAdminPending, false))
	mux.HandleFunc("POST /api/admin/approve", s.requireAdmin(s.handleAdminApprove, true))
	mux.HandleFunc("GET /api/admin/users", s.requireAdmin(s.handleAdminUsers, false))
	mux.HandleFunc("DELETE /api/admin/users/{id}", s.requireAdmin(s.handleAdminDeleteUser, false))
	mux.HandleFunc("GET /api/admin/rooms", s.requireAdmin(s.handleAdminRooms, false))
	mux.HandleFunc("DELETE /api/admin/rooms/{code}", s.requireAdmin(s.handleAdminDeleteRoom, false))

	// WebSocket
	wsHandler := ws.NewHandler(s.hub, s.logger)
	mux.Handle("GET /ws", wsHandler)
}

// middleware wraps the handler with logging and CORS
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket support
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
