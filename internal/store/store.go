package store

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the PostgreSQL-backed question bank and result archive. Room state
// never touches it; it only serves the question supply and the CRUD surface.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Connect opens and pings the database
func Connect(dsn string, logger *slog.Logger) (*Store, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{conn: conn, logger: logger}, nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping checks database connectivity
func (s *Store) Ping() error {
	return s.conn.Ping()
}

// Migrate applies the embedded schema migrations in file order
func (s *Store) Migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		s.logger.Info("applied migration", "file", entry.Name())
	}
	return nil
}
