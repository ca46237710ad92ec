package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rafamp34/soundstream/internal/shared"
)

// Session is a persisted login, one row per backend kind. The startup probe
// loads it to restore the prior session without re-prompting for credentials.
type Session struct {
	ID           string
	Backend      string
	Token        string
	RefreshToken string
	UserID       string
	Email        string
	UpdatedAt    time.Time
}

// Store persists sessions in the local SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an open database. The sessions schema is
// applied by shared.RunMigrations during setup.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save upserts the session for its backend kind.
func (s *Store) Save(sess Session) error {
	if sess.Backend == "" {
		return fmt.Errorf("%w: session backend is required", shared.ErrInvalidInput)
	}
	if sess.ID == "" {
		sess.ID = shared.GenerateID()
	}

	query := `
		INSERT INTO sessions (id, backend, token, refresh_token, user_id, email, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(backend) DO UPDATE SET
			token = excluded.token,
			refresh_token = excluded.refresh_token,
			user_id = excluded.user_id,
			email = excluded.email,
			updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query,
		sess.ID, sess.Backend, sess.Token, sess.RefreshToken, sess.UserID, sess.Email, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the stored session for a backend kind, or nil when none exists.
func (s *Store) Load(backend string) (*Session, error) {
	query := `
		SELECT id, backend, token, refresh_token, user_id, email, updated_at
		FROM sessions
		WHERE backend = ?
	`

	var sess Session
	err := s.db.QueryRow(query, backend).Scan(
		&sess.ID, &sess.Backend, &sess.Token, &sess.RefreshToken, &sess.UserID, &sess.Email, &sess.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &sess, nil
}

// Clear removes the stored session for a backend kind.
func (s *Store) Clear(backend string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE backend = ?", backend); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
