package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
)

// SessionRepository implements models.Repository[*models.Session] for stored authorizations.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, user_id, access_token, expires_in, issued_at, created_at"

// Create stores a session with a generated ID
func (r *SessionRepository) Create(session *models.Session) error {
	session.SetID(shared.GenerateID())

	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tokens := session.Tokens()
	_, err := r.db.Exec(
		"INSERT INTO sessions ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		session.ID(), tokens.UserID, tokens.AccessToken, tokens.ExpiresIn, session.IssuedAt(), session.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	row := r.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	return scanSession(row)
}

// Latest returns the most recently issued session, or [shared.ErrSessionNotFound].
func (r *SessionRepository) Latest() (*models.Session, error) {
	row := r.db.QueryRow("SELECT " + sessionColumns + " FROM sessions ORDER BY issued_at DESC, created_at DESC LIMIT 1")
	return scanSession(row)
}

// Update replaces the tokens and issue time of an existing session
func (r *SessionRepository) Update(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tokens := session.Tokens()
	result, err := r.db.Exec(
		"UPDATE sessions SET user_id = ?, access_token = ?, expires_in = ?, issued_at = ? WHERE id = ?",
		tokens.UserID, tokens.AccessToken, tokens.ExpiresIn, session.IssuedAt(), session.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return expectRow(result, shared.ErrSessionNotFound, session.ID())
}

// Delete removes a session. Sessions hold credentials, so they are deleted outright.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return expectRow(result, shared.ErrSessionNotFound, id)
}

// List returns sessions newest first, optionally filtered by "user_id".
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY issued_at DESC, created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		id        string
		tokens    models.TokenSet
		issuedAt  time.Time
		createdAt time.Time
	)

	err := row.Scan(&id, &tokens.UserID, &tokens.AccessToken, &tokens.ExpiresIn, &issuedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	return models.RestoreSession(id, tokens, issuedAt, createdAt), nil
}

func expectRow(result sql.Result, notFound error, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
