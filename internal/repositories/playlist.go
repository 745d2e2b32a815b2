package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.PersistedPlaylist] for playlist caching.
//
// Handles playlist CRUD operations with soft delete support and request-keyed lookups.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

const playlistColumns = "id, sequence, kind, argument, name, item_count, created_at, updated_at, deleted_at"

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	playlist.SetID(shared.GenerateID())
	playlist.SetSequence(sequence)

	query := `
		INSERT INTO playlists (id, sequence, kind, argument, name, item_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		playlist.ID(),
		sequence,
		string(playlist.Kind()),
		playlist.Argument(),
		playlist.Name(),
		playlist.ItemCount(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("playlist for %s %q is already cached: %w", playlist.Kind(), playlist.Argument(), err)
		}
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE id = ? AND deleted_at IS NULL"
	return scanPlaylist(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a playlist by its sequence number
func (r *PlaylistRepository) GetBySequence(sequence int) (*models.PersistedPlaylist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE sequence = ? AND deleted_at IS NULL"
	return scanPlaylist(r.db.QueryRow(query, sequence))
}

// GetByRequest retrieves the live playlist cached for req
func (r *PlaylistRepository) GetByRequest(req models.Request) (*models.PersistedPlaylist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE kind = ? AND argument = ? AND deleted_at IS NULL"
	return scanPlaylist(r.db.QueryRow(query, string(req.Kind), req.Argument()))
}

// Update modifies the name and item count of an existing playlist
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	query := `
		UPDATE playlists
		SET name = ?, item_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, playlist.Name(), playlist.ItemCount(), now, playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	return expectRow(result, shared.ErrPlaylistNotFound, playlist.ID())
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	return expectRow(result, shared.ErrPlaylistNotFound, id)
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists.
//
// Supported criteria: "kind" (string or [models.RequestKind]).
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE deleted_at IS NULL"
	args := []any{}

	switch kind := criteria["kind"].(type) {
	case string:
		if kind != "" {
			query += " AND kind = ?"
			args = append(args, kind)
		}
	case models.RequestKind:
		query += " AND kind = ?"
		args = append(args, string(kind))
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// scanPlaylist scans a single row into a [models.PersistedPlaylist]
func scanPlaylist(row scanner) (*models.PersistedPlaylist, error) {
	var (
		id        string
		sequence  int
		kind      string
		argument  string
		name      string
		itemCount int
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &kind, &argument, &name, &itemCount, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	return models.RestorePersistedPlaylist(
		id, sequence, models.RequestKind(kind), argument, name, itemCount, createdAt, updatedAt, deleted,
	), nil
}
