package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/flow/internal/models"
)

// TrackRepository stores the ordered items of cached playlists.
//
// Items have no identity of their own: a playlist's items are always replaced as a whole,
// matching how a playlist is rebuilt on every request.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// ReplaceItems deletes the stored items of playlistID and inserts items in order, in one transaction.
//
// Incomplete items are skipped. Returns the number of items written.
func (r *TrackRepository) ReplaceItems(playlistID string, items models.Playlist) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM playlist_items WHERE playlist_id = ?", playlistID); err != nil {
		return 0, fmt.Errorf("failed to clear playlist items: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO playlist_items (playlist_id, position, artist, title, duration, url)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, item := range items {
		if !item.Complete() {
			continue
		}
		if _, err := stmt.Exec(playlistID, written, item.Artist, item.Title, item.Duration, item.URL); err != nil {
			return 0, fmt.Errorf("failed to insert playlist item %d: %w", written, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit playlist items: %w", err)
	}

	return written, nil
}

// Items returns the stored items of playlistID in position order
func (r *TrackRepository) Items(playlistID string) (models.Playlist, error) {
	rows, err := r.db.Query(`
		SELECT artist, title, duration, url
		FROM playlist_items
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist items: %w", err)
	}
	defer rows.Close()

	items := models.Playlist{}
	for rows.Next() {
		var item models.PlaylistItem
		if err := rows.Scan(&item.Artist, &item.Title, &item.Duration, &item.URL); err != nil {
			return nil, fmt.Errorf("failed to scan playlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// Count returns the number of stored items of playlistID
func (r *TrackRepository) Count(playlistID string) (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM playlist_items WHERE playlist_id = ?", playlistID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count playlist items: %w", err)
	}
	return n, nil
}
