// package repositories persists flow's sessions and cached playlists in SQLite.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/flow/internal/models"
)

var (
	_ models.Repository[*models.Session]           = (*SessionRepository)(nil)
	_ models.Repository[*models.PersistedPlaylist] = (*PlaylistRepository)(nil)
)

// NextSequence increments the counter row of {table}_sequence and returns the new value.
//
// A single UPDATE ... RETURNING keeps the increment atomic without an explicit transaction.
// Sequence numbers are what `flow cache list` shows and what `flow cache show 3` accepts.
func NextSequence(db *sql.DB, table string) (int, error) {
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)

	var sequence int
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("sequence for %s is not initialized", table)
		}
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
