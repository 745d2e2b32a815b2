// Package repositories implements SQLite persistence for sessions and cached playlists.
//
// Key Implementations:
//   - [SessionRepository] : authorized token sets, newest first
//   - [PlaylistRepository] : cached playlist headers keyed by request kind and argument
//   - [TrackRepository] : ordered playlist items, replaced wholesale on every fetch
//   - [PlaylistCacheAdapter] : stores a fetched export through the repositories above
//
// Playlist headers are soft deleted via deleted_at and excluded from queries by default.
// Sequence numbers provide stable, human-readable ordering (e.g., playlist #15) independent of UUIDs.
// [NextSequence] hands out those numbers from a one-row {table}_sequence counter.
package repositories
