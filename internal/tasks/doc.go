// Package tasks orchestrates playlist operations with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines three operations:
//
//  1. [Engine.Fetch] : Fetch one playlist
//     - Requests the playlist from the music service, or the cache when offline
//     - Optionally stores it through a [PlaylistCacher]
//
//  2. [Engine.PopularAll] : Popular playlists for many genres
//     - Worker pool sharing one rate limiter
//     - Writes each playlist in the chosen format plus an export manifest
//     - Counts unique tracks across genres
//
//  3. [Engine.Compare] : Compare two playlists
//     - Matches tracks via normalized title/artist
//     - Reports matched count, missing tracks, and extra tracks
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [PlaylistEngine] implements [Engine] with dependencies on:
//   - [services.Service] : the VK audio API client
//   - [PlaylistCacher] : Optional persistence layer (repositories.PlaylistCacheAdapter)
package tasks
