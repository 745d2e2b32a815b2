// Package models defines domain entities and persistence interfaces for flow.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects: values decoded from the VK audio API
//   - [PlaylistItem] : one track record (artist, title, duration, url)
//   - [Playlist] : ordered sequence of items, rebuilt on every request
//   - [PlaylistExport] : a playlist with the [Request] that produced it
//   - [TokenSet] : tokens obtained from an OAuth redirect
//
// 2. Persistent Entities: database-backed models
//   - [Session] : a stored [TokenSet] with its issue time
//   - [PersistedPlaylist] : a cached playlist header keyed by request kind and argument
//
// Persistent entities implement [Model]; [Repository] defines the CRUD surface.
package models
