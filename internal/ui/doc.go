// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing audio playlists:
//  1. [SourceView] : Pick a playlist source (My audio, Suggested, Popular, Search, Artist)
//  2. [GenreView] : Pick a genre for popular playlists
//  3. [SearchView] : Enter search text
//  4. [LoadingView] : Follow progress updates while the playlist is fetched
//  5. [TrackView] : Browse tracks (artist, title, duration)
//  6. [DetailView] : Show one track's details
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.Engine], providing non-blocking status reporting during fetches.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
