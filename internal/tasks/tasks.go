// package tasks implements playlist operations on top of a music service.
//
// The core abstraction is Engine, which orchestrates playlist fetches, bulk genre exports, and comparisons.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
)

// PlaylistCacher persists fetched playlists. Implemented by repositories.PlaylistCacheAdapter.
type PlaylistCacher interface {
	SavePlaylist(export *models.PlaylistExport) (*models.PersistedPlaylist, error)
	LoadPlaylist(req models.Request) (*models.PlaylistExport, error)
}

// FetchOpts controls where [PlaylistEngine.Fetch] reads from and whether it stores the result.
type FetchOpts struct {
	Save    bool // store the fetched playlist in the cache
	Offline bool // read from the cache instead of the API
}

// FetchResult is the outcome of a single playlist fetch.
type FetchResult struct {
	Export    *models.PlaylistExport
	Cached    *models.PersistedPlaylist // set when the playlist was saved
	FromCache bool
}

// ComparisonResult contains track comparison details between two playlists.
type ComparisonResult struct {
	Source       *models.PlaylistExport // Source playlist
	Dest         *models.PlaylistExport // Destination playlist
	MatchedCount int                    // Tracks found in both
	Missing      models.Playlist        // Tracks in source but not in dest
	Extra        models.Playlist        // Tracks in dest but not in source
}

// Engine defines the playlist operations offered to the CLI and TUI.
type Engine interface {
	// Fetch retrieves one playlist, optionally caching it.
	Fetch(ctx context.Context, progress chan<- ProgressUpdate, req models.Request, opts FetchOpts) (*FetchResult, error)

	// PopularAll fetches popular playlists for many genres concurrently.
	PopularAll(ctx context.Context, progress chan<- ProgressUpdate, opts PopularAllOpts) (*PopularAllResult, error)

	// Compare fetches two playlists and reports which tracks they share.
	Compare(ctx context.Context, progress chan<- ProgressUpdate, source, dest models.Request) (*ComparisonResult, error)
}

// PlaylistEngine implements Engine with a [services.Service] and an optional [PlaylistCacher].
type PlaylistEngine struct {
	service services.Service
	cache   PlaylistCacher
}

// NewPlaylistEngine creates a new PlaylistEngine. cache may be nil, which disables saving and offline reads.
func NewPlaylistEngine(service services.Service, cache PlaylistCacher) *PlaylistEngine {
	return &PlaylistEngine{service: service, cache: cache}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Fetch retrieves the playlist described by req.
func (e *PlaylistEngine) Fetch(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	req models.Request,
	opts FetchOpts,
) (*FetchResult, error) {
	if opts.Offline {
		if e.cache == nil {
			return nil, fmt.Errorf("%w: playlist cache not configured", shared.ErrServiceUnavailable)
		}
		e.sendProgress(progress, loadCachedUpdate(req))
		export, err := e.cache.LoadPlaylist(req)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s from cache: %w", req.Name(), err)
		}
		e.sendProgress(progress, foundPlaylistUpdate(1, 1, export))
		return &FetchResult{Export: export, FromCache: true}, nil
	}

	if e.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchPlaylistUpdate(1, 1, req))
	export, err := e.service.Playlist(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", req.Name(), err)
	}
	e.sendProgress(progress, foundPlaylistUpdate(1, 1, export))

	result := &FetchResult{Export: export}
	if !opts.Save {
		return result, nil
	}

	if e.cache == nil {
		return result, fmt.Errorf("%w: playlist cache not configured", shared.ErrServiceUnavailable)
	}

	cached, err := e.cache.SavePlaylist(export)
	if err != nil {
		return result, fmt.Errorf("fetched %s but failed to cache it: %w", req.Name(), err)
	}
	result.Cached = cached
	e.sendProgress(progress, cachedPlaylistUpdate(1, 1, cached))

	return result, nil
}

// Compare fetches source and dest and matches their tracks by normalized title and artist.
func (e *PlaylistEngine) Compare(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	source, dest models.Request,
) (*ComparisonResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchPlaylistUpdate(1, 2, source))
	sourceExport, err := e.service.Playlist(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source playlist: %w", err)
	}

	e.sendProgress(progress, fetchPlaylistUpdate(2, 2, dest))
	destExport, err := e.service.Playlist(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch destination playlist: %w", err)
	}

	e.sendProgress(progress, compareUpdate(1, 1))
	return ComparePlaylists(sourceExport, destExport), nil
}

// ComparePlaylists matches the items of two exports by [shared.NormalizeTrackKey].
func ComparePlaylists(source, dest *models.PlaylistExport) *ComparisonResult {
	result := &ComparisonResult{
		Source:  source,
		Dest:    dest,
		Missing: models.Playlist{},
		Extra:   models.Playlist{},
	}

	destKeys := trackKeys(dest.Items)
	for _, item := range source.Items {
		if destKeys[shared.NormalizeTrackKey(item.Title, item.Artist)] {
			result.MatchedCount++
		} else {
			result.Missing = append(result.Missing, item)
		}
	}

	sourceKeys := trackKeys(source.Items)
	for _, item := range dest.Items {
		if !sourceKeys[shared.NormalizeTrackKey(item.Title, item.Artist)] {
			result.Extra = append(result.Extra, item)
		}
	}

	return result
}

func trackKeys(items models.Playlist) map[string]bool {
	keys := make(map[string]bool, len(items))
	for _, item := range items {
		keys[shared.NormalizeTrackKey(item.Title, item.Artist)] = true
	}
	return keys
}

// IsAuthError reports whether err means the stored session is no longer accepted.
func IsAuthError(err error) bool {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) && apiErr.AuthorizationFailed() {
		return true
	}
	return errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrTokenExpired)
}
