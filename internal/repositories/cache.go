package repositories

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
)

// PlaylistCacheAdapter implements tasks.PlaylistCacher using [PlaylistRepository] and [TrackRepository].
//
// A request has at most one cached playlist; saving it again rewrites the header and every item.
type PlaylistCacheAdapter struct {
	playlists *PlaylistRepository
	tracks    *TrackRepository
}

// NewPlaylistCacheAdapter creates a new PlaylistCacheAdapter with the given repositories
func NewPlaylistCacheAdapter(playlists *PlaylistRepository, tracks *TrackRepository) *PlaylistCacheAdapter {
	return &PlaylistCacheAdapter{playlists: playlists, tracks: tracks}
}

// SavePlaylist stores export, creating the header on first save and replacing its items.
func (a *PlaylistCacheAdapter) SavePlaylist(export *models.PlaylistExport) (*models.PersistedPlaylist, error) {
	playlist, err := a.playlists.GetByRequest(export.Request)
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		playlist = models.NewPersistedPlaylist(export.Request, export.Name, len(export.Items))
		if err := a.playlists.Create(playlist); err != nil {
			return nil, fmt.Errorf("failed to cache playlist: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up cached playlist: %w", err)
	}

	written, err := a.tracks.ReplaceItems(playlist.ID(), export.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to cache playlist items: %w", err)
	}

	playlist.SetItemCount(written)
	if err := a.playlists.Update(playlist); err != nil {
		return nil, fmt.Errorf("failed to update cached playlist: %w", err)
	}

	return playlist, nil
}

// LoadPlaylist returns the cached export for req, or [shared.ErrPlaylistNotFound].
func (a *PlaylistCacheAdapter) LoadPlaylist(req models.Request) (*models.PlaylistExport, error) {
	playlist, err := a.playlists.GetByRequest(req)
	if err != nil {
		return nil, err
	}
	return a.export(playlist, req)
}

// Find resolves a cached playlist by sequence number or ID and returns it with its items.
func (a *PlaylistCacheAdapter) Find(ref string) (*models.PersistedPlaylist, *models.PlaylistExport, error) {
	var (
		playlist *models.PersistedPlaylist
		err      error
	)
	if n, convErr := strconv.Atoi(ref); convErr == nil {
		playlist, err = a.playlists.GetBySequence(n)
	} else {
		playlist, err = a.playlists.Get(ref)
	}
	if err != nil {
		return nil, nil, err
	}

	export, err := a.export(playlist, playlist.Request())
	if err != nil {
		return nil, nil, err
	}
	return playlist, export, nil
}

// Delete removes the cached playlist referenced by sequence number or ID. Its items are kept until the
// request is cached again.
func (a *PlaylistCacheAdapter) Delete(ref string) (*models.PersistedPlaylist, error) {
	var (
		playlist *models.PersistedPlaylist
		err      error
	)
	if n, convErr := strconv.Atoi(ref); convErr == nil {
		playlist, err = a.playlists.GetBySequence(n)
	} else {
		playlist, err = a.playlists.Get(ref)
	}
	if err != nil {
		return nil, err
	}
	if err := a.playlists.Delete(playlist.ID()); err != nil {
		return nil, err
	}
	return playlist, nil
}

// List returns the headers of every cached playlist in sequence order.
func (a *PlaylistCacheAdapter) List() ([]*models.PersistedPlaylist, error) {
	return a.playlists.List(nil)
}

func (a *PlaylistCacheAdapter) export(playlist *models.PersistedPlaylist, req models.Request) (*models.PlaylistExport, error) {
	items, err := a.tracks.Items(playlist.ID())
	if err != nil {
		return nil, err
	}
	return &models.PlaylistExport{
		Request:   req,
		Name:      playlist.Name(),
		Items:     items,
		FetchedAt: playlist.UpdatedAt(),
	}, nil
}
