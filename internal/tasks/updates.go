package tasks

import (
	"fmt"

	"github.com/desertthunder/flow/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	LoadCached
	CachePlaylist
	Compare
	FetchGenres
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case LoadCached:
		return "load_cached"
	case CachePlaylist:
		return "cache_playlist"
	case Compare:
		return "compare"
	case FetchGenres:
		return "fetch_genres"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchPlaylistUpdate(step, total int, req models.Request) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s...", req.Name()),
		Data:    req,
	}
}

func loadCachedUpdate(req models.Request) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCached,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loading cached %s...", req.Name()),
		Data:    req,
	}
}

func foundPlaylistUpdate(step, total int, export *models.PlaylistExport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", export.Name, len(export.Items)),
		Data:    export,
	}
}

func cachedPlaylistUpdate(step, total int, pl *models.PersistedPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CachePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Cached playlist #%d: %s (%d tracks)", pl.Sequence(), pl.Name(), pl.ItemCount()),
		Data:    pl,
	}
}

func compareUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: "Comparing tracks...",
	}
}

func fetchGenresUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchGenres,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching popular playlists for %d genres...", total),
	}
}

func genreCompletedUpdate(step, total int, res GenreResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks, %d files)", step, total, res.Genre, res.Tracks, len(res.Files)),
		Data:    res,
	}
}

func genreFailedUpdate(step, total int, res GenreResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Genre, res.Error),
		Data:    res,
	}
}
