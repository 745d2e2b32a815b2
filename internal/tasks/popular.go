package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/flow/internal/formatter"
	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
	"golang.org/x/time/rate"
)

// PopularAllOpts contains configuration for fetching popular playlists across genres.
type PopularAllOpts struct {
	Genres     []string         // Genre display names (default: every genre)
	Format     formatter.Format // Export format; empty writes no files
	OutputDir  string           // Base output directory (default: flow_popular_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max 8)
	RateLimit  float64          // Requests per second (default: 3)
	Save       bool             // Store every fetched playlist in the cache
}

// GenreResult is the outcome for one genre.
type GenreResult struct {
	Genre         string                 `json:"genre"`
	GenreID       int                    `json:"genre_id"`
	Tracks        int                    `json:"tracks"`
	Files         []string               `json:"files,omitempty"`
	CacheSequence int                    `json:"cache_sequence,omitempty"`
	Message       string                 `json:"error,omitempty"`
	Error         error                  `json:"-"`
	Export        *models.PlaylistExport `json:"-"`
}

// Success reports whether the genre was fetched (and written, when files were requested).
func (r GenreResult) Success() bool {
	return r.Error == nil
}

// PopularAllResult summarizes a [PlaylistEngine.PopularAll] run; it doubles as the export manifest.
type PopularAllResult struct {
	TotalGenres     int           `json:"total_genres"`
	Succeeded       int           `json:"succeeded"`
	Failed          int           `json:"failed"`
	TotalTracks     int           `json:"total_tracks"`
	UniqueTracks    int           `json:"unique_tracks"`
	OutputDirectory string        `json:"output_directory,omitempty"`
	ManifestPath    string        `json:"-"`
	Results         []GenreResult `json:"results"`
}

// PopularAll fetches the popular playlist of every requested genre concurrently with rate limiting and progress tracking.
//
// Uses a worker pool bounded by NumWorkers that shares one rate limiter. Partial failures are
// recorded per genre and do not stop the run. Cache writes happen on the calling goroutine so the
// database sees one writer. When a format is set, each playlist is written to OutputDir along with
// a manifest summarizing the run.
func (e *PlaylistEngine) PopularAll(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	opts PopularAllOpts,
) (*PopularAllResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	genres, err := resolveGenres(opts.Genres)
	if err != nil {
		return nil, err
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 3.0
	}
	if opts.Save && e.cache == nil {
		return nil, fmt.Errorf("%w: playlist cache not configured", shared.ErrServiceUnavailable)
	}

	result := &PopularAllResult{
		TotalGenres: len(genres),
		Results:     make([]GenreResult, 0, len(genres)),
	}

	if opts.Format != "" {
		if opts.OutputDir == "" {
			opts.OutputDir = fmt.Sprintf("flow_popular_%d", time.Now().Unix())
		}
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		result.OutputDirectory = opts.OutputDir
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan services.Genre, len(genres))
	results := make(chan GenreResult, len(genres))

	for _, g := range genres {
		jobs <- g
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.genreWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	e.sendProgress(prog, fetchGenresUpdate(len(genres)))

	seen := make(map[string]bool)
	completed := 0
	for res := range results {
		completed++

		if res.Success() && opts.Save {
			cached, err := e.cache.SavePlaylist(res.Export)
			if err != nil {
				res.Error = fmt.Errorf("failed to cache playlist: %w", err)
			} else {
				res.CacheSequence = cached.Sequence()
			}
		}

		if res.Success() {
			result.Succeeded++
			result.TotalTracks += res.Tracks
			for _, item := range res.Export.Items {
				seen[shared.NormalizeTrackKey(item.Title, item.Artist)] = true
			}
			e.sendProgress(prog, genreCompletedUpdate(completed, len(genres), res))
		} else {
			result.Failed++
			res.Message = res.Error.Error()
			e.sendProgress(prog, genreFailedUpdate(completed, len(genres), res))
		}

		result.Results = append(result.Results, res)
	}
	result.UniqueTracks = len(seen)

	order := make(map[string]int, len(genres))
	for i, g := range genres {
		order[g.Name] = i
	}
	slices.SortFunc(result.Results, func(a, b GenreResult) int {
		return order[a.Genre] - order[b.Genre]
	})

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("popular playlists interrupted: %w", err)
	}

	if result.OutputDirectory != "" {
		manifestPath := filepath.Join(result.OutputDirectory, "export_manifest.json")
		if err := formatter.WriteManifest(result, manifestPath); err != nil {
			return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
		}
		result.ManifestPath = manifestPath
	}

	return result, nil
}

// genreWorker fetches (and optionally writes) the popular playlist of each genre from the jobs channel.
func (e *PlaylistEngine) genreWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan services.Genre,
	results chan<- GenreResult,
	opts PopularAllOpts,
) {
	defer wg.Done()

	for genre := range jobs {
		res := GenreResult{Genre: genre.Name, GenreID: genre.ID}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = fmt.Errorf("%w: %v", shared.ErrTimeout, err)
			results <- res
			continue
		}

		export, err := e.service.Playlist(ctx, models.Request{Kind: models.KindPopular, Genre: genre.Name})
		if err != nil {
			res.Error = err
			results <- res
			continue
		}
		res.Export = export
		res.Tracks = len(export.Items)

		if opts.Format != "" {
			files, err := formatter.WriteExport(export, opts.Format, opts.OutputDir)
			if err != nil {
				res.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
			}
			res.Files = files
		}

		results <- res
	}
}

// resolveGenres validates names against the genre list, defaulting to every genre. Duplicates are dropped.
func resolveGenres(names []string) ([]services.Genre, error) {
	if len(names) == 0 {
		return services.Genres(), nil
	}

	genres := make([]services.Genre, 0, len(names))
	seen := make(map[int]bool)
	for _, name := range names {
		g, err := services.LookupGenre(name)
		if err != nil {
			return nil, err
		}
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		genres = append(genres, g)
	}
	return genres, nil
}
