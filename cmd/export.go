package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/flow/internal/formatter"
	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
	"github.com/desertthunder/flow/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes one playlist to --dir in --format.
//
// The argument is a request reference ("mine", "popular:Rock", "artist:Queen") or, with --cached,
// the sequence number or ID of a cached playlist.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("ref")
	if ref == "" {
		return fmt.Errorf("%w: playlist reference", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var export *models.PlaylistExport
	if cmd.Bool("cached") {
		if err := r.ensureDatabase(); err != nil {
			return err
		}
		if _, export, err = r.cache.Find(ref); err != nil {
			return fmt.Errorf("failed to load cached playlist %s: %w", ref, err)
		}
	} else {
		req, err := services.ParseRequest(ref)
		if err != nil {
			return err
		}
		result, err := r.fetchPlaylist(ctx, req, fetchOpts(cmd))
		if err != nil {
			return err
		}
		export = result.Export
	}

	dir := cmd.String("dir")
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	files, err := formatter.WriteExport(export, format, dir)
	if err != nil {
		return err
	}
	r.logger.Info("playlist exported", "name", export.Name, "format", format, "tracks", len(export.Items))

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"name": export.Name, "tracks": len(export.Items), "files": files}, false)
	}

	r.writePlain("✓ Exported %s (%d tracks)\n", export.Name, len(export.Items))
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// PopularAll fetches the popular playlist of every (or each --genre) genre concurrently.
func (r *Runner) PopularAll(ctx context.Context, cmd *cli.Command) error {
	var format formatter.Format
	if name := cmd.String("format"); name != "" {
		f, err := formatter.ParseFormat(name)
		if err != nil {
			return err
		}
		format = f
	}

	opts := tasks.PopularAllOpts{
		Genres:     cmd.StringSlice("genre"),
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		Save:       cmd.Bool("save"),
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = r.config.VK.RateLimit
	}
	if opts.Format == "" && !opts.Save {
		return fmt.Errorf("%w: nothing to do, pass --format or --save", shared.ErrMissingArgument)
	}

	if opts.Save {
		if err := r.ensureDatabase(); err != nil {
			return err
		}
	}
	if err := r.authenticate(ctx); err != nil {
		return err
	}

	r.logger.Info("fetching popular playlists", "genres", len(opts.Genres), "workers", opts.NumWorkers, "format", opts.Format)

	progress, stop := r.trackProgress()
	result, err := r.engine.PopularAll(ctx, progress, opts)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Popular playlists")
	r.writePlain("Genres:        %d (%d ok, %d failed)\n", result.TotalGenres, result.Succeeded, result.Failed)
	r.writePlain("Tracks:        %d (%d unique)\n", result.TotalTracks, result.UniqueTracks)
	if result.OutputDirectory != "" {
		r.writePlain("Output:        %s\n", result.OutputDirectory)
	}
	if result.ManifestPath != "" {
		r.writePlain("Manifest:      %s\n", result.ManifestPath)
	}
	r.writePlain("\n")

	for _, res := range result.Results {
		switch {
		case !res.Success():
			r.writePlain("  ✗ %-20s %s\n", res.Genre, res.Message)
		case res.CacheSequence > 0:
			r.writePlain("  ✓ %-20s %4d tracks  #%d\n", res.Genre, res.Tracks, res.CacheSequence)
		default:
			r.writePlain("  ✓ %-20s %4d tracks\n", res.Genre, res.Tracks)
		}
	}
	return nil
}
