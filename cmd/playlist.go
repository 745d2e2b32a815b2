package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/flow/internal/formatter"
	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
	"github.com/desertthunder/flow/internal/tasks"
	"github.com/urfave/cli/v3"
)

// requestFrom builds the request for kind from the command's flags and arguments.
func requestFrom(kind models.RequestKind, cmd *cli.Command) (models.Request, error) {
	req := models.Request{Kind: kind}

	switch kind {
	case models.KindPopular:
		name := cmd.String("genre")
		if name == "" {
			return req, fmt.Errorf("%w: --genre flag is required (see 'flow genres')", shared.ErrMissingArgument)
		}
		req.Genre = name
	case models.KindSearch:
		query := strings.TrimSpace(cmd.StringArg("query"))
		if query == "" {
			return req, fmt.Errorf("%w: search text", shared.ErrMissingArgument)
		}
		req.Query = query
		req.ArtistOnly = cmd.Bool("artist")
	}

	return services.CanonicalRequest(req)
}

func fetchOpts(cmd *cli.Command) tasks.FetchOpts {
	return tasks.FetchOpts{Save: cmd.Bool("cache"), Offline: cmd.Bool("offline")}
}

// fetchPlaylist runs one engine fetch, authenticating or opening the cache as opts require.
//
// A playlist that was fetched but could not be cached is returned along with a logged warning.
func (r *Runner) fetchPlaylist(ctx context.Context, req models.Request, opts tasks.FetchOpts) (*tasks.FetchResult, error) {
	if opts.Save || opts.Offline {
		if err := r.ensureDatabase(); err != nil {
			return nil, err
		}
	}
	if !opts.Offline {
		if err := r.authenticate(ctx); err != nil {
			return nil, err
		}
	}

	logger := shared.WithLogger(r.logger, "request", req.Name())

	progress, stop := r.trackProgress()
	result, err := r.engine.Fetch(ctx, progress, req, opts)
	stop()

	if err != nil {
		if result != nil && result.Export != nil {
			logger.Warn("playlist fetched but not cached", "error", err)
			return result, nil
		}
		if tasks.IsAuthError(err) {
			return nil, fmt.Errorf("%w (run 'flow auth login' to authorize again)", err)
		}
		return nil, err
	}

	if result.Export.Dropped > 0 {
		logger.Debug("dropped incomplete entries", "dropped", result.Export.Dropped)
	}
	return result, nil
}

// Playlist returns the action that fetches and prints the playlist of kind.
func (r *Runner) Playlist(kind models.RequestKind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		req, err := requestFrom(kind, cmd)
		if err != nil {
			return err
		}

		r.logger.Info("fetching playlist", "request", req.Name())

		result, err := r.fetchPlaylist(ctx, req, fetchOpts(cmd))
		if err != nil {
			return err
		}
		return r.printPlaylist(result, cmd)
	}
}

func (r *Runner) printPlaylist(result *tasks.FetchResult, cmd *cli.Command) error {
	export := result.Export

	if cmd.Bool("json") {
		return r.writeJSON(export, cmd.Bool("pretty"))
	}

	if name := cmd.String("format"); name != "" {
		format, err := formatter.ParseFormat(name)
		if err != nil {
			return err
		}
		data, err := formatter.Render(export, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	r.writePlainHeader(export.Name)
	r.writePlain("Tracks: %d", len(export.Items))
	if export.Dropped > 0 {
		r.writePlain(" (%d incomplete skipped)", export.Dropped)
	}
	r.writePlain("\nDuration: %s\n", shared.FormatDuration(export.Items.TotalSeconds()))
	switch {
	case result.FromCache:
		r.writePlain("Source: cache (%s)\n", export.FetchedAt.Format("2006-01-02 15:04"))
	case result.Cached != nil:
		r.writePlain("✓ Cached as #%d\n", result.Cached.Sequence())
	}
	r.writePlain("\n")

	items := export.Items
	if limit := int(cmd.Int("limit")); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	for i, item := range items {
		r.writePlain("%3d. %s - %s [%s]\n", i+1, item.Artist, item.Title, shared.FormatDuration(item.Seconds()))
	}
	if len(items) < len(export.Items) {
		r.writePlain("     … %d more\n", len(export.Items)-len(items))
	}
	return nil
}

// Genres lists the genres accepted by 'flow playlist popular'.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	genres := r.service.Genres()
	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}

	for _, g := range genres {
		r.writePlain("%-20s %d\n", g.Name, g.ID)
	}
	return nil
}

// Diff compares two playlists given as references ("mine", "popular:Rock", "search:text").
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	source, err := services.ParseRequest(cmd.StringArg("source"))
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	dest, err := services.ParseRequest(cmd.StringArg("dest"))
	if err != nil {
		return fmt.Errorf("dest: %w", err)
	}

	var result *tasks.ComparisonResult
	if cmd.Bool("offline") {
		opts := tasks.FetchOpts{Offline: true}
		src, err := r.fetchPlaylist(ctx, source, opts)
		if err != nil {
			return err
		}
		dst, err := r.fetchPlaylist(ctx, dest, opts)
		if err != nil {
			return err
		}
		result = tasks.ComparePlaylists(src.Export, dst.Export)
	} else {
		if err := r.authenticate(ctx); err != nil {
			return err
		}
		progress, stop := r.trackProgress()
		result, err = r.engine.Compare(ctx, progress, source, dest)
		stop()
		if err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"source":  result.Source.Name,
			"dest":    result.Dest.Name,
			"matched": result.MatchedCount,
			"missing": result.Missing,
			"extra":   result.Extra,
		}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s → %s", result.Source.Name, result.Dest.Name))
	r.writePlain("Source tracks: %d\n", len(result.Source.Items))
	r.writePlain("Dest tracks:   %d\n", len(result.Dest.Items))
	r.writePlain("Matched:       %d\n", result.MatchedCount)

	if len(result.Missing) > 0 {
		r.writePlainln("Missing from %s (%d):", result.Dest.Name, len(result.Missing))
		for _, item := range result.Missing {
			r.writePlain("  • %s - %s\n", item.Artist, item.Title)
		}
	}
	if len(result.Extra) > 0 {
		r.writePlainln("Only in %s (%d):", result.Dest.Name, len(result.Extra))
		for _, item := range result.Extra {
			r.writePlain("  • %s - %s\n", item.Artist, item.Title)
		}
	}
	return nil
}
