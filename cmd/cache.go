package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/flow/internal/shared"
	"github.com/desertthunder/flow/internal/tasks"
	"github.com/urfave/cli/v3"
)

type cachedPlaylist struct {
	Sequence int    `json:"sequence"`
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Argument string `json:"argument,omitempty"`
	Name     string `json:"name"`
	Tracks   int    `json:"tracks"`
	Updated  string `json:"updated_at"`
}

// CacheList lists cached playlists in sequence order.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	playlists, err := r.cache.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]cachedPlaylist, len(playlists))
		for i, p := range playlists {
			out[i] = cachedPlaylist{
				Sequence: p.Sequence(),
				ID:       p.ID(),
				Kind:     string(p.Kind()),
				Argument: p.Argument(),
				Name:     p.Name(),
				Tracks:   p.ItemCount(),
				Updated:  p.UpdatedAt().Format(time.RFC3339),
			}
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No cached playlists. Use --cache with 'flow playlist' to store one.\n")
	}

	r.writePlain("Found %d cached playlists:\n\n", len(playlists))
	for _, p := range playlists {
		r.writePlain("#%-4d %-30s %5d tracks  %s\n", p.Sequence(), p.Name(), p.ItemCount(), p.UpdatedAt().Format("2006-01-02 15:04"))
	}
	return nil
}

// CacheShow prints a cached playlist referenced by sequence number or ID.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("ref")
	if ref == "" {
		return fmt.Errorf("%w: sequence number or id", shared.ErrMissingArgument)
	}
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	_, export, err := r.cache.Find(ref)
	if err != nil {
		return err
	}
	return r.printPlaylist(&tasks.FetchResult{Export: export, FromCache: true}, cmd)
}

// CacheDelete removes a cached playlist.
func (r *Runner) CacheDelete(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("ref")
	if ref == "" {
		return fmt.Errorf("%w: sequence number or id", shared.ErrMissingArgument)
	}
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	deleted, err := r.cache.Delete(ref)
	if err != nil {
		return err
	}
	r.logger.Info("cached playlist deleted", "id", deleted.ID(), "name", deleted.Name())
	return r.writePlain("✓ Deleted #%d %s\n", deleted.Sequence(), deleted.Name())
}
