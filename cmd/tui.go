package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flow/internal/shared"
	"github.com/desertthunder/flow/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing playlists.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	opts := fetchOpts(cmd)

	if opts.Save || opts.Offline {
		if err := r.ensureDatabase(); err != nil {
			return err
		}
	}
	if !opts.Offline {
		if err := r.authenticate(ctx); err != nil {
			return err
		}
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.engine, r.service.Genres(), fileLogger, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
