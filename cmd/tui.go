package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing cached listening data.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.manager == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingConfig)
	}

	token, err := r.accessToken(ctx)
	if err != nil {
		return err
	}
	if _, err := r.manager.Initialize(ctx, token); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/riff-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.manager)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
