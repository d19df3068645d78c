package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/riff/internal/cache"
	"github.com/desertthunder/riff/internal/formatter"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/tasks"
	"github.com/urfave/cli/v3"
)

// DataInit ensures usable listening data exists, fetching from Spotify only
// when the cache is empty or stale.
func (r *Runner) DataInit(ctx context.Context, cmd *cli.Command) error {
	result, err := r.ensureData(ctx)
	if err != nil {
		return err
	}

	if result.Err != nil && !result.Success {
		return fmt.Errorf("data initialization failed: %w", result.Err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Data, cmd.Bool("pretty"))
	}

	if result.FromCache {
		r.writePlain("✓ Using cached data\n")
	} else {
		r.writePlain("✓ Fetched fresh data from Spotify\n")
	}
	if result.Err != nil {
		r.writePlain("⚠ Some slices failed: %v\n", result.Err)
	}

	status := r.manager.Status()
	r.writePlain("  %d tracks, %d artists, %d genres\n", status.TotalTracks, status.TotalArtists, status.GenreCount)

	return nil
}

// DataRefresh forces a full fetch cycle regardless of cache freshness,
// streaming per-slice progress to the terminal.
func (r *Runner) DataRefresh(ctx context.Context, cmd *cli.Command) error {
	if r.manager == nil || r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingConfig)
	}

	token, err := r.accessToken(ctx)
	if err != nil {
		return err
	}
	if err := r.spotify.Authenticate(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	progress := make(chan tasks.ProgressUpdate)
	done := make(chan *cache.Result, 1)

	go func() {
		done <- r.manager.ForceRefresh(ctx, progress)
		close(progress)
	}()

	for update := range progress {
		switch update.Phase {
		case tasks.SliceFailed:
			r.writePlain("✗ %s\n", update.Message)
		case tasks.SliceDone:
			r.writePlain("✓ %s\n", update.Message)
		default:
			r.writePlain("→ %s\n", update.Message)
		}
	}

	result := <-done
	if !result.Success {
		return fmt.Errorf("refresh failed: %w", result.Err)
	}

	if result.Err != nil {
		r.writePlain("⚠ Refresh completed with partial failures: %v\n", result.Err)
	} else {
		r.writePlainln("✓ Refresh complete")
	}
	return nil
}

// DataStatus reports cache age, freshness, and headline counts.
func (r *Runner) DataStatus(ctx context.Context, cmd *cli.Command) error {
	if r.manager == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingConfig)
	}

	status := r.manager.Status()

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	r.writePlainHeader("Cache Status")
	if !status.HasData {
		r.writePlain("No cached data. Run 'riff data init' to fetch.\n")
		return nil
	}

	freshness := "stale"
	if status.IsFresh {
		freshness = "fresh"
	}
	r.writePlain("Last updated: %s (%s)\n", status.LastUpdated.Format("2006-01-02 15:04:05"), freshness)
	r.writePlain("Age:          %dm\n", status.AgeMS/60000)
	r.writePlain("Tracks:       %d\n", status.TotalTracks)
	r.writePlain("Artists:      %d\n", status.TotalArtists)
	r.writePlain("Genres:       %d\n", status.GenreCount)

	return nil
}

// DataShow prints the cached bundle or one of its projections.
func (r *Runner) DataShow(ctx context.Context, cmd *cli.Command) error {
	if r.manager == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingConfig)
	}

	format := cache.Format(cmd.String("format"))
	data, err := r.manager.Read(format)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}

	switch format {
	case cache.FormatSummary:
		summary, err := r.manager.Summary()
		if err != nil {
			return err
		}
		_, err = r.output.Write(formatter.SummaryToText(summary))
		return err
	case cache.FormatFull:
		bundle, err := r.manager.Bundle()
		if err != nil {
			return err
		}
		report, err := formatter.ToMarkdown(bundle)
		if err != nil {
			return err
		}
		_, err = r.output.Write(report)
		return err
	default:
		return r.writeJSON(data, cmd.Bool("pretty"))
	}
}

// DataExport writes the cached bundle to CSV and Markdown files.
func (r *Runner) DataExport(ctx context.Context, cmd *cli.Command) error {
	if r.manager == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingConfig)
	}

	bundle, err := r.manager.Bundle()
	if err != nil {
		return err
	}

	result, err := formatter.WriteExport(bundle, cmd.String("output"))
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlain("✓ Wrote %s\n", result.TracksFile)
	r.writePlain("✓ Wrote %s\n", result.ReportFile)
	return nil
}

// DataClear deletes all cached listening data.
func (r *Runner) DataClear(ctx context.Context, cmd *cli.Command) error {
	if r.manager == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingConfig)
	}

	if err := r.manager.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return r.writePlain("✓ Cache cleared\n")
}
