package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/riff/internal/formatter"
	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/urfave/cli/v3"
)

// Roast generates a persona-voiced roast of the user's listening habits from
// cached data. Generation failures fall back to a canned line rather than
// failing the command.
func (r *Runner) Roast(ctx context.Context, cmd *cli.Command) error {
	persona := cmd.String("persona")
	severity := cmd.String("severity")

	if !slices.Contains(services.Personas(), persona) {
		return fmt.Errorf("%w: unknown persona %q (available: %s)",
			shared.ErrInvalidInput, persona, strings.Join(services.Personas(), ", "))
	}
	if !services.ValidSeverity(severity) {
		return fmt.Errorf("%w: unknown severity %q (available: gentle, funny, harsh)",
			shared.ErrInvalidInput, severity)
	}

	if _, err := r.ensureData(ctx); err != nil {
		return err
	}

	material, err := r.manager.RoastingMaterial()
	if err != nil {
		return err
	}

	if r.roaster == nil {
		return fmt.Errorf("%w: roaster api_key not configured", shared.ErrMissingConfig)
	}

	text, err := r.roaster.Roast(ctx, material, persona, severity)
	if err != nil {
		r.logger.Warn("roast generation failed, using fallback", "err", err)
		text = services.FallbackRoast()
	}

	_, err = r.output.Write(formatter.RoastToText(persona, severity, text))
	return err
}
