package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setlist fetches the latest setlist and prints or writes it in the requested format.
func (r *Runner) Setlist(ctx context.Context, cmd *cli.Command) error {
	artist := strings.TrimSpace(cmd.StringArg("artist"))
	if artist == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	source, err := r.setlistSource()
	if err != nil {
		return err
	}

	r.logger.Info("fetching setlist", "artist", artist)
	sl, err := source.FetchLatest(ctx, artist)
	if errors.Is(err, shared.ErrSetlistNotFound) {
		return r.writePlain("⚠ No recent setlist found for %s.\n", artist)
	}
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" || cmd.Bool("save") {
		written, err := formatter.WriteExport(sl, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("setlist exported", "path", written, "songs", len(sl.Songs))
		return r.writePlain("✓ %s exported to %s (%d songs)\n", formatter.Title(sl), written, len(sl.Songs))
	}

	data, err := formatter.Export(sl, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		return r.writePlain("\n")
	}
	return nil
}
