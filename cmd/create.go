package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/desertthunder/setlistx/internal/tasks"
	"github.com/urfave/cli/v3"
)

var severityIcons = map[models.Severity]string{
	models.SeveritySuccess: "✓",
	models.SeverityInfo:    "ℹ",
	models.SeverityWarning: "⚠",
	models.SeverityDanger:  "✗",
}

// Create runs the setlist → playlist pipeline for one artist.
//
// Exits non-zero when the setlist source fails or the playlist could not be created.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	artist := strings.TrimSpace(cmd.StringArg("artist"))
	if artist == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	kind, err := models.ParseServiceKind(cmd.String("service"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	engine, err := r.pipeline(cmd)
	if err != nil {
		return err
	}
	r.refreshToken(ctx, kind)

	useJSON := cmd.Bool("json")
	quiet := useJSON || cmd.Bool("quiet")

	r.logger.Info("creating playlist", "artist", artist, "service", kind)
	if !quiet {
		r.writePlain("Creating %s playlist for %s\n\n", kind.DisplayName(), artist)
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if !quiet {
				r.printProgress(update)
			}
		}
	}()

	outcome, err := engine.Run(ctx, progress, tasks.Request{
		Artist:     artist,
		Service:    kind,
		Credential: r.credential(kind),
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	if useJSON {
		if err := r.writeJSON(outcome, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.printOutcome(outcome)
	}

	return outcomeError(outcome)
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchSetlist:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.ResolveTracks:
		if update.Step == 0 {
			r.writePlain("\n🔍 %s\n", update.Message)
		} else {
			r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	case tasks.Identify, tasks.CreatePlaylist, tasks.AddTracks:
		r.writePlain("\n📝 %s\n", update.Message)
	case tasks.Rollback:
		r.writePlain("\n🗑  %s\n", update.Message)
	}
}

// printOutcome renders the outcome as one message in its severity category, plus the playlist link.
func (r *Runner) printOutcome(outcome *models.Outcome) {
	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("%s %s", severityIcons[outcome.Severity()], strings.ToUpper(string(outcome.Severity()))))
	r.writePlain("%s\n", outcome.Summary())

	if outcome.URL != "" && outcome.Kind == models.OutcomeSuccess {
		r.writePlain("\nOpen Playlist on %s: %s\n", outcome.Service.DisplayName(), outcome.URL)
	}

	if outcome.Kind == models.OutcomeAuthRequired {
		r.writePlain("\nRun: setlistx auth %s\n", outcome.Service)
	}

	var missing []models.TrackMatch
	for _, m := range outcome.Matches {
		if !m.Found {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 && outcome.Kind == models.OutcomeSuccess {
		r.writePlain("\nNot found on %s (%d):\n", outcome.Service.DisplayName(), len(missing))
		for _, m := range missing {
			r.writePlain("  - %s\n", m.Title)
		}
	}
}

// outcomeError maps failure outcomes to an error so the process exits non-zero.
func outcomeError(outcome *models.Outcome) error {
	switch outcome.Kind {
	case models.OutcomeSourceError:
		return fmt.Errorf("%w: %s", shared.ErrSourceRequest, outcome.Message)
	case models.OutcomeCreateFailed:
		return fmt.Errorf("%w: %s", shared.ErrCreateFailed, outcome.Message)
	default:
		return nil
	}
}
