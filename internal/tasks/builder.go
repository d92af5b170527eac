package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/services"
	"github.com/desertthunder/setlistx/internal/shared"
)

const (
	setlistDateLayout = "02-01-2006"
	isoDateLayout     = "2006-01-02"
)

// PlaylistName returns "<artist> Setlist - <date>".
func PlaylistName(kind models.ServiceKind, artist, date string) string {
	return fmt.Sprintf("%s Setlist - %s", artist, playlistDate(kind, date))
}

// PlaylistDescription describes the concert a playlist was built from, dated like [PlaylistName].
func PlaylistDescription(kind models.ServiceKind, sl *models.Setlist) string {
	desc := fmt.Sprintf("Concert setlist performed by %s on %s", sl.DisplayArtist(), playlistDate(kind, sl.EventDate))
	if sl.VenueName != "" {
		desc += " at " + sl.VenueName
	}
	return desc
}

// playlistDate formats an event date for kind. YouTube uses ISO dates;
// dates that do not parse are kept as given.
func playlistDate(kind models.ServiceKind, date string) string {
	if kind == models.YouTube {
		if t, err := time.Parse(setlistDateLayout, date); err == nil {
			return t.Format(isoDateLayout)
		}
	}
	return date
}

// BuilderOptions configures a [Builder].
type BuilderOptions struct {
	RollbackEmpty bool // delete the playlist when nothing could be added
	Logger        *log.Logger
}

// Builder creates a playlist and populates it in two non-atomic phases.
type Builder struct {
	rollbackEmpty bool
	logger        *log.Logger
}

// NewBuilder creates a [Builder].
func NewBuilder(opts BuilderOptions) *Builder {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Builder{rollbackEmpty: opts.RollbackEmpty, logger: opts.Logger}
}

// Build creates the playlist container, then adds every found match in match order.
//
// A create failure stops the build. An add phase that attaches nothing reports
// [models.NoTracksResolved]; the container is kept unless rollback is enabled.
func (b *Builder) Build(ctx context.Context, svc services.Service, owner string, spec services.PlaylistSpec, matches []models.TrackMatch, cred models.Credential, progress chan<- ProgressUpdate) models.PlaylistResult {
	result := models.PlaylistResult{RequestedCount: len(matches)}

	sendProgress(progress, createPlaylistUpdate(spec.Name))
	created, err := svc.CreatePlaylist(ctx, owner, spec, cred)
	if err != nil {
		result.FailureReason = models.CreateFailed
		if errors.Is(err, shared.ErrAuthRequired) {
			result.FailureReason = models.AuthRequired
		}
		result.Message = err.Error()
		b.logger.Error("create playlist failed", "service", svc.Kind(), "error", err)
		return result
	}

	result.PlaylistID = created.ID
	result.URL = created.URL
	sendProgress(progress, playlistCreatedUpdate(created.ID, created.URL))

	ids := models.FoundIDs(matches)
	sendProgress(progress, addTracksUpdate(0, len(ids)))
	added, err := svc.AddItems(ctx, created.ID, ids, cred)
	if err != nil {
		b.logger.Warn("add tracks incomplete", "service", svc.Kind(), "playlist", created.ID, "added", added, "error", err)
		result.Message = err.Error()
	}
	added = max(0, min(added, len(ids)))
	result.AddedCount = added
	sendProgress(progress, addTracksUpdate(added, len(ids)))

	if added == 0 {
		result.FailureReason = models.NoTracksResolved
		if b.rollbackEmpty {
			result.RolledBack = b.rollback(ctx, svc, created.ID, cred, progress)
		}
		return result
	}

	result.Success = true
	return result
}

// rollback deletes an empty playlist. Failures are logged, never escalated.
func (b *Builder) rollback(ctx context.Context, svc services.Service, id string, cred models.Credential, progress chan<- ProgressUpdate) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shared.DefaultTimeout)
	defer cancel()

	err := svc.DeletePlaylist(ctx, id, cred)
	sendProgress(progress, rollbackUpdate(id, err))
	if err != nil {
		b.logger.Warn("rollback failed", "service", svc.Kind(), "playlist", id, "error", err)
		return false
	}
	b.logger.Info("rolled back empty playlist", "service", svc.Kind(), "playlist", id)
	return true
}
