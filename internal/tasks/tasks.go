// package tasks implements the setlist-to-playlist pipeline.
//
// The core abstraction is Pipeline, which fetches a setlist, resolves its songs on a service, and builds a playlist.
// Runs emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/services"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/desertthunder/setlistx/internal/shared"
)

// Request is one pipeline invocation.
type Request struct {
	Artist     string
	Service    models.ServiceKind
	Credential models.Credential
}

// Pipeline runs setlist-to-playlist requests.
type Pipeline interface {
	// Run fetches the artist's latest setlist, resolves its songs on the requested service, and creates a playlist.
	//
	// Every expected failure is reported as an [models.Outcome]; the error is non-nil only when ctx is done
	// or the engine is missing a dependency.
	Run(ctx context.Context, progress chan<- ProgressUpdate, req Request) (*models.Outcome, error)
}

// EngineOptions configures a [PlaylistEngine].
type EngineOptions struct {
	Concurrency   int
	RateLimit     float64
	RollbackEmpty bool
	Public        bool
	Logger        *log.Logger
}

// PlaylistEngine implements [Pipeline].
//
// It keeps no state between runs; the credential is passed per request and never stored.
type PlaylistEngine struct {
	source   setlist.Fetcher
	services map[models.ServiceKind]services.Service
	resolver *Resolver
	builder  *Builder
	public   bool
	logger   *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided source and services.
func NewPlaylistEngine(source setlist.Fetcher, svcs []services.Service, opts EngineOptions) *PlaylistEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	byKind := make(map[models.ServiceKind]services.Service, len(svcs))
	for _, svc := range svcs {
		if svc != nil {
			byKind[svc.Kind()] = svc
		}
	}

	return &PlaylistEngine{
		source:   source,
		services: byKind,
		resolver: NewResolver(ResolverOptions{Concurrency: opts.Concurrency, RateLimit: opts.RateLimit, Logger: opts.Logger}),
		builder:  NewBuilder(BuilderOptions{RollbackEmpty: opts.RollbackEmpty, Logger: opts.Logger}),
		public:   opts.Public,
		logger:   opts.Logger,
	}
}

// Run performs one setlist → playlist request.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, req Request) (*models.Outcome, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: setlist source not initialized", shared.ErrServiceUnavailable)
	}
	svc, ok := e.services[req.Service]
	if !ok {
		return nil, fmt.Errorf("%w: %s service not initialized", shared.ErrServiceUnavailable, req.Service)
	}

	artist := shared.CollapseSpaces(req.Artist)
	if artist == "" {
		return nil, fmt.Errorf("%w: artist name is empty", shared.ErrInvalidInput)
	}

	logger := e.logger.With("run", shared.GenerateID(), "service", req.Service)
	outcome := &models.Outcome{Service: req.Service}

	logger.Info("fetching setlist", "artist", artist)
	sendProgress(progress, fetchSetlistUpdate(artist))
	sl, err := e.source.FetchLatest(ctx, artist)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, shared.ErrSetlistNotFound) {
			outcome.Kind = models.OutcomeNoSetlist
		} else {
			outcome.Kind = models.OutcomeSourceError
			outcome.Message = err.Error()
		}
		logger.Warn("setlist unavailable", "artist", artist, "outcome", outcome.Kind, "error", err)
		return e.finish(progress, outcome), nil
	}

	outcome.Setlist = sl
	outcome.RequestedCount = len(sl.Songs)
	sendProgress(progress, foundSetlistUpdate(sl))

	if !req.Credential.Usable() {
		outcome.Kind = models.OutcomeAuthRequired
		logger.Info("no usable credential for service", "expired", req.Credential.Expired())
		return e.finish(progress, outcome), nil
	}

	sendProgress(progress, identifyUpdate(svc.Name()))
	owner, err := svc.Identify(ctx, req.Credential)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		outcome.Kind = models.OutcomeCreateFailed
		if errors.Is(err, shared.ErrAuthRequired) {
			outcome.Kind = models.OutcomeAuthRequired
		}
		outcome.Message = err.Error()
		logger.Warn("identify failed", "error", err)
		return e.finish(progress, outcome), nil
	}

	logger.Info("resolving tracks", "songs", len(sl.Songs))
	matches := e.resolver.Resolve(ctx, svc, sl.Songs, sl.DisplayArtist(), req.Credential, progress)
	outcome.Matches = matches
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("building playlist", "owner", owner, "found", len(models.FoundIDs(matches)))
	spec := services.PlaylistSpec{
		Name:        PlaylistName(req.Service, sl.DisplayArtist(), sl.EventDate),
		Description: PlaylistDescription(req.Service, sl),
		Public:      e.public,
	}
	result := e.builder.Build(ctx, svc, owner, spec, matches, req.Credential, progress)
	if result.FailureReason == models.CreateFailed {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}

	applyResult(outcome, result)
	logger.Info("run finished", "outcome", outcome.Kind, "added", outcome.AddedCount, "requested", outcome.RequestedCount)
	return e.finish(progress, outcome), nil
}

func (e *PlaylistEngine) finish(progress chan<- ProgressUpdate, outcome *models.Outcome) *models.Outcome {
	sendProgress(progress, completeUpdate(outcome))
	return outcome
}

// applyResult folds a builder result into the outcome.
func applyResult(outcome *models.Outcome, result models.PlaylistResult) {
	outcome.URL = result.URL
	outcome.PlaylistID = result.PlaylistID
	outcome.AddedCount = result.AddedCount
	outcome.RequestedCount = result.RequestedCount
	outcome.RolledBack = result.RolledBack
	outcome.Message = result.Message

	switch {
	case result.Success:
		outcome.Kind = models.OutcomeSuccess
	case result.FailureReason == models.AuthRequired:
		outcome.Kind = models.OutcomeAuthRequired
	case result.FailureReason == models.NoTracksResolved:
		outcome.Kind = models.OutcomeNoTracksResolved
	default:
		outcome.Kind = models.OutcomeCreateFailed
	}
}
