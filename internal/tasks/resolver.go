package tasks

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/services"
	"github.com/desertthunder/setlistx/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultConcurrency = 3
	MaxConcurrency     = 5
)

// ResolverOptions configures a [Resolver].
type ResolverOptions struct {
	Concurrency int     // parallel searches, clamped to 1..MaxConcurrency; 0 uses DefaultConcurrency
	RateLimit   float64 // searches per second across workers; 0 disables pacing
	Logger      *log.Logger
}

// Resolver searches a service for each song of a setlist.
//
// It holds no per-run state, so one Resolver can serve concurrent runs.
type Resolver struct {
	workers   int
	rateLimit float64
	logger    *log.Logger
}

// NewResolver creates a [Resolver].
func NewResolver(opts ResolverOptions) *Resolver {
	workers := opts.Concurrency
	switch {
	case workers <= 0:
		workers = DefaultConcurrency
	case workers > MaxConcurrency:
		workers = MaxConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Resolver{workers: workers, rateLimit: opts.RateLimit, logger: opts.Logger}
}

// Resolve returns exactly one [models.TrackMatch] per song, in song order.
//
// Per-song failures are recorded on the match and never abort the batch.
// Songs not yet searched when ctx is done get Err set to ctx.Err().
func (r *Resolver) Resolve(ctx context.Context, svc services.Service, songs []string, artist string, cred models.Credential, progress chan<- ProgressUpdate) []models.TrackMatch {
	matches := make([]models.TrackMatch, len(songs))
	total := len(songs)
	sendProgress(progress, resolveStartUpdate(total, svc.Name()))

	var limiter *rate.Limiter
	if r.rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.rateLimit), 1)
	}

	var done atomic.Int64
	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, title := range songs {
		matches[i] = models.TrackMatch{Title: title, Artist: artist}
		if err := ctx.Err(); err != nil {
			matches[i].Err = err
			continue
		}

		g.Go(func() error {
			matches[i] = r.resolveOne(ctx, svc, limiter, matches[i], cred)
			step := int(done.Add(1))
			sendProgress(progress, resolveTrackUpdate(step, total, matches[i]))
			return nil
		})
	}
	_ = g.Wait()

	return matches
}

func (r *Resolver) resolveOne(ctx context.Context, svc services.Service, limiter *rate.Limiter, m models.TrackMatch, cred models.Credential) models.TrackMatch {
	if strings.TrimSpace(m.Title) == "" {
		return m
	}
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			m.Err = err
			return m
		}
	}
	if err := ctx.Err(); err != nil {
		m.Err = err
		return m
	}

	id, found, err := svc.SearchTrack(ctx, m.Title, m.Artist, cred)
	switch {
	case err != nil:
		r.logger.Warn("search failed", "service", svc.Kind(), "title", m.Title, "error", err)
		m.Err = err
	case !found || id == "":
		r.logger.Warn("no match", "service", svc.Kind(), "title", m.Title)
	default:
		m.Found = true
		m.PlatformID = id
	}
	return m
}
