// Package tasks orchestrates the setlist-to-playlist pipeline with real-time progress reporting.
//
// # Pipeline
//
// [PlaylistEngine] implements [Pipeline]. One [PlaylistEngine.Run] walks a fixed state machine:
//
//	Idle → FetchingSetlist → {NoSetlist | SourceError}
//	                       → Resolving → Building → {Success | NoTracksResolved | CreateFailed | AuthRequired}
//
// Every terminal state is reported as a [models.Outcome]. The returned error is reserved for
// context cancellation and missing dependencies. A run without a credential stops after the setlist
// fetch with AuthRequired and makes no search or create calls.
//
// # Resolution
//
// [Resolver] searches each song with the service's own query dialect, taking the first hit only.
// Searches fan out over an errgroup bounded by SetLimit (default 3, max 5) and can be paced with a
// [rate.Limiter]. Matches are written by index, so output order always equals setlist order.
// A failed search marks only that song as not found.
//
// # Building
//
// [Builder] creates the container and then adds every found match in order. The two phases are
// not atomic: a build that adds nothing reports NoTracksResolved and leaves the playlist in place
// unless rollback is enabled, in which case the empty playlist is deleted.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, including from resolver goroutines.
package tasks
