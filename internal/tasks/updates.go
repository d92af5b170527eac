package tasks

import (
	"fmt"

	"github.com/desertthunder/setlistx/internal/models"
)

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSetlist Phase = iota
	Identify
	ResolveTracks
	CreatePlaylist
	AddTracks
	Rollback
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchSetlist:
		return "fetch_setlist"
	case ResolveTracks:
		return "resolve_tracks"
	case Identify:
		return "identify"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	case Rollback:
		return "rollback"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Safe to call from resolver goroutines.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

func fetchSetlistUpdate(artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSetlist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching latest setlist for %s...", artist),
	}
}

func foundSetlistUpdate(sl *models.Setlist) ProgressUpdate {
	msg := fmt.Sprintf("Found setlist from %s (%d songs)", sl.EventDate, len(sl.Songs))
	if sl.VenueName != "" {
		msg = fmt.Sprintf("Found setlist from %s at %s (%d songs)", sl.EventDate, sl.VenueName, len(sl.Songs))
	}
	return ProgressUpdate{
		Phase:   FetchSetlist,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    sl,
	}
}

func resolveStartUpdate(total int, service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching %d songs on %s...", total, service),
	}
}

func resolveTrackUpdate(step, total int, m models.TrackMatch) ProgressUpdate {
	mark := "✓"
	if !m.Found {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, m.Artist, m.Title),
		Data:    m,
	}
}

func identifyUpdate(service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Identify,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checking %s account...", service),
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func playlistCreatedUpdate(id, url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created (ID: %s)", id),
		Data:    url,
	}
}

func addTracksUpdate(step, total int) ProgressUpdate {
	msg := fmt.Sprintf("Adding %d tracks...", total)
	if step > 0 {
		msg = fmt.Sprintf("Added %d of %d tracks", step, total)
	}
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func rollbackUpdate(id string, err error) ProgressUpdate {
	msg := fmt.Sprintf("Removed empty playlist %s", id)
	if err != nil {
		msg = fmt.Sprintf("Could not remove empty playlist %s: %v", id, err)
	}
	return ProgressUpdate{
		Phase:   Rollback,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func completeUpdate(outcome *models.Outcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: outcome.Summary(),
		Data:    outcome,
	}
}
