package models

import "fmt"

// OutcomeKind enumerates the terminal states of one pipeline invocation.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNoSetlist
	OutcomeNoTracksResolved
	OutcomeAuthRequired
	OutcomeSourceError
	OutcomeCreateFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoSetlist:
		return "no_setlist"
	case OutcomeNoTracksResolved:
		return "no_tracks_resolved"
	case OutcomeAuthRequired:
		return "auth_required"
	case OutcomeSourceError:
		return "source_error"
	case OutcomeCreateFailed:
		return "create_failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Severity is the message category a collaborator renders an outcome with.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Outcome is the typed result of a pipeline run.
type Outcome struct {
	Kind           OutcomeKind  `json:"kind"`
	Service        ServiceKind  `json:"service"`
	URL            string       `json:"url,omitempty"`
	PlaylistID     string       `json:"playlist_id,omitempty"`
	AddedCount     int          `json:"added_count"`
	RequestedCount int          `json:"requested_count"`
	Message        string       `json:"message,omitempty"`
	RolledBack     bool         `json:"rolled_back,omitempty"`
	Setlist        *Setlist     `json:"setlist,omitempty"`
	Matches        []TrackMatch `json:"matches,omitempty"`
}

// Partial reports whether some requested songs were not added.
func (o *Outcome) Partial() bool {
	return o.Kind == OutcomeSuccess && o.AddedCount < o.RequestedCount
}

// Severity maps the outcome kind to exactly one message category.
func (o *Outcome) Severity() Severity {
	switch o.Kind {
	case OutcomeSuccess:
		return SeveritySuccess
	case OutcomeNoSetlist, OutcomeNoTracksResolved:
		return SeverityWarning
	case OutcomeAuthRequired:
		return SeverityInfo
	default:
		return SeverityDanger
	}
}

// Summary returns the human readable line shown to the user.
func (o *Outcome) Summary() string {
	switch o.Kind {
	case OutcomeSuccess:
		date := ""
		if o.Setlist != nil {
			date = o.Setlist.EventDate
		}
		if o.Partial() {
			return fmt.Sprintf("Created playlist with %d of %d songs from %s.", o.AddedCount, o.RequestedCount, date)
		}
		return fmt.Sprintf("Successfully created playlist with %d songs from %s!", o.AddedCount, date)
	case OutcomeNoSetlist:
		return "No recent setlist found for this artist."
	case OutcomeNoTracksResolved:
		if o.RolledBack {
			return fmt.Sprintf("None of the %d songs could be found on %s; the empty playlist was removed.", o.RequestedCount, o.Service.DisplayName())
		}
		return fmt.Sprintf("None of the %d songs could be found on %s.", o.RequestedCount, o.Service.DisplayName())
	case OutcomeAuthRequired:
		return fmt.Sprintf("Connect your %s account first.", o.Service.DisplayName())
	case OutcomeSourceError:
		return fmt.Sprintf("Error fetching setlist: %s", o.Message)
	case OutcomeCreateFailed:
		return fmt.Sprintf("Failed to create %s playlist: %s", o.Service.DisplayName(), o.Message)
	default:
		return o.Message
	}
}
