// Package models defines the domain types shared by the setlist-to-playlist pipeline.
//
// The package contains two categories of types:
//
// 1. Pipeline inputs: values supplied by collaborators
//   - [ServiceKind] : target streaming service selector
//   - [Credential] : borrowed OAuth token for one pipeline call
//
// 2. Pipeline results: values constructed fresh per request and never persisted
//   - [Setlist] : newest setlist with songs, flattened into performance order
//   - [TrackMatch] : outcome of resolving one song on the target service
//   - [PlaylistResult] : outcome of the two-phase create + add
//   - [Outcome] : the typed union returned to collaborators
package models
