// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks one setlist-to-playlist run at a time:
//  1. [InputView] : Type an artist and pick the target service with tab
//  2. [RunView] : Watch the pipeline's progress updates with a spinner and progress bar
//  3. [ResultView] : Read the outcome in its severity colour, open the playlist, and review each song's match
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the pipeline, providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, tab, o, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
