package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/setlistx/internal/models"
)

var (
	_ list.Item = matchItem{}
)

// matchItem wraps [models.TrackMatch] to implement [list.Item].
type matchItem struct {
	position int
	match    models.TrackMatch
}

func (i matchItem) FilterValue() string { return i.match.Title }
func (i matchItem) Title() string       { return fmt.Sprintf("%d. %s", i.position, i.match.Title) }
func (i matchItem) Description() string {
	switch {
	case i.match.Found:
		return "✓ " + i.match.PlatformID
	case i.match.Err != nil:
		return "✗ search failed: " + i.match.Err.Error()
	default:
		return "✗ not found"
	}
}

func matchItems(matches []models.TrackMatch) []list.Item {
	items := make([]list.Item, len(matches))
	for i, m := range matches {
		items[i] = matchItem{position: i + 1, match: m}
	}
	return items
}
