package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/setlistx/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#00A8E8", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	info     lipgloss.Style
	help     lipgloss.Style
	selected lipgloss.Style
}

func NewPalette(t, s, e, w, i, h string) *Palette {
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		ok:       NewBold(s),
		err:      NewBold(e),
		warn:     NewStyle(w),
		info:     NewStyle(i),
		help:     NewEm(h),
		selected: NewBold(t).Underline(true),
	}
}

// Severity returns the style for an outcome's message category.
func (p *Palette) Severity(s models.Severity) lipgloss.Style {
	switch s {
	case models.SeveritySuccess:
		return p.ok
	case models.SeverityWarning:
		return p.warn
	case models.SeverityInfo:
		return p.info
	default:
		return p.err
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
