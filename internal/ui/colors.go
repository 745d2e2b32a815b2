package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Brand and status colors; each pair is (light background, dark background).
var (
	accent = lipgloss.AdaptiveColor{Light: "#2A5885", Dark: "#4A76A8"}
	green  = lipgloss.AdaptiveColor{Light: "#027A4E", Dark: "#04B575"}
	red    = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF4D4D"}
	amber  = lipgloss.AdaptiveColor{Light: "#B36B00", Dark: "#FFA500"}
	muted  = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#626262"}
)

var styles = newPalette()

// palette holds the named styles used by the views.
type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	label lipgloss.Style // left column of the track details box
	box   lipgloss.Style
}

func newPalette() *palette {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &palette{
		title: fg(accent).Bold(true).MarginBottom(1),
		ok:    fg(green).Bold(true),
		err:   fg(red).Bold(true),
		warn:  fg(amber),
		help:  fg(muted).Italic(true),
		label: fg(muted).Bold(true).Width(10),
		box:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2),
	}
}
