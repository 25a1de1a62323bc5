package cli

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  lipgloss.Color = "#f5c2e7"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorError   lipgloss.Color = "#f38ba8"
	colorMuted   lipgloss.Color = "#7f849c"
)

// Styles renders command output. The zero value prints plain text.
type Styles struct {
	Title lipgloss.Style
	OK    lipgloss.Style
	Fail  lipgloss.Style
	Muted lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		OK:    lipgloss.NewStyle().Foreground(colorSuccess),
		Fail:  lipgloss.NewStyle().Foreground(colorError),
		Muted: lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// PlainStyles renders without escape sequences.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Title: plain, OK: plain, Fail: plain, Muted: plain}
}

func (s Styles) check(ok bool) string {
	if ok {
		return s.OK.Render("done")
	}
	return s.Fail.Render("missing")
}
