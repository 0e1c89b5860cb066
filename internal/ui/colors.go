package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/crate/internal/tasks"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	info  lipgloss.Style
	help  lipgloss.Style
	kind  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		info:  NewStyle(t),
		help:  NewEm(h),
		kind:  NewBold("#FFFFFF").Background(lipgloss.Color(t)).Padding(0, 1),
	}
}

// Status renders s in the color of its level.
func (p *Palette) Status(s tasks.Status) string {
	if s.Message == "" {
		return ""
	}

	switch s.Level {
	case tasks.LevelSuccess:
		return p.ok.Render("✓ " + s.Message)
	case tasks.LevelInfo:
		return p.info.Render("• " + s.Message)
	case tasks.LevelWarning:
		return p.warn.Render("! " + s.Message)
	default:
		return p.err.Render("✗ " + s.Message)
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
