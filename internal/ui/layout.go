package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nhle/kanban/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	BannerHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight, BannerHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		BannerHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header, the notification banner and the status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.BannerHeight - l.StatusBarHeight
}

// RenderBanner renders a notification line across the full width. An
// empty headline renders a blank line so the content does not jump.
func (l Layout) RenderBanner(headline, detail string) string {
	if headline == "" {
		return lipgloss.NewStyle().Width(l.Width).Render("")
	}
	text := headline
	if detail != "" {
		text += " " + detail
	}
	room := l.Width - theme.NotificationStyle.GetHorizontalFrameSize()
	if room > 0 && lipgloss.Width(text) > room {
		text = ansi.Truncate(text, room, "…")
	}
	return theme.NotificationStyle.Width(l.Width).Render(text)
}

// RenderHeader renders the top bar: the board name on the left and the
// user and sync status on the right.
func (l Layout) RenderHeader(title, status string) string {
	return l.bar(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders the bottom bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.bar(theme.StatusBarStyle, hints, "")
}

// bar fills one line of the full width with style, left and right
// aligned. The left text is cut when both do not fit.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	r := ""
	if right != "" {
		r = style.Render(right)
	}
	room := l.Width - lipgloss.Width(r) - style.GetHorizontalFrameSize()
	if room < 0 {
		room = 0
	}
	if lipgloss.Width(left) > room {
		left = ansi.Truncate(left, room, "…")
	}
	lft := style.Render(left)

	gap := l.Width - lipgloss.Width(lft) - lipgloss.Width(r)
	if gap < 0 {
		gap = 0
	}
	fill := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, lft, fill, r)
}

// RenderWithFrame stacks the header, the banner, the content area and the
// status bar. The content is padded or cut to ContentHeight.
func (l Layout) RenderWithFrame(
	header string,
	banner string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		banner,
		lipgloss.NewStyle().
			Height(l.ContentHeight()).
			MaxHeight(l.ContentHeight()).
			Render(content),
		statusBar,
	)
}
