package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"seamless/internal/styles"
	"seamless/version"
)

// header is the title row: name, version, feed pattern, then a gradient
// pattern filling the rest of the width.
type header struct {
	width int
	feed  string
}

func (h *header) SetWidth(width int) { h.width = width }

func (h *header) View() string {
	if h.width <= 0 {
		return ""
	}
	t := styles.CurrentTheme()
	s := t.S()

	label := s.Title.Render("seamless")
	versionStr := lipgloss.NewStyle().Foreground(t.Primary).Render(" " + version.Get())
	feed := ""
	if h.feed != "" {
		feed = s.Muted.Render(" " + h.feed)
	}

	line := ""
	// Each repeat is 2 cells, plus one leading space and a trailing "⁘".
	if free := h.width - lipgloss.Width(label) - lipgloss.Width(versionStr) - lipgloss.Width(feed); free > 2 {
		if n := (free - 2) / 2; n > 0 {
			line = styles.ApplyBoldForegroundGrad(" "+strings.Repeat("⁘⁙", n)+"⁘", t.Primary, t.Secondary)
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, label, versionStr, feed, line)
	return s.Base.MaxWidth(h.width).Render(row)
}
