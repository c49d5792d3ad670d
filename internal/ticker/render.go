package ticker

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"seamless/internal/copies"
	"seamless/internal/styles"
)

// Item is one entry of the content list.
type Item struct {
	ID    string
	Title string
	Body  string
}

// Template renders one item. width is the viewport width for stacked items
// and 0 for items flowing in a row, which must stay on one line.
type Template func(it Item, index, width int) string

const (
	// gutter trails every block of a horizontal strip; its width matches
	// layout.SeamGuard.
	gutter = " "
	// rowSeparator trails every item flowing in a row.
	rowSeparator = " · "
)

// DefaultTemplate renders titles in the theme's item style with the body
// muted below them, or beside them in a row.
func DefaultTemplate() Template {
	t := styles.CurrentTheme()
	s := t.S()
	return func(it Item, _ int, width int) string {
		title := s.ItemTitle.Render(it.Title)
		if width == 0 {
			if it.Body == "" {
				return title
			}
			return title + " " + s.ItemBody.Render(strings.Join(strings.Fields(it.Body), " "))
		}
		title = ansi.Truncate(title, width, "…")
		if it.Body == "" {
			return title
		}
		return lipgloss.JoinVertical(lipgloss.Left, title, s.ItemBody.Width(width).Render(it.Body))
	}
}

type rendered struct {
	plan []copies.Block
	// primary is the first block alone, container every block stacked or
	// joined along the axis.
	primary   string
	container string
	lines     []string
}

// render lays out the blocks from the current plan, cached until the items,
// size, or options change.
func (m *Model) render() *rendered {
	if m.cache != nil {
		return m.cache
	}
	cfg := m.eng.Config()
	plan := copies.Plan(cfg, m.eng.Scrolling(), m.alternate != nil)
	horizontal := cfg.Direction.Horizontal()

	r := &rendered{plan: plan}
	parts := make([]string, 0, len(plan)*2)
	for i, b := range plan {
		tmpl := m.primary
		if b.Template == copies.Alternate {
			tmpl = m.alternate
		}
		block := m.renderBlock(b, tmpl)
		if i == 0 {
			r.primary = block
		}
		parts = append(parts, block)
		if horizontal {
			parts = append(parts, gutter)
		}
	}

	if horizontal {
		r.container = lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	} else {
		r.container = lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	if len(m.items) == 0 {
		r.primary, r.container = "", ""
	}
	r.lines = strings.Split(r.container, "\n")
	m.cache = r
	return r
}

func (m *Model) renderBlock(b copies.Block, tmpl Template) string {
	width := m.width
	if b.Items == copies.Row {
		width = 0
	}
	out := make([]string, 0, len(m.items))
	for i, it := range m.items {
		s := tmpl(it, i, width)
		if b.Items == copies.Row {
			s += styles.CurrentTheme().S().Subtle.Render(rowSeparator)
		}
		out = append(out, s)
	}
	if b.Items == copies.Row {
		return lipgloss.JoinHorizontal(lipgloss.Top, out...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// View crops the rendered content to the viewport at the drawn offset.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	r := m.render()
	blank := strings.Repeat(" ", m.width)
	out := make([]string, m.height)

	if m.eng.Config().Direction.Horizontal() {
		col := max(int(math.Floor(-m.shownX)), 0)
		for i := range out {
			if i >= len(r.lines) {
				out[i] = blank
				continue
			}
			line := ansi.TruncateLeft(r.lines[i], col, "")
			out[i] = pad(ansi.Truncate(line, m.width, ""), m.width)
		}
		return strings.Join(out, "\n")
	}

	row := max(int(math.Floor(-m.shownY)), 0)
	for i := range out {
		j := row + i
		if j >= len(r.lines) {
			out[i] = blank
			continue
		}
		out[i] = pad(ansi.Truncate(r.lines[j], m.width, ""), m.width)
	}
	return strings.Join(out, "\n")
}

func pad(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
