package feed

import (
	"strings"

	"github.com/charmbracelet/glamour/v2"

	"seamless/internal/styles"
)

// RenderMarkdown renders content for the terminal at width, falling back to
// the raw text when the renderer fails.
func RenderMarkdown(width int, content string) string {
	if width < 1 {
		width = 1
	}

	theme := styles.CurrentTheme()

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(theme.S().Markdown),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return strings.TrimSuffix(content, "\n")
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return strings.TrimSuffix(content, "\n")
	}

	return strings.Trim(rendered, "\n")
}

// Rendered returns the item body ready for display at width.
func (it Item) Rendered(width int) string {
	if it.Format == Markdown && it.Body != "" {
		return RenderMarkdown(width, it.Body)
	}
	return it.Body
}
