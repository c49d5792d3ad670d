// Package styles holds the ticker palette and the pre-built lipgloss styles
// derived from it.
package styles

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/glamour/v2/ansi"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

const (
	defaultListIndent uint = 2
	defaultMargin     uint = 1
)

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// Theme is the color palette.
type Theme struct {
	Name   string
	IsDark bool

	Primary   color.Color
	Secondary color.Color
	Accent    color.Color

	BgBase   color.Color
	BgSubtle color.Color

	FgBase      color.Color
	FgMuted     color.Color
	FgMutedMore color.Color
	FgSubtle    color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	styles *Styles
}

// Styles are common pre-built lipgloss styles.
type Styles struct {
	Base     lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style

	// Viewport frames the ticker, ViewportHover while the pointer is over it.
	Viewport      lipgloss.Style
	ViewportHover lipgloss.Style
	ItemTitle     lipgloss.Style
	ItemBody      lipgloss.Style

	StatusRunning lipgloss.Style
	StatusPaused  lipgloss.Style
	StatusStopped lipgloss.Style

	Markdown ansi.StyleConfig
	Help     help.Styles
}

// S returns lazily-initialized styles tied to the theme colors.
func (t *Theme) S() *Styles {
	if t.styles != nil {
		return t.styles
	}
	base := lipgloss.NewStyle().Foreground(t.FgBase)
	s := &Styles{
		Base:     base,
		Title:    base.Foreground(t.Primary).Bold(true),
		Subtitle: base.Foreground(t.Secondary).Bold(true),
		Text:     base,
		Muted:    base.Foreground(t.FgMuted),
		Subtle:   base.Foreground(t.FgSubtle),

		Viewport: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		ItemTitle: base.Foreground(t.Primary).Bold(true),
		ItemBody:  base.Foreground(t.FgMuted),

		StatusRunning: base.Foreground(t.Success),
		StatusPaused:  base.Foreground(t.Warning),
		StatusStopped: base.Foreground(t.FgSubtle),
	}
	s.ViewportHover = s.Viewport.BorderForeground(t.BorderFocus)

	s.Markdown = ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(charmtone.Smoke.Hex()),
			},
		},
		BlockQuote: ansi.StyleBlock{
			Indent:      uintPtr(1),
			IndentToken: stringPtr("│ "),
		},
		List: ansi.StyleList{
			LevelIndent: defaultListIndent,
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(charmtone.Malibu.Hex()),
				Bold:  boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(charmtone.Zest.Hex()),
				Bold:  boolPtr(true),
			},
		},
		H6: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(charmtone.Guac.Hex()),
				Bold:  boolPtr(false),
			},
		},
		Strikethrough: ansi.StylePrimitive{CrossedOut: boolPtr(true)},
		Emph:          ansi.StylePrimitive{Italic: boolPtr(true)},
		Strong:        ansi.StylePrimitive{Bold: boolPtr(true)},
		Item:          ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration:   ansi.StylePrimitive{BlockPrefix: ". "},
		Link: ansi.StylePrimitive{
			Color:     stringPtr(charmtone.Zinc.Hex()),
			Underline: boolPtr(true),
		},
		LinkText: ansi.StylePrimitive{
			Color: stringPtr(charmtone.Guac.Hex()),
			Bold:  boolPtr(true),
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr("#f7c0af"),
				BackgroundColor: stringPtr("#2a2a2e"),
			},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color: stringPtr(charmtone.Charcoal.Hex()),
				},
				Margin: uintPtr(defaultMargin),
			},
		},
	}

	s.Help = help.Styles{
		Ellipsis:       base.Foreground(t.FgMuted).SetString("…"),
		ShortKey:       base.Foreground(t.FgMuted),
		ShortDesc:      base.Foreground(t.FgMutedMore),
		ShortSeparator: base.Foreground(t.FgMuted).SetString(" · "),
		FullKey:        base.Foreground(t.FgMuted).Bold(true),
		FullDesc:       base.Foreground(t.FgBase),
		FullSeparator:  base.Foreground(t.FgSubtle).SetString("\n"),
	}

	t.styles = s
	return s
}

// CurrentTheme returns the shared theme. Its styles are built once.
func CurrentTheme() *Theme { return current() }

var current = sync.OnceValue(defaultTheme)

func defaultTheme() *Theme {
	primary := lipgloss.Color("#f7c0af")
	secondary := lipgloss.Color("#3ccad7")

	return &Theme{
		Name:   "Dark",
		IsDark: true,

		Primary:   primary,
		Secondary: secondary,
		Accent:    secondary,

		BgBase:   color.RGBA{0x10, 0x10, 0x12, 0xff},
		BgSubtle: color.RGBA{0x12, 0x12, 0x14, 0xff},

		FgBase:      color.RGBA{0xdd, 0xdd, 0xdd, 0xff},
		FgMuted:     color.RGBA{0x7f, 0x7f, 0x7f, 0xff},
		FgMutedMore: color.RGBA{0x58, 0x58, 0x58, 0xff},
		FgSubtle:    color.RGBA{0x88, 0x88, 0x88, 0xff},

		Border:      color.RGBA{0x33, 0x33, 0x38, 0xff},
		BorderFocus: primary,

		Success: color.RGBA{0x87, 0xbf, 0x47, 0xff},
		Error:   color.RGBA{0xbf, 0x5d, 0x47, 0xff},
		Warning: color.RGBA{0xff, 0xc1, 0x07, 0xff},
		Info:    color.RGBA{0x64, 0xb5, 0xf6, 0xff},
	}
}

// Ramp returns n colors blended from a to b in HCL space.
func Ramp(a, b color.Color, n int) []color.Color {
	if n <= 0 {
		return nil
	}
	c1, _ := colorful.MakeColor(a)
	c2, _ := colorful.MakeColor(b)
	out := make([]color.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = c1.BlendHcl(c2, t).Clamped()
	}
	return out
}

func hex(c color.Color) color.Color {
	cf, _ := colorful.MakeColor(c)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", uint8(cf.R*255), uint8(cf.G*255), uint8(cf.B*255)))
}

// ApplyBoldForegroundGrad applies a foreground gradient across text. It falls
// back to a solid color when the terminal lacks TrueColor.
func ApplyBoldForegroundGrad(text string, from, to color.Color) string {
	rs := []rune(text)
	n := len(rs)
	if n == 0 {
		return ""
	}

	if termenv.ColorProfile() != termenv.TrueColor {
		return lipgloss.NewStyle().Foreground(hex(from)).Bold(true).Render(text)
	}

	c1, _ := colorful.MakeColor(from)
	c2, _ := colorful.MakeColor(to)
	var out string
	for i, r := range rs {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out += lipgloss.NewStyle().Foreground(hex(c1.BlendLab(c2, t))).Bold(true).Render(string(r))
	}
	return out
}
