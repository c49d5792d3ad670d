// Package layout measures rendered content so the engine knows where the
// loop wraps.
package layout

import "github.com/charmbracelet/lipgloss/v2"

// SeamGuard is added to the doubled horizontal width so rounding never
// exposes a gap at the wrap point. The ticker renders a one-column gutter
// after every horizontal copy, which makes the guard exact in a terminal.
const SeamGuard = 1

// Box is anything with rendered dimensions, in cells.
type Box interface {
	Width() int
	Height() int
}

// FontSizer reports the root font size used to scale rem-relative stops.
type FontSizer interface {
	FontSize() float64
}

// FontSize is a fixed root font size.
type FontSize float64

func (f FontSize) FontSize() float64 { return float64(f) }

// Text is a Box over an already rendered block of text.
type Text string

func (t Text) Width() int { return lipgloss.Width(string(t)) }

func (t Text) Height() int {
	if t == "" {
		return 0
	}
	return lipgloss.Height(string(t))
}

// Metrics are the measured extents of the scrolling content.
type Metrics struct {
	ContentWidth  float64
	ContentHeight float64
	// FontScale multiplies single-stop distances; 1 unless rem units are on.
	FontScale float64
}

// Half returns half the extent along the active axis, the wrap threshold.
func (m Metrics) Half(horizontal bool) float64 {
	if horizontal {
		return m.ContentWidth / 2
	}
	return m.ContentHeight / 2
}

// Measure computes Metrics. content is one copy of the content, container
// is the wrapper holding the content and its copies. It reports false when
// a handle needed for the axis is missing or has no size yet.
func Measure(content, container Box, horizontal, remUnit bool, root FontSizer) (Metrics, bool) {
	m := Metrics{FontScale: 1}
	if remUnit && root != nil {
		if fs := root.FontSize(); fs > 0 {
			m.FontScale = fs
		}
	}

	if horizontal {
		if content == nil {
			return m, false
		}
		w := content.Width()
		if w <= 0 {
			return m, false
		}
		m.ContentWidth = float64(w*2 + SeamGuard)
		return m, true
	}

	if container == nil {
		return m, false
	}
	h := container.Height()
	if h <= 0 {
		return m, false
	}
	m.ContentHeight = float64(h)
	return m, true
}
