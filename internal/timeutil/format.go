// Package timeutil formats times and durations for command output.
package timeutil

import (
	"fmt"
	"time"
)

// FormatAgo describes how long before now t happened, in the style of
// date-fns formatDistance. Times in the future read as "just now".
func FormatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	d := now.Sub(t)
	minutes := int(d.Minutes())
	hours := int(d.Hours())
	days := hours / 24

	switch {
	case d < 30*time.Second:
		return "just now"
	case d < 90*time.Second:
		return "a minute ago"
	case minutes < 45:
		return fmt.Sprintf("%d minutes ago", minutes)
	case minutes < 90:
		return "an hour ago"
	case hours < 24:
		return fmt.Sprintf("%d hours ago", hours)
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return "on " + t.Format("Jan 2")
	}
}

// FormatDuration formats d with its two largest units, like 3h12m or 45s.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		m := int(d.Minutes())
		if s := int(d.Seconds()) % 60; s > 0 {
			return fmt.Sprintf("%dm%02ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if m := int(d.Minutes()) % 60; m > 0 {
			return fmt.Sprintf("%dh%02dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	default:
		days := int(d.Hours()) / 24
		if h := int(d.Hours()) % 24; h > 0 {
			return fmt.Sprintf("%dd%dh", days, h)
		}
		return fmt.Sprintf("%dd", days)
	}
}

// FormatRate formats a count per hour over d, or "-" when d is too short to
// say anything.
func FormatRate(n int, d time.Duration) string {
	if d < time.Minute {
		return "-"
	}
	return fmt.Sprintf("%.1f/h", float64(n)/d.Hours())
}
