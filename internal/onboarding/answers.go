package onboarding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"seamless/config"
	"seamless/internal/engine"
)

// answers holds the raw form values.
type answers struct {
	Direction string
	Step      string
	Feed      string
	Hover     bool
	Wheel     bool
	Limit     string
}

func defaultAnswers() answers {
	d := config.Default()
	return answers{
		Direction: string(d.Ticker.Direction),
		Step:      strconv.FormatFloat(d.Ticker.Step, 'f', -1, 64),
		Feed:      d.Feed,
		Limit:     strconv.Itoa(d.Ticker.Count),
	}
}

func validateStep(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("step must be a positive number")
	}
	return nil
}

func validateLimit(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < engine.Infinite {
		return fmt.Errorf("loop limit must be -1 or a whole number")
	}
	return nil
}

func validateFeed(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("feed pattern cannot be empty")
	}
	if !doublestar.ValidatePattern(s) {
		return fmt.Errorf("invalid glob pattern")
	}
	return nil
}

// apply builds the config file from the answers.
func (a answers) apply() (config.File, error) {
	f := config.Default()

	dir, err := engine.ParseDirection(a.Direction)
	if err != nil {
		return f, err
	}
	if err := validateStep(a.Step); err != nil {
		return f, err
	}
	if err := validateLimit(a.Limit); err != nil {
		return f, err
	}
	if err := validateFeed(a.Feed); err != nil {
		return f, err
	}

	f.Ticker.Direction = dir
	f.Ticker.Step, _ = strconv.ParseFloat(strings.TrimSpace(a.Step), 64)
	f.Ticker.Count, _ = strconv.Atoi(strings.TrimSpace(a.Limit))
	f.Ticker.Hover = a.Hover
	f.Ticker.Wheel = a.Wheel && a.Hover
	f.Feed = strings.TrimSpace(a.Feed)
	return f, nil
}

// countMatches expands the feed pattern the way the feed loader does.
func countMatches(pattern string) (int, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}
