package engine

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"seamless/internal/easing"
)

// Direction is the direction content travels.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection parses a direction name.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down, Left, Right:
		return d, nil
	case "":
		return Up, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Horizontal reports whether d moves along the x axis.
func (d Direction) Horizontal() bool { return d == Left || d == Right }

const (
	// DefaultWheelStep is the wheel step when no vertical stop is set.
	DefaultWheelStep = 15
	// WheelInterval throttles wheel-driven steps.
	WheelInterval = 30 * time.Millisecond
	// ItemWarnThreshold is the list length above which a performance
	// warning is logged.
	ItemWarnThreshold = 100
	// Infinite disables the loop limit.
	Infinite = -1
)

// Config is the configuration snapshot for a run.
type Config struct {
	Direction Direction
	// Step is the per-frame advance in cells.
	Step float64
	// SingleWidth and SingleHeight are the alignment granularity; 0 disables
	// stepped pausing on that axis.
	SingleWidth  float64
	SingleHeight float64
	// SingleWait is the pause at each alignment point.
	SingleWait time.Duration
	Ease       easing.Descriptor
	// Limit stops motion after that many wraps; Infinite never stops.
	Limit int
	// CopyNum is the number of duplicate blocks rendered after the content.
	CopyNum int
	Hover   bool
	Wheel   bool
	// Watch resets motion when the content changes.
	Watch bool
	// AutoStart is the initial value of the active toggle.
	AutoStart bool
	// RemUnit scales single-stop distances by the root font size.
	RemUnit bool
	// MinItems is the list length required before anything scrolls.
	MinItems int
	// Delay postpones the first measurement after mount.
	Delay time.Duration
	// SingleLine lays the items of each block out in one row.
	SingleLine bool
}

// DefaultConfig mirrors the widget defaults.
func DefaultConfig() Config {
	return Config{
		Direction:  Up,
		Step:       1,
		SingleWait: time.Second,
		Ease:       easing.Default(),
		Limit:      Infinite,
		CopyNum:    1,
		Watch:      true,
		AutoStart:  true,
		MinItems:   3,
	}
}

// normalize fixes values the engine cannot run with and logs what it
// changed.
func (c Config) normalize(log *slog.Logger) Config {
	if _, err := ParseDirection(string(c.Direction)); err != nil || c.Direction == "" {
		if c.Direction != "" {
			log.Warn("unknown direction, scrolling up", "direction", string(c.Direction))
		}
		c.Direction = Up
	}
	if c.Step <= 0 || math.IsNaN(c.Step) || math.IsInf(c.Step, 0) {
		log.Warn("step must be positive, using 1", "step", c.Step)
		c.Step = 1
	}
	if c.CopyNum < 0 {
		c.CopyNum = 0
	}
	if c.MinItems < 0 {
		c.MinItems = 0
	}
	if c.SingleWait < 0 {
		c.SingleWait = 0
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.Limit < Infinite {
		c.Limit = Infinite
	}
	return c
}

// singleStop returns the alignment distance on the axis of motion, scaled
// by the measured font scale.
func (c Config) singleStop(scale float64) float64 {
	stop := c.SingleHeight
	if c.Direction.Horizontal() {
		stop = c.SingleWidth
	}
	return stop * scale
}

// divides reports whether stop is a whole multiple of step, allowing for
// float rounding.
func divides(step, stop float64) bool {
	const eps = 1e-9
	r := math.Mod(stop, step)
	return r < eps || step-r < eps
}
