package ticker

import (
	"time"

	"seamless/internal/easing"
	"seamless/internal/engine"
)

// Options is the widget's configuration surface.
type Options struct {
	// Active starts and stops automatic motion.
	Active bool `yaml:"active"`
	// Step is the per-frame advance in cells.
	Step float64 `yaml:"step"`
	// LimitScrollNum is the item count below which nothing scrolls.
	LimitScrollNum int              `yaml:"limit_scroll_num"`
	Hover          bool             `yaml:"hover"`
	Direction      engine.Direction `yaml:"direction"`
	// SingleWidth and SingleHeight are the alignment granularity. Zero
	// disables stepped pausing on that axis.
	SingleWidth    float64       `yaml:"single_width"`
	SingleHeight   float64       `yaml:"single_height"`
	SingleWaitTime time.Duration `yaml:"single_wait_time"`
	// IsRemUnit scales single-stop distances by the root font size.
	IsRemUnit bool `yaml:"is_rem_unit"`
	IsWatch   bool `yaml:"is_watch"`
	// Delay postpones the start after mount and sets the length of eased
	// transitions.
	Delay time.Duration     `yaml:"delay"`
	Ease  easing.Descriptor `yaml:"ease"`
	// Count is the loop limit; -1 loops forever.
	Count      int  `yaml:"count"`
	CopyNum    int  `yaml:"copy_num"`
	Wheel      bool `yaml:"wheel"`
	SingleLine bool `yaml:"single_line"`
}

// DefaultOptions returns the widget defaults.
func DefaultOptions() Options {
	return Options{
		Active:         true,
		Step:           1,
		LimitScrollNum: 3,
		Direction:      engine.Up,
		SingleWaitTime: time.Second,
		IsWatch:        true,
		Ease:           easing.Default(),
		Count:          engine.Infinite,
		CopyNum:        1,
	}
}

// EngineConfig converts the options to an engine snapshot.
func (o Options) EngineConfig() engine.Config {
	return engine.Config{
		Direction:    o.Direction,
		Step:         o.Step,
		SingleWidth:  o.SingleWidth,
		SingleHeight: o.SingleHeight,
		SingleWait:   o.SingleWaitTime,
		Ease:         o.Ease,
		Limit:        o.Count,
		CopyNum:      o.CopyNum,
		Hover:        o.Hover,
		Wheel:        o.Wheel,
		Watch:        o.IsWatch,
		AutoStart:    o.Active,
		RemUnit:      o.IsRemUnit,
		MinItems:     o.LimitScrollNum,
		Delay:        o.Delay,
		SingleLine:   o.SingleLine,
	}
}
