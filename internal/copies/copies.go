// Package copies decides which content blocks a scrolling widget renders.
//
// The primary block is always present. While scrolling, CopyNum duplicates
// follow it so the picture past the wrap point already shows the start of
// the next loop.
package copies

import (
	"fmt"

	"seamless/internal/engine"
)

// Template selects which item template renders a block.
type Template int

const (
	Primary Template = iota
	Alternate
)

// Flow is how blocks, or the items inside one block, are laid out.
type Flow int

const (
	Column Flow = iota
	Row
)

func (f Flow) String() string {
	if f == Row {
		return "row"
	}
	return "column"
}

// Block is one rendered copy of the content.
type Block struct {
	// Key is unique within a plan and stable across plans.
	Key      string
	Copy     bool
	Template Template
	// Flow places this block relative to its neighbours.
	Flow Flow
	// Items places the items inside this block.
	Items Flow
}

// Plan returns the blocks to render, primary first. hasAlternate reports
// whether the host supplied a template for copies.
func Plan(cfg engine.Config, scrolling, hasAlternate bool) []Block {
	flow := Column
	if cfg.Direction.Horizontal() {
		flow = Row
	}
	items := Column
	if cfg.Direction.Horizontal() || cfg.SingleLine {
		items = Row
	}

	n := 0
	if scrolling && cfg.CopyNum > 0 {
		n = cfg.CopyNum
	}
	blocks := make([]Block, 0, n+1)
	blocks = append(blocks, Block{Key: "primary", Flow: flow, Items: items})

	tmpl := Primary
	if hasAlternate {
		tmpl = Alternate
	}
	for i := 0; i < n; i++ {
		blocks = append(blocks, Block{
			Key:      fmt.Sprintf("copy-%d", i),
			Copy:     true,
			Template: tmpl,
			Flow:     flow,
			Items:    items,
		})
	}
	return blocks
}
