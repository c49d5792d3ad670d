package frame

// Batch is a Native source for hosts that repaint on their own tick: every
// request made before a repaint runs once when the host calls Flush.
// Requests made while flushing wait for the following repaint.
//
// This is not thread safe.
type Batch struct {
	next  uint64
	order []uint64
	fns   map[uint64]func()
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{fns: make(map[uint64]func())}
}

func (b *Batch) RequestFrame(fn func()) uint64 {
	b.next++
	b.fns[b.next] = fn
	b.order = append(b.order, b.next)
	return b.next
}

func (b *Batch) CancelFrame(id uint64) {
	delete(b.fns, id)
}

// Pending reports whether a repaint has callbacks waiting.
func (b *Batch) Pending() bool { return len(b.fns) > 0 }

// Flush runs the callbacks requested before this call, in request order.
func (b *Batch) Flush() int {
	order := b.order
	b.order = nil
	ran := 0
	for _, id := range order {
		fn, ok := b.fns[id]
		if !ok {
			continue
		}
		delete(b.fns, id)
		fn()
		ran++
	}
	return ran
}
