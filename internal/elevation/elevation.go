// Package elevation derives the visual elevation of an inset panel's
// header and footer from the scroll position of the panel itself, not
// of the whole viewport.
package elevation

import "sync"

// Level is the visual elevation of a bar.
type Level int

const (
	Flat Level = iota
	Raised
)

func (l Level) String() string {
	if l == Raised {
		return "raised"
	}
	return "flat"
}

// Surface is a scrollable area that reports its vertical offset.
// Subscribe returns a function that removes the subscription.
type Surface interface {
	Subscribe(fn func(offset int)) (unsubscribe func())
}

// Offset is a Surface driven by explicit SetOffset calls, e.g. from a
// terminal viewport or a client reporting its scroll position. Events are
// delivered synchronously on the caller's goroutine.
type Offset struct {
	mu     sync.Mutex
	offset int
	next   int
	subs   map[int]func(int)
}

// NewOffset returns a surface at offset 0.
func NewOffset() *Offset {
	return &Offset{subs: make(map[int]func(int))}
}

// Subscribe registers fn for future offset changes.
func (o *Offset) Subscribe(fn func(offset int)) func() {
	o.mu.Lock()
	id := o.next
	o.next++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// SetOffset records a new scroll position and notifies subscribers.
// Negative offsets are treated as 0.
func (o *Offset) SetOffset(offset int) {
	if offset < 0 {
		offset = 0
	}
	o.mu.Lock()
	o.offset = offset
	fns := make([]func(int), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(offset)
	}
}

// Current returns the last recorded offset.
func (o *Offset) Current() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.offset
}

// Trigger tracks whether a surface is scrolled away from the top.
type Trigger struct {
	threshold int
	onChange  func(scrolled bool)

	mu          sync.Mutex
	scrolled    bool
	stopped     bool
	unsubscribe func()
}

// Watch subscribes to surface. The trigger counts as scrolled once the
// offset exceeds threshold; there is no hysteresis. onChange, if non-nil,
// runs whenever the scrolled state flips.
func Watch(surface Surface, threshold int, onChange func(scrolled bool)) *Trigger {
	t := &Trigger{threshold: threshold, onChange: onChange}
	t.unsubscribe = surface.Subscribe(t.observe)
	return t
}

func (t *Trigger) observe(offset int) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	scrolled := offset > t.threshold
	changed := scrolled != t.scrolled
	t.scrolled = scrolled
	onChange := t.onChange
	t.mu.Unlock()

	if changed && onChange != nil {
		onChange(scrolled)
	}
}

// Scrolled reports whether the surface is scrolled past the threshold.
func (t *Trigger) Scrolled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scrolled
}

// Header is raised while content scrolls underneath it.
func (t *Trigger) Header() Level {
	if t.Scrolled() {
		return Raised
	}
	return Flat
}

// Footer is the sticky action bar: raised while the panel sits at the
// top with content below it, flat once the user has scrolled.
func (t *Trigger) Footer() Level {
	if t.Scrolled() {
		return Flat
	}
	return Raised
}

// Stop unsubscribes from the surface. Later events are ignored.
func (t *Trigger) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()
	t.unsubscribe()
}
