package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per path. A path is released on C
// once no further event for it arrived within the interval, so a save that
// writes a file in several chunks is handled once, after the last chunk.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timers   map[string]*time.Timer
	out      chan string
	done     chan struct{}
	once     sync.Once
}

// NewDebouncer creates a debouncer that waits for interval of quiet per path.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		timers:   make(map[string]*time.Timer),
		out:      make(chan string, 16),
		done:     make(chan struct{}),
	}
}

// C delivers settled paths.
func (d *Debouncer) C() <-chan string {
	return d.out
}

// Trigger records an event for path, restarting its quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.done:
		return
	default:
	}

	if t, ok := d.timers[path]; ok {
		t.Stop()
	}

	var t *time.Timer

	t = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		current := d.timers[path] == t
		if current {
			delete(d.timers, path)
		}
		d.mu.Unlock()

		// Superseded by a later Trigger.
		if !current {
			return
		}

		select {
		case d.out <- path:
		case <-d.done:
		}
	})

	d.timers[path] = t
}

// pending returns the number of paths waiting for their quiet period.
func (d *Debouncer) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.timers)
}

// Stop cancels all pending paths.
func (d *Debouncer) Stop() {
	d.once.Do(func() { close(d.done) })

	d.mu.Lock()
	defer d.mu.Unlock()

	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}
