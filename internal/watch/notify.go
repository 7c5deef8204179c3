package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// NotifyBackend watches directories through the operating system's change
// notification facility.
type NotifyBackend struct {
	watcher *fsnotify.Watcher
	events  chan Event
	done    chan struct{}
	once    sync.Once
	armed   []string
}

// NewNotifyBackend creates an fsnotify based backend.
func NewNotifyBackend() (*NotifyBackend, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	b := &NotifyBackend{
		watcher: w,
		events:  make(chan Event),
		done:    make(chan struct{}),
	}

	go b.forward()

	return b, nil
}

// forward translates fsnotify events until the watcher is closed.
func (b *NotifyBackend) forward() {
	defer close(b.events)

	for {
		select {
		case <-b.done:
			return
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}

			op := convertOp(ev.Op)
			if op == 0 {
				continue
			}

			select {
			case b.events <- Event{Path: ev.Name, Op: op}:
			case <-b.done:
				return
			}
		}
	}
}

// Arm implements Backend.
func (b *NotifyBackend) Arm(paths []string) error {
	var errs []error

	for _, p := range paths {
		p = filepath.Clean(p)

		if err := b.watcher.Add(p); err != nil {
			errs = append(errs, fmt.Errorf("watching %s: %w", p, err))
			continue
		}

		b.armed = append(b.armed, p)
	}

	return errors.Join(errs...)
}

// Disarm implements Backend.
func (b *NotifyBackend) Disarm() error {
	var errs []error

	for _, p := range b.armed {
		// A deleted directory drops its watch by itself.
		if err := b.watcher.Remove(p); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			errs = append(errs, fmt.Errorf("unwatching %s: %w", p, err))
		}
	}

	b.armed = nil

	return errors.Join(errs...)
}

// Events implements Backend.
func (b *NotifyBackend) Events() <-chan Event {
	return b.events
}

// Errors implements Backend.
func (b *NotifyBackend) Errors() <-chan error {
	return b.watcher.Errors
}

// watchList returns the paths currently watched.
func (b *NotifyBackend) watchList() []string {
	return b.watcher.WatchList()
}

// Close implements Backend.
func (b *NotifyBackend) Close() error {
	var err error

	b.once.Do(func() {
		close(b.done)
		err = b.watcher.Close()
	})

	return err
}

func convertOp(op fsnotify.Op) Op {
	var out Op

	if op.Has(fsnotify.Write) {
		out |= Write
	}

	if op.Has(fsnotify.Create) {
		out |= Create
	}

	if op.Has(fsnotify.Remove) {
		out |= Remove
	}

	if op.Has(fsnotify.Rename) {
		out |= Rename
	}

	return out
}
