package watch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// ProcessBackend runs an fswatch-style program that prints one changed path
// per line. The program is restarted whenever the armed set changes and
// killed on Disarm.
type ProcessBackend struct {
	// Command is the watcher executable, fswatch by default.
	Command string

	// Args precede the watched paths on the command line.
	Args []string

	events chan Event
	errs   chan error

	mu     sync.Mutex
	paths  []string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewProcessBackend creates a backend driving command.
func NewProcessBackend(command string, args ...string) *ProcessBackend {
	if command == "" {
		command = "fswatch"
	}

	return &ProcessBackend{
		Command: command,
		Args:    args,
		events:  make(chan Event),
		errs:    make(chan error, 1),
	}
}

// Arm implements Backend. Paths that do not exist are skipped and reported.
func (b *ProcessBackend) Arm(paths []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error

	for _, p := range paths {
		p = filepath.Clean(p)

		if _, err := os.Stat(p); err != nil {
			errs = append(errs, fmt.Errorf("watching %s: %w", p, err))
			continue
		}

		if !slices.Contains(b.paths, p) {
			b.paths = append(b.paths, p)
		}
	}

	if err := b.restartLocked(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Disarm implements Backend.
func (b *ProcessBackend) Disarm() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()
	b.paths = nil

	return nil
}

// Events implements Backend.
func (b *ProcessBackend) Events() <-chan Event {
	return b.events
}

// Errors implements Backend.
func (b *ProcessBackend) Errors() <-chan error {
	return b.errs
}

// Close implements Backend.
func (b *ProcessBackend) Close() error {
	return b.Disarm()
}

func (b *ProcessBackend) restartLocked() error {
	b.stopLocked()

	if len(b.paths) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	args := append(append([]string{}, b.Args...), b.paths...)
	cmd := exec.CommandContext(ctx, b.Command, args...) //nolint:gosec

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("creating %s pipe: %w", b.Command, err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("starting %s: %w", b.Command, err)
	}

	done := make(chan struct{})
	b.cancel = cancel
	b.done = done

	go b.read(ctx, cmd, stdout, done)

	return nil
}

func (b *ProcessBackend) stopLocked() {
	if b.cancel == nil {
		return
	}

	b.cancel()
	<-b.done

	b.cancel = nil
	b.done = nil
}

// read forwards one event per output line until the process exits.
func (b *ProcessBackend) read(ctx context.Context, cmd *exec.Cmd, stdout io.ReadCloser, done chan struct{}) {
	defer close(done)

	// A grandchild may hold the pipe open after the process is killed.
	exited := make(chan struct{})
	defer close(exited)

	go func() {
		select {
		case <-ctx.Done():
			_ = stdout.Close()
		case <-exited:
		}
	}()

	scanner := bufio.NewScanner(stdout)

scan:
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		select {
		case b.events <- Event{Path: line, Op: Write}:
		case <-ctx.Done():
			break scan
		}
	}

	err := cmd.Wait()

	if ctx.Err() != nil {
		return
	}

	select {
	case b.errs <- fmt.Errorf("%w: %s exited: %v", ErrBackendTerminated, b.Command, err):
	default:
	}
}
