package inkscape

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type call struct {
	name string
	args []string
}

func (c call) String() string {
	return c.name + " " + strings.Join(c.args, " ")
}

// fakeRunner records invocations and answers --version with a canned string.
type fakeRunner struct {
	mu       sync.Mutex
	version  string
	outErr   error
	runErr   error
	startErr error
	outputs  []call
	runs     []call
	starts   []call
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.outputs = append(f.outputs, call{name, args})

	if f.outErr != nil {
		return nil, f.outErr
	}

	return []byte(f.version), nil
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.runs = append(f.runs, call{name, args})

	return f.runErr
}

func (f *fakeRunner) Start(name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.starts = append(f.starts, call{name, args})

	return f.startErr
}

type failingClipboard struct{}

func (failingClipboard) Write(string) error { return errors.New("no display") }
