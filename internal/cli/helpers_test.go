package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/hupe1980/inkscape-figures/internal/clipboard"
	"github.com/hupe1980/inkscape-figures/internal/picker"
)

const testConfigDir = "/cfg"

// call records one program invocation.
type call struct {
	kind string
	name string
	args []string
}

// fakeRunner records invocations instead of running Inkscape.
type fakeRunner struct {
	mu      sync.Mutex
	version string
	calls   []call
}

func (f *fakeRunner) record(kind, name string, args []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call{kind: kind, name: name, args: args})
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.record("output", name, args)

	if f.version == "" {
		return nil, errors.New("inkscape not installed")
	}

	return []byte(f.version), nil
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.record("run", name, args)
	return nil
}

func (f *fakeRunner) Start(name string, args ...string) error {
	f.record("start", name, args)
	return nil
}

func (f *fakeRunner) callsOf(kind string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []call

	for _, c := range f.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}

	return out
}

// fakePicker returns a fixed choice and remembers what it was shown.
type fakePicker struct {
	index  int
	ok     bool
	err    error
	prompt string
	items  []string
	calls  int
}

func (p *fakePicker) Pick(_ context.Context, prompt string, items []string) (int, bool, error) {
	p.calls++
	p.prompt = prompt
	p.items = items

	return p.index, p.ok, p.err
}

// testEnv bundles an env with handles on its fakes.
type testEnv struct {
	*env
	runner    *fakeRunner
	clipboard *clipboard.Memory
	picker    *fakePicker
	spawned   [][]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Keep the developer's own settings out of the tests.
	t.Setenv("INKSCAPE_FIGURES_PID_FILE", filepath.Join(t.TempDir(), "figures.pid"))
	t.Setenv("INKSCAPE_FIGURES_SNIPPET_COMMAND", "")

	te := &testEnv{
		runner:    &fakeRunner{version: "Inkscape 1.3.2 (091e20e, 2023-11-25)"},
		clipboard: &clipboard.Memory{},
		picker:    &fakePicker{},
	}

	te.env = &env{
		fs:        afero.NewMemMapFs(),
		runner:    te.runner,
		clipboard: te.clipboard,
		picker:    func(string) (picker.Picker, error) { return te.picker, nil },
		lookPath:  func(string) (string, error) { return "", errors.New("not found") },
		spawn: func(args []string, _ string) (int, error) {
			te.spawned = append(te.spawned, args)
			return 4242, nil
		},
	}

	return te
}

// execute runs the command tree against te with the config directory at
// testConfigDir unless args name another one.
func (te *testEnv) execute(args ...string) (stdout, stderr string, err error) {
	return te.executeContext(context.Background(), args...)
}

func (te *testEnv) executeContext(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	if !containsFlag(args, "--config-dir") {
		args = append([]string{"--config-dir", testConfigDir}, args...)
	}

	cmd := newRootCommand(te.env)
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(ctx)

	return outBuf.String(), errBuf.String(), err
}

func (te *testEnv) readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := afero.ReadFile(te.fs, path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}

	return string(data)
}

func containsFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			return true
		}
	}

	return false
}

// executeCommand runs the production command tree; used for commands that
// never touch the config directory.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}
