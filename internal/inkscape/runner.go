// Package inkscape drives the Inkscape command line: version detection,
// PDF export and opening figures for editing.
package inkscape

import (
	"context"
	"io"
	"os/exec"
)

// Runner executes external programs. The exec based implementation is used
// in production; tests substitute a recorder.
type Runner interface {
	// Output runs name and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Run runs name to completion.
	Run(ctx context.Context, name string, args ...string) error

	// Start launches name without waiting for it.
	Start(name string, args ...string) error
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct {
	// Stdout and Stderr receive the output of Run. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Output implements Runner.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output() //nolint:gosec
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	return cmd.Run()
}

// Start implements Runner. The child is reaped in the background so a long
// running watcher does not accumulate zombies.
func (r *ExecRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() { _ = cmd.Wait() }()

	return nil
}
