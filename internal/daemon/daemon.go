// Package daemon runs the watcher in the background. The parent re-executes
// the current binary detached from the terminal and the child records its
// process id in a PID file, which later invocations use to detect and stop
// it.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// EnvChild marks the re-executed background process.
const EnvChild = "INKSCAPE_FIGURES_DAEMON"

// ErrNotRunning is returned by Stop when no live watcher owns the PID file.
var ErrNotRunning = errors.New("no background watcher running")

// IsChild reports whether this process is the detached watcher.
func IsChild() bool {
	return os.Getenv(EnvChild) == "1"
}

// Spawn re-executes the running binary with args in the background.
func Spawn(args []string, logPath string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("locating executable: %w", err)
	}

	return SpawnCommand(exe, args, logPath)
}

// SpawnCommand starts name detached from the terminal with stdout and stderr
// appended to logPath, and returns its process id without waiting for it.
func SpawnCommand(name string, args []string, logPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return 0, fmt.Errorf("creating log directory: %w", err)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return 0, fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(name, args...) //nolint:gosec
	cmd.Env = append(os.Environ(), EnvChild+"=1")
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = detached()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting background watcher: %w", err)
	}

	pid := cmd.Process.Pid

	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("releasing background watcher: %w", err)
	}

	return pid, nil
}

// WritePID records the current process id at path.
func WritePID(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating PID directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("writing PID file: %w", err)
	}

	return nil
}

// RemovePID deletes the PID file if it still names the current process.
func RemovePID(path string) error {
	pid, err := ReadPID(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	if pid != os.Getpid() {
		return nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing PID file: %w", err)
	}

	return nil
}

// ReadPID parses the process id stored at path.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("malformed PID file %s", path)
	}

	return pid, nil
}

// Running reports the live process recorded at path. A PID file naming a
// dead process, or one that cannot be parsed, is removed.
func Running(path string) (int, bool) {
	pid, err := ReadPID(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			_ = os.Remove(path)
		}

		return 0, false
	}

	if !alive(pid) {
		_ = os.Remove(path)
		return 0, false
	}

	return pid, true
}

// Stop asks the watcher recorded at path to terminate and returns its pid.
func Stop(path string) (int, error) {
	pid, ok := Running(path)
	if !ok {
		return 0, ErrNotRunning
	}

	if err := terminate(pid); err != nil {
		return pid, fmt.Errorf("stopping watcher %d: %w", pid, err)
	}

	return pid, nil
}
