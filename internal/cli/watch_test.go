package cli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inkscape-figures/internal/daemon"
)

func TestWatch_SpawnsBackgroundWatcher(t *testing.T) {
	te := newTestEnv(t)
	t.Setenv(daemon.EnvChild, "")

	stdout, _, err := te.execute("watch")
	require.NoError(t, err)

	require.Len(t, te.spawned, 1)
	assert.Equal(t, os.Args[1:], te.spawned[0])
	assert.Contains(t, stdout, "pid 4242")
	assert.Contains(t, stdout, filepath.Join(testConfigDir, "watch.log"))
}

func TestWatch_RefusesSecondWatcher(t *testing.T) {
	te := newTestEnv(t)

	sleeper := exec.Command("sleep", "60")
	if err := sleeper.Start(); err != nil {
		t.Skipf("cannot start sleep: %v", err)
	}

	t.Cleanup(func() {
		_ = sleeper.Process.Kill()
		_ = sleeper.Wait()
	})

	pidFile := os.Getenv("INKSCAPE_FIGURES_PID_FILE")
	require.NoError(t, os.WriteFile(pidFile, []byte(strconv.Itoa(sleeper.Process.Pid)), 0o644))

	_, _, err := te.execute("watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
	assert.Empty(t, te.spawned)
}

func TestWatch_StopWithoutWatcher(t *testing.T) {
	te := newTestEnv(t)

	_, _, err := te.execute("watch", "--stop")
	require.ErrorIs(t, err, daemon.ErrNotRunning)
}

func TestWatch_ConflictingFlags(t *testing.T) {
	te := newTestEnv(t)

	_, _, err := te.execute("watch", "--daemon", "--no-daemon")
	require.Error(t, err)
	assert.Empty(t, te.spawned)
}

func TestWatch_InvalidBackend(t *testing.T) {
	te := newTestEnv(t)
	t.Setenv("INKSCAPE_FIGURES_BACKEND", "kqueue")

	_, _, err := te.execute("watch", "--no-daemon")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestWatch_ForegroundExportsSavedFigures(t *testing.T) {
	te := newTestEnv(t)
	te.fs = afero.NewOsFs()
	t.Setenv("INKSCAPE_FIGURES_BACKEND", "notify")
	t.Setenv("INKSCAPE_FIGURES_DEBOUNCE", "20ms")

	cfgDir := t.TempDir()
	figures := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "roots"), []byte(figures), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		_, _, err := te.executeContext(ctx, "--config-dir", cfgDir, "watch", "--no-daemon")
		done <- err
	}()

	pidFile := os.Getenv("INKSCAPE_FIGURES_PID_FILE")

	require.Eventually(t, func() bool {
		_, err := os.Stat(pidFile)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "PID file was not written")

	svg := filepath.Join(figures, "phase-diagram.svg")

	// Saving may race the watch being armed, so keep touching the figure.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(svg, []byte("<svg/>"), 0o644)
		return len(te.runner.callsOf("run")) > 0
	}, 5*time.Second, 100*time.Millisecond, "figure was not exported")

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not shut down")
	}

	run := te.runner.callsOf("run")[0]
	assert.Equal(t, "inkscape", run.name)
	assert.Equal(t, []string{
		svg, "--export-area-page", "--export-dpi", "300",
		"--export-type=pdf", "--export-filename", filepath.Join(figures, "phase-diagram.pdf"),
	}, run.args)

	require.Eventually(t, func() bool {
		return te.clipboard.Writes() > 0
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, te.clipboard.Text(), `\incfig{phase-diagram}`)

	assert.NoFileExists(t, pidFile)
}
