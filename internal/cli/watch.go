package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/inkscape-figures/internal/config"
	"github.com/hupe1980/inkscape-figures/internal/daemon"
	"github.com/hupe1980/inkscape-figures/internal/inkscape"
	"github.com/hupe1980/inkscape-figures/internal/logging"
	"github.com/hupe1980/inkscape-figures/internal/watch"
)

type watchOptions struct {
	daemon   bool
	noDaemon bool
	stop     bool
}

func newWatchCommand(e *env) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Export figures to PDF whenever they are saved",
		Long: `Watch observes every registered figure directory. When an SVG is saved it
is exported to a PDF next to it with Inkscape, and the LaTeX code including
the figure is copied to the clipboard. Directories registered while the
watcher runs are picked up immediately.

By default the watcher detaches and runs in the background, logging to
watch.log in the config directory. Use --no-daemon to keep it in the
foreground and --stop to end a background watcher.

The file watching backend is chosen with the "backend" setting: notify uses
the operating system's change notifications, process reads paths printed by
fswatch, auto picks one for the platform.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, e, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.daemon, "daemon", true, "run the watcher in the background")
	f.BoolVar(&opts.noDaemon, "no-daemon", false, "run the watcher in the foreground")
	f.BoolVar(&opts.stop, "stop", false, "stop the background watcher")

	cmd.MarkFlagsMutuallyExclusive("daemon", "no-daemon")
	cmd.MarkFlagsMutuallyExclusive("stop", "no-daemon")

	return cmd
}

func runWatch(cmd *cobra.Command, e *env, opts *watchOptions) error {
	cfg := config.FromContext(cmd.Context())
	out := cmd.OutOrStdout()

	if opts.stop {
		pid, err := daemon.Stop(cfg.PIDFile)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(out, "stopped watcher (pid %d)\n", pid)

		return err
	}

	if pid, ok := daemon.Running(cfg.PIDFile); ok && pid != os.Getpid() {
		return fmt.Errorf("watcher already running (pid %d)", pid)
	}

	if opts.daemon && !opts.noDaemon && !daemon.IsChild() {
		pid, err := e.spawn(os.Args[1:], cfg.WatchLogFile())
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(out, "watching in the background (pid %d), logging to %s\n", pid, cfg.WatchLogFile())

		return err
	}

	return watchForeground(cmd, e, cfg)
}

func watchForeground(cmd *cobra.Command, e *env, cfg *config.Config) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	if err := daemon.WritePID(cfg.PIDFile); err != nil {
		return err
	}

	defer func() {
		if err := daemon.RemovePID(cfg.PIDFile); err != nil {
			logger.Warn("removing PID file", slog.String("error", err.Error()))
		}
	}()

	backend, err := watch.NewBackend(cfg.Backend, cfg.FSWatch, e.lookPath)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	defer backend.Close()

	snippets, err := e.snippets(cfg)
	if err != nil {
		return err
	}

	exporter := &inkscape.Exporter{
		Editor:    cfg.Editor,
		DPI:       cfg.DPI,
		Runner:    e.runner,
		Clipboard: e.clipboard,
		Snippets:  snippets,
		Logger:    logger,
	}

	watchOpts := watch.DefaultOptions()
	watchOpts.Backend = backend
	watchOpts.RegistryPath = cfg.RootsFile()
	watchOpts.Debounce = cfg.Debounce
	watchOpts.Logger = logger

	logger.Info("starting watcher",
		slog.String("backend", fmt.Sprintf("%T", backend)),
		slog.String("roots", cfg.RootsFile()),
	)

	err = watch.Run(ctx, watchOpts, e.registry(cfg), exporter.Recompile)
	if errors.Is(err, watch.ErrBackendTerminated) {
		return fmt.Errorf("watcher stopped unexpectedly: %w", err)
	}

	return err
}
