// Package cli implements the cobra command tree for inkscape-figures.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hupe1980/inkscape-figures/internal/clipboard"
	"github.com/hupe1980/inkscape-figures/internal/config"
	"github.com/hupe1980/inkscape-figures/internal/daemon"
	"github.com/hupe1980/inkscape-figures/internal/inkscape"
	"github.com/hupe1980/inkscape-figures/internal/logging"
	"github.com/hupe1980/inkscape-figures/internal/picker"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

// env holds the collaborators commands talk to. Tests replace them with
// in-memory fakes.
type env struct {
	fs        afero.Fs
	runner    inkscape.Runner
	clipboard clipboard.Clipboard
	picker    func(kind string) (picker.Picker, error)
	lookPath  func(file string) (string, error)
	spawn     func(args []string, logPath string) (int, error)
}

func defaultEnv() *env {
	return &env{
		fs:        afero.NewOsFs(),
		runner:    &inkscape.ExecRunner{Stdout: os.Stderr, Stderr: os.Stderr},
		clipboard: clipboard.System{},
		picker:    picker.New,
		lookPath:  exec.LookPath,
		spawn:     daemon.Spawn,
	}
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultEnv())
}

func newRootCommand(e *env) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Manage Inkscape figures for LaTeX documents",
		Long: `inkscape-figures keeps vector figures of LaTeX documents in sync.

It remembers every directory holding figures, watches those directories and
exports each saved SVG to PDF with Inkscape. After every export the LaTeX
code including the figure is copied to the clipboard, ready to paste.

Create a figure from a template with "create", pick an existing one with
"edit" and keep PDFs current with "watch".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			var attrs []slog.Attr
			if daemon.IsChild() {
				attrs = append(attrs, slog.Int("pid", os.Getpid()))
			}

			logger := logging.SetupWithWriter(cfg, cmd.ErrOrStderr(), attrs...)

			if err := config.EnsureLayout(e.fs, cfg, logger); err != nil {
				return err
			}

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("configDir", cfg.Dir),
				slog.String("configFile", cfg.ConfigFile),
				slog.String("logLevel", cfg.LogLevel),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: config.yaml in the config directory)")
	pf.String("config-dir", config.DefaultDir(), "directory holding roots, template.svg and config.yaml")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newWatchCommand(e),
		newCreateCommand(e),
		newEditCommand(e),
		newRootsCommand(e),
		newVersionCommand(e),
		newCompletionCommand(),
	)

	return cmd
}
