package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/inkscape-figures/internal/config"
	"github.com/hupe1980/inkscape-figures/internal/inkscape"
	"github.com/hupe1980/inkscape-figures/internal/latex"
	"github.com/hupe1980/inkscape-figures/internal/registry"
)

func (e *env) registry(cfg *config.Config) *registry.Registry {
	return registry.New(e.fs, cfg.RootsFile())
}

func (e *env) snippets(cfg *config.Config) (latex.Snippeter, error) {
	s, err := latex.Resolve(e.fs, cfg.SnippetCommand, cfg.SnippetTemplateFile())
	if err != nil {
		return nil, &ExitError{Code: 2, Err: err}
	}

	return s, nil
}

func (e *env) editor(cfg *config.Config, logger *slog.Logger) *inkscape.Editor {
	return &inkscape.Editor{Editor: cfg.Editor, Runner: e.runner, Logger: logger}
}

// register records root and logs when it is new.
func (e *env) register(cfg *config.Config, logger *slog.Logger, root string) error {
	added, err := e.registry(cfg).Add(root)
	if err != nil {
		return err
	}

	if added {
		logger.Info("registered figure directory", slog.String("root", root))
	}

	return nil
}

// resolveRoot turns the optional root argument into an absolute directory,
// defaulting to the working directory.
func resolveRoot(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}

		return wd, nil
	}

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", args[0], err)
	}

	return abs, nil
}

// completeRootArg completes directories for the positional root argument at
// position pos.
func completeRootArg(pos int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) == pos {
			return nil, cobra.ShellCompDirectiveFilterDirs
		}

		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}
