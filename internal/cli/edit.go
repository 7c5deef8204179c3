package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/inkscape-figures/internal/config"
	"github.com/hupe1980/inkscape-figures/internal/figure"
	"github.com/hupe1980/inkscape-figures/internal/logging"
)

func newEditCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [root]",
		Short: "Pick an existing figure and open it in Inkscape",
		Long: `Edit lists the figures in root, most recently modified first, and lets
you pick one. The chosen figure is opened in Inkscape, its directory is
registered for watching and the LaTeX code including it is copied to the
clipboard. Nothing is printed.

The picker is chosen with the "picker" setting: auto (rofi when installed,
otherwise a terminal list), tui, rofi, dmenu, fzf or any command reading
choices on stdin and printing the selection.

root defaults to the current directory and must exist.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRootArg(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, e, args)
		},
	}

	return cmd
}

func runEdit(cmd *cobra.Command, e *env, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	info, err := e.fs.Stat(root)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking figure directory: %w", err)
	}

	if err != nil || !info.IsDir() {
		return &ExitError{Code: 2, Err: fmt.Errorf("figure directory %s does not exist", root)}
	}

	figures, err := figure.List(e.fs, root)
	if err != nil {
		return err
	}

	if len(figures) == 0 {
		logger.Info("no figures found", slog.String("root", root))
		return nil
	}

	titles := make([]string, len(figures))
	for i, f := range figures {
		titles[i] = figure.Beautify(figure.Stem(f))
	}

	p, err := e.picker(cfg.Picker)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	index, ok, err := p.Pick(ctx, "Select figure", titles)
	if err != nil {
		return fmt.Errorf("picking figure: %w", err)
	}

	if !ok {
		logger.Debug("no figure selected")
		return nil
	}

	path := figures[index]

	snippets, err := e.snippets(cfg)
	if err != nil {
		return err
	}

	if err := e.register(cfg, logger, root); err != nil {
		return err
	}

	if err := e.editor(cfg, logger).Open(path); err != nil {
		return err
	}

	name := figure.Stem(path)

	snippet, err := snippets.Snippet(name, figure.Beautify(name))
	if err != nil {
		return err
	}

	if err := e.clipboard.Write(snippet); err != nil {
		return fmt.Errorf("copying snippet to clipboard: %w", err)
	}

	logger.Info("copied latex snippet to clipboard", slog.String("figure", name))

	return nil
}
