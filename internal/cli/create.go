package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hupe1980/inkscape-figures/internal/config"
	"github.com/hupe1980/inkscape-figures/internal/figure"
	"github.com/hupe1980/inkscape-figures/internal/latex"
	"github.com/hupe1980/inkscape-figures/internal/logging"
)

func newCreateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <title> [root]",
		Short: "Create a figure from the template and open it in Inkscape",
		Long: `Create copies the figure template to <root>/<slug>.svg, registers the
directory for watching, opens the new file in Inkscape and prints the LaTeX
code including the figure.

The slug is the title lowercased with spaces replaced by hyphens. The
printed code is indented like the title argument, so an editor macro can
pass the current line through unchanged. If the figure already exists
nothing is created and "<title> 2" is printed as a suggestion.

root defaults to the current directory and is created when missing.`,
		Example: `  inkscape-figures create "Phase diagram" figures/
  inkscape-figures create "    Energy levels"`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeRootArg(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, e, args[0], args[1:])
		},
	}

	return cmd
}

func runCreate(cmd *cobra.Command, e *env, title string, rootArgs []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return &ExitError{Code: 2, Err: errors.New("title must not be empty")}
	}

	root, err := resolveRoot(rootArgs)
	if err != nil {
		return err
	}

	if err := e.fs.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating figure directory: %w", err)
	}

	path := filepath.Join(root, figure.FileName(title))

	exists, err := afero.Exists(e.fs, path)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if exists {
		logger.Debug("figure already exists", slog.String("path", path))

		_, err = fmt.Fprintln(cmd.OutOrStdout(), trimmed+" 2")

		return err
	}

	snippets, err := e.snippets(cfg)
	if err != nil {
		return err
	}

	if err := copyTemplate(e.fs, cfg.TemplateFile(), path); err != nil {
		return err
	}

	logger.Info("created figure", slog.String("path", path))

	if err := e.register(cfg, logger, root); err != nil {
		return err
	}

	if err := e.editor(cfg, logger).Open(path); err != nil {
		return err
	}

	snippet, err := snippets.Snippet(figure.Slug(title), trimmed)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), latex.Indent(snippet, latex.LeadingWhitespace(title)))

	return err
}

// copyTemplate writes the template to path, refusing to replace a file that
// appeared in the meantime.
func copyTemplate(fs afero.Fs, template, path string) error {
	data, err := afero.ReadFile(fs, template)
	if err != nil {
		return fmt.Errorf("reading figure template: %w", err)
	}

	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating figure: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing figure: %w", err)
	}

	return f.Close()
}
