package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/inkscape-figures/internal/config"
	"github.com/hupe1980/inkscape-figures/internal/logging"
)

// Output formats of the roots command.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func newRootsCommand(e *env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "roots",
		Short: "List the registered figure directories",
		Long: `Roots prints the directories the watcher observes, in registration order.
Directories are registered by create and edit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())

			roots, err := e.registry(cfg).List()
			if err != nil {
				return err
			}

			return writeRoots(cmd.OutOrStdout(), format, roots)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", outputText, "output format: text, json, yaml")

	cmd.AddCommand(newRootsRemoveCommand(e))

	return cmd
}

func newRootsRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <dir>",
		Short: "Stop watching a figure directory",
		Long: `Remove drops a directory from the registry. A running watcher notices
the change and releases its watch. Files are left untouched.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: e.completeRoots,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := logging.FromContext(cmd.Context())

			root, err := resolveRoot(args)
			if err != nil {
				return err
			}

			removed, err := e.registry(cfg).Remove(root)
			if err != nil {
				return err
			}

			if !removed {
				return fmt.Errorf("%s is not a registered figure directory", root)
			}

			logger.Info("unregistered figure directory", slog.String("root", root))

			return nil
		},
	}
}

func writeRoots(w io.Writer, format string, roots []string) error {
	if roots == nil {
		roots = []string{}
	}

	switch format {
	case outputText:
		if len(roots) == 0 {
			return nil
		}

		_, err := fmt.Fprintln(w, strings.Join(roots, "\n"))

		return err
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(roots)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(roots); err != nil {
			return fmt.Errorf("encoding roots: %w", err)
		}

		return enc.Close()
	default:
		return &ExitError{Code: 2, Err: fmt.Errorf("invalid output format %q: must be one of text, json, yaml", format)}
	}
}

// completeRoots offers the registered directories for shell completion.
func (e *env) completeRoots(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := config.Load(cmd, "")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	roots, err := e.registry(cfg).List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return roots, cobra.ShellCompDirectiveNoFileComp
}
