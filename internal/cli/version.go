package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/inkscape-figures/internal/config"
	"github.com/hupe1980/inkscape-figures/internal/inkscape"
	"github.com/hupe1980/inkscape-figures/internal/version"
)

func newVersionCommand(e *env) *cobra.Command {
	var (
		jsonOutput bool
		probe      bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Display the version, git commit, build date, Go version, and platform.
With --inkscape the version of the configured Inkscape binary is detected
too, which decides between the legacy and the 1.0 export command line.`,
		Args: cobra.NoArgs,
		// Override parent PersistentPreRunE: version needs no config directory.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()

			if probe {
				cfg, err := config.Load(cmd, cmd.Flag("config").Value.String())
				if err != nil {
					return &ExitError{Code: 2, Err: err}
				}

				p := inkscape.Probe{Editor: cfg.Editor, Runner: e.runner}

				v, err := p.Detect(cmd.Context())
				if err != nil {
					return err
				}

				info.Inkscape = v.String()
			}

			if jsonOutput {
				j, err := info.JSON()
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), j)

				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")
	cmd.Flags().BoolVar(&probe, "inkscape", false, "also detect the Inkscape version")

	return cmd
}
