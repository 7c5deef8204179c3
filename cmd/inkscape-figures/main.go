// inkscape-figures watches Inkscape figure directories, exports saved SVGs to
// PDF and puts LaTeX include code on the clipboard.
package main

import (
	"os"

	"github.com/hupe1980/inkscape-figures/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
