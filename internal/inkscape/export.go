package inkscape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/hupe1980/inkscape-figures/internal/clipboard"
	"github.com/hupe1980/inkscape-figures/internal/figure"
	"github.com/hupe1980/inkscape-figures/internal/latex"
)

// DefaultDPI is the export resolution used when none is configured.
const DefaultDPI = 300

// ExportArgs returns the Inkscape arguments exporting svg to pdf for the
// given Inkscape version.
func ExportArgs(v *semver.Version, svg, pdf string, dpi int) []string {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	if UsesModernCLI(v) {
		return []string{
			svg,
			"--export-area-page",
			"--export-dpi", strconv.Itoa(dpi),
			"--export-type=pdf",
			"--export-filename", pdf,
		}
	}

	return []string{
		"--export-area-page",
		"--export-dpi", strconv.Itoa(dpi),
		"--export-pdf", pdf,
		svg,
	}
}

// Exporter recompiles figures to PDF and delivers their include code through
// the clipboard.
type Exporter struct {
	Editor    string
	DPI       int
	Runner    Runner
	Clipboard clipboard.Clipboard
	Snippets  latex.Snippeter
	Logger    *slog.Logger
}

// Recompile exports the figure at path and copies its LaTeX snippet to the
// clipboard. Paths that are not figures are ignored. A failing export is
// logged and the snippet is still copied; only a failed version probe or
// clipboard write is returned.
func (e *Exporter) Recompile(ctx context.Context, path string) error {
	logger := e.logger()

	if !figure.IsFigure(path) {
		logger.Debug("file changed, but is not a figure", slog.String("path", path))
		return nil
	}

	logger.Info("recompiling figure", slog.String("path", path))

	pdf := figure.PDFPath(path)
	name := figure.Stem(path)

	probe := Probe{Editor: e.Editor, Runner: e.Runner}

	v, err := probe.Detect(ctx)
	if err != nil {
		return err
	}

	logger.Debug("detected inkscape", slog.String("version", v.String()))

	args := ExportArgs(v, path, pdf, e.DPI)

	logger.Debug("running export", slog.String("command", e.Editor+" "+strings.Join(args, " ")))

	if err := e.Runner.Run(ctx, e.Editor, args...); err != nil {
		attrs := []any{slog.String("path", path), slog.String("error", err.Error())}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			attrs = append(attrs, slog.Int("exitCode", exitErr.ExitCode()))
		}

		logger.Error("export failed", attrs...)
	} else {
		logger.Debug("export succeeded", slog.String("pdf", pdf))
	}

	return e.copySnippet(name)
}

func (e *Exporter) copySnippet(name string) error {
	snippets := e.Snippets
	if snippets == nil {
		snippets = latex.Default
	}

	text, err := snippets.Snippet(name, figure.Beautify(name))
	if err != nil {
		return err
	}

	if err := e.Clipboard.Write(text); err != nil {
		return fmt.Errorf("copying snippet to clipboard: %w", err)
	}

	e.logger().Debug("copied latex snippet", slog.String("snippet", latex.Indent(text, "    ")))

	return nil
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}

	return e.Logger
}
