package inkscape

import (
	"fmt"
	"log/slog"
)

// Editor opens figures in Inkscape for interactive editing.
type Editor struct {
	Editor string
	Runner Runner
	Logger *slog.Logger
}

// Open launches the editor on path and returns without waiting for it.
func (e *Editor) Open(path string) error {
	if err := e.Runner.Start(e.Editor, path); err != nil {
		return fmt.Errorf("launching %s: %w", e.Editor, err)
	}

	if e.Logger != nil {
		e.Logger.Debug("opened figure", slog.String("path", path))
	}

	return nil
}
