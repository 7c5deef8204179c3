package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
)

// DefaultTemplate is the SVG seeded into the config directory on first run.
//
//go:embed template.svg
var DefaultTemplate []byte

// EnsureLayout creates the configuration directory, an empty roots file and
// the default figure template when any of them is missing. Existing files are
// never touched, so a user-edited template survives.
func EnsureLayout(fs afero.Fs, cfg *Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if err := fs.MkdirAll(cfg.Dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory %s: %w", cfg.Dir, err)
	}

	created, err := createIfMissing(fs, cfg.RootsFile(), nil)
	if err != nil {
		return err
	}

	if created {
		logger.Debug("created roots file", slog.String("path", cfg.RootsFile()))
	}

	created, err = createIfMissing(fs, cfg.TemplateFile(), DefaultTemplate)
	if err != nil {
		return err
	}

	if created {
		logger.Debug("seeded figure template", slog.String("path", cfg.TemplateFile()))
	}

	return nil
}

func createIfMissing(fs afero.Fs, path string, data []byte) (bool, error) {
	if _, err := fs.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}

	return true, nil
}
