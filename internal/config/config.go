// Package config provides configuration management for inkscape-figures.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (INKSCAPE_FIGURES_ prefix)
//  3. Config file (config.yaml in the configuration directory)
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AppName names the per-user configuration directory and the PID file.
const AppName = "inkscape-figures"

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Supported watch backends.
const (
	BackendAuto    = "auto"
	BackendNotify  = "notify"
	BackendProcess = "process"
)

// Config represents the global configuration for inkscape-figures.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Dir is the per-user directory holding the roots file, the figure
	// template and optional overrides.
	Dir string `mapstructure:"config-dir" json:"configDir"`

	// Editor is the Inkscape binary used for exports and for opening figures.
	Editor string `mapstructure:"editor" json:"editor"`

	// DPI is the export resolution passed to Inkscape.
	DPI int `mapstructure:"dpi" json:"dpi"`

	// Backend selects the directory watcher: auto, notify or process.
	Backend string `mapstructure:"backend" json:"backend"`

	// FSWatch is the fswatch binary used by the process backend.
	FSWatch string `mapstructure:"fswatch" json:"fswatch"`

	// Debounce is the quiet period after a write before a figure is exported.
	Debounce time.Duration `mapstructure:"debounce" json:"debounce"`

	// Picker selects the figure picker used by edit: auto, tui, rofi, dmenu,
	// fzf or a custom dmenu-style command line.
	Picker string `mapstructure:"picker" json:"picker"`

	// SnippetCommand is an optional executable producing the LaTeX snippet.
	// It is invoked as "<command> <name> <title>".
	SnippetCommand string `mapstructure:"snippet-command" json:"snippetCommand"`

	// PIDFile is where the background watcher records its process id.
	PIDFile string `mapstructure:"pid-file" json:"pidFile"`

	// LogFile receives the background watcher's output. Defaults to
	// watch.log in Dir.
	LogFile string `mapstructure:"log-file" json:"logFile"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), never read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// DefaultDir returns the per-user configuration directory, falling back to
// ~/.config when the platform has no notion of one.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", AppName)
	}

	return AppName
}

// DefaultPIDFile returns the well-known PID file location.
func DefaultPIDFile() string {
	return filepath.Join(os.TempDir(), AppName+".pid")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
		Dir:       DefaultDir(),
		Editor:    "inkscape",
		DPI:       300,
		Backend:   BackendAuto,
		FSWatch:   "fswatch",
		Debounce:  200 * time.Millisecond,
		Picker:    "auto",
		PIDFile:   DefaultPIDFile(),
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	switch c.Backend {
	case BackendAuto, BackendNotify, BackendProcess:
		// valid
	default:
		return fmt.Errorf("invalid backend %q: must be one of auto, notify, process", c.Backend)
	}

	if c.DPI <= 0 {
		return fmt.Errorf("invalid dpi %d: must be positive", c.DPI)
	}

	if c.Debounce < 0 {
		return fmt.Errorf("invalid debounce %s: must not be negative", c.Debounce)
	}

	if strings.TrimSpace(c.Dir) == "" {
		return fmt.Errorf("config-dir must not be empty")
	}

	if strings.TrimSpace(c.Editor) == "" {
		return fmt.Errorf("editor must not be empty")
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// RootsFile is the newline-delimited registry of figure directories.
func (c *Config) RootsFile() string {
	return filepath.Join(c.Dir, "roots")
}

// TemplateFile is the SVG copied for every new figure.
func (c *Config) TemplateFile() string {
	return filepath.Join(c.Dir, "template.svg")
}

// SnippetTemplateFile is the optional text/template overriding the LaTeX
// snippet.
func (c *Config) SnippetTemplateFile() string {
	return filepath.Join(c.Dir, "snippet.tex")
}

// WatchLogFile is where the background watcher writes its log.
func (c *Config) WatchLogFile() string {
	if c.LogFile != "" {
		return c.LogFile
	}

	return filepath.Join(c.Dir, "watch.log")
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	// The config directory may itself come from a flag or the environment,
	// so the file source is configured after binding.
	if err := configureFile(v, configFile, v.GetString("config-dir")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Store the resolved config file path so downstream code can locate it.
	cfg.ConfigFile = v.ConfigFileUsed()

	if abs, err := filepath.Abs(cfg.Dir); err == nil {
		cfg.Dir = abs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("config-dir", d.Dir)
	v.SetDefault("editor", d.Editor)
	v.SetDefault("dpi", d.DPI)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("fswatch", d.FSWatch)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("picker", d.Picker)
	v.SetDefault("snippet-command", "")
	v.SetDefault("pid-file", d.PIDFile)
	v.SetDefault("log-file", "")
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("INKSCAPE_FIGURES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile, dir string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	// Auto-discovery mode.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		// No config file found → perfectly fine in auto-discovery.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}

		// Found a file but it was malformed.
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	// Bind the current command's own flags.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	// Walk up to root and bind all persistent flags at each level.
	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
