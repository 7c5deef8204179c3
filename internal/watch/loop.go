package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// RootLister supplies the directories to watch.
type RootLister interface {
	List() ([]string, error)
}

// HandlerFunc is called with every settled change inside a watched root.
// Errors are logged; they never stop the loop.
type HandlerFunc func(ctx context.Context, path string) error

// Options configures the watch loop.
type Options struct {
	// Backend delivers file events. Run does not close it.
	Backend Backend

	// RegistryPath is the roots file. A change to it re-establishes all
	// watches.
	RegistryPath string

	// Debounce is the quiet period per file before the handler runs. Zero
	// hands every event to the handler immediately.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// OnArmed, if set, is called each time watches have been established
	// with the roots read from the registry.
	OnArmed func(roots []string)
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 200 * time.Millisecond,
		Logger:   slog.Default(),
	}
}

// Run watches the registry file and every registered root until ctx is
// cancelled or a SIGINT/SIGTERM signal is received. The handler runs on the
// calling goroutine, one change at a time.
func Run(ctx context.Context, opts Options, roots RootLister, handle HandlerFunc) error {
	if opts.Backend == nil {
		return errors.New("watch: no backend")
	}

	if opts.RegistryPath == "" {
		return errors.New("watch: no registry path")
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := &loop{
		opts:     opts,
		roots:    roots,
		handle:   handle,
		registry: filepath.Clean(opts.RegistryPath),
	}

	if opts.Debounce > 0 {
		l.debouncer = NewDebouncer(opts.Debounce)
		defer l.debouncer.Stop()
	}

	for {
		if err := l.establish(); err != nil {
			_ = opts.Backend.Disarm()
			return err
		}

		rebuild, err := l.wait(sigCtx)

		if disarmErr := opts.Backend.Disarm(); disarmErr != nil {
			opts.Logger.Debug("releasing watches", slog.String("error", disarmErr.Error()))
		}

		if err != nil || !rebuild {
			return err
		}

		opts.Logger.Info("the roots file has been updated, updating watches")
	}
}

type loop struct {
	opts      Options
	roots     RootLister
	handle    HandlerFunc
	registry  string
	debouncer *Debouncer
	watched   map[string]bool
}

// establish reads the registry and arms the registry directory plus every
// root. The registry is watched through its directory because whole-file
// replacement by rename would drop a watch on the file itself.
func (l *loop) establish() error {
	roots, err := l.roots.List()
	if err != nil {
		return fmt.Errorf("reading roots: %w", err)
	}

	if err := l.opts.Backend.Arm([]string{filepath.Dir(l.registry)}); err != nil {
		return fmt.Errorf("watching roots file: %w", err)
	}

	l.watched = make(map[string]bool, len(roots))

	for _, root := range roots {
		l.watched[filepath.Clean(root)] = true
	}

	l.opts.Logger.Info("watching directories", slog.String("roots", strings.Join(roots, ", ")))

	if err := l.opts.Backend.Arm(roots); err != nil {
		l.opts.Logger.Warn("could not watch some roots", slog.String("error", err.Error()))
	}

	if l.opts.OnArmed != nil {
		l.opts.OnArmed(roots)
	}

	return nil
}

// wait blocks for events. It reports true when the registry changed and the
// watches must be rebuilt.
func (l *loop) wait(ctx context.Context) (bool, error) {
	var settled <-chan string
	if l.debouncer != nil {
		settled = l.debouncer.C()
	}

	for {
		select {
		case <-ctx.Done():
			l.opts.Logger.Info("shutting down watcher")
			return false, nil

		case event, ok := <-l.opts.Backend.Events():
			if !ok {
				return false, ErrBackendTerminated
			}

			path := filepath.Clean(event.Path)

			if path == l.registry {
				if event.Op.Has(Write | Create) {
					return true, nil
				}

				continue
			}

			if !l.watched[filepath.Dir(path)] {
				l.opts.Logger.Debug("ignoring change outside figure roots", slog.String("path", path))
				continue
			}

			if !isRelevant(event) {
				continue
			}

			if l.debouncer != nil {
				l.debouncer.Trigger(path)
				continue
			}

			l.dispatch(ctx, path)

		case path := <-settled:
			l.dispatch(ctx, path)

		case err, ok := <-l.opts.Backend.Errors():
			if !ok {
				return false, ErrBackendTerminated
			}

			if errors.Is(err, ErrBackendTerminated) {
				return false, err
			}

			l.opts.Logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

func (l *loop) dispatch(ctx context.Context, path string) {
	if err := l.handle(ctx, path); err != nil {
		l.opts.Logger.Error("handling change failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

// isRelevant filters out deletions and editor temporary files.
func isRelevant(event Event) bool {
	if !event.Op.Has(Write | Create) {
		return false
	}

	name := filepath.Base(event.Path)

	// Ignore editor temporary files and hidden files.
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return true
}
