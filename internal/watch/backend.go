package watch

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrBackendTerminated reports that a backend stopped delivering events on
// its own, e.g. the fswatch process died.
var ErrBackendTerminated = errors.New("watch backend terminated")

// Op describes what happened to a path.
type Op uint8

// Operations reported by backends.
const (
	Write Op = 1 << iota
	Create
	Remove
	Rename
)

// Has reports whether o includes any of the operations in x.
func (o Op) Has(x Op) bool {
	return o&x != 0
}

func (o Op) String() string {
	var parts []string

	for _, op := range []struct {
		op   Op
		name string
	}{{Write, "WRITE"}, {Create, "CREATE"}, {Remove, "REMOVE"}, {Rename, "RENAME"}} {
		if o.Has(op.op) {
			parts = append(parts, op.name)
		}
	}

	if len(parts) == 0 {
		return "NONE"
	}

	return strings.Join(parts, "|")
}

// Event is a change to a file inside a watched directory.
type Event struct {
	Path string
	Op   Op
}

func (e Event) String() string {
	return fmt.Sprintf("%s %q", e.Op, e.Path)
}

// Backend is a directory watcher. Arm and Disarm are only called from the
// loop goroutine.
type Backend interface {
	// Arm starts watching paths. It is best effort: every path that can be
	// watched is, and the failures are returned joined.
	Arm(paths []string) error

	// Disarm releases every watch established by Arm.
	Disarm() error

	// Events delivers changes below armed paths.
	Events() <-chan Event

	// Errors delivers backend failures. ErrBackendTerminated is fatal.
	Errors() <-chan error

	// Close releases all resources.
	Close() error
}

// Backend kinds accepted by NewBackend.
const (
	KindAuto    = "auto"
	KindNotify  = "notify"
	KindProcess = "process"
)

// NewBackend constructs the backend named kind. "auto" uses fsnotify on Linux
// and Windows; elsewhere it prefers fswatch when found on PATH.
func NewBackend(kind, fswatch string, lookPath func(string) (string, error)) (Backend, error) {
	switch kind {
	case KindNotify:
		return NewNotifyBackend()
	case KindProcess:
		return NewProcessBackend(fswatch), nil
	case KindAuto, "":
		if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
			if _, err := lookPath(fswatch); err == nil {
				return NewProcessBackend(fswatch), nil
			}
		}

		return NewNotifyBackend()
	default:
		return nil, fmt.Errorf("unknown watch backend %q", kind)
	}
}
