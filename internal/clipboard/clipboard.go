// Package clipboard delivers text to the system clipboard.
package clipboard

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available, e.g.
// neither xclip, xsel nor wl-copy is installed on Linux.
var ErrUnsupported = errors.New("no clipboard utility available")

// Clipboard receives text for pasting.
type Clipboard interface {
	Write(text string) error
}

// System writes to the desktop clipboard.
type System struct{}

// Write implements Clipboard.
func (System) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}

	return clipboard.WriteAll(text)
}

// Memory keeps the last written text. It is used where no desktop clipboard
// exists and in tests.
type Memory struct {
	mu     sync.Mutex
	text   string
	writes int
}

// Write implements Clipboard.
func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.text = text
	m.writes++

	return nil
}

// Text returns the last written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.text
}

// Writes returns how often Write was called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}
