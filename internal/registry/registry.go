// Package registry persists the set of figure root directories watched by
// inkscape-figures.
//
// The backing store is a plain text file holding one directory per line.
// Membership is a set with insertion order preserved. Every change rewrites
// the whole file through a temporary sibling and a rename, so readers never
// observe a partially written list. There is no locking: concurrent writers
// race and the last rename wins.
package registry

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// Registry is the file-backed list of figure roots.
type Registry struct {
	fs   afero.Fs
	path string
}

// New returns a Registry stored at path on fs.
func New(fs afero.Fs, path string) *Registry {
	return &Registry{fs: fs, path: path}
}

// Path returns the location of the backing file.
func (r *Registry) Path() string {
	return r.path
}

// List returns the registered roots in file order. Empty lines are skipped.
func (r *Registry) List() ([]string, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return nil, fmt.Errorf("reading roots file %s: %w", r.path, err)
	}

	return parse(string(data)), nil
}

// Add registers root. It reports false without touching the file when the
// root is already present.
func (r *Registry) Add(root string) (bool, error) {
	roots, err := r.List()
	if err != nil {
		return false, err
	}

	if slices.Contains(roots, root) {
		return false, nil
	}

	if err := r.write(append(roots, root)); err != nil {
		return false, err
	}

	return true, nil
}

// Remove unregisters root. It reports false when the root was not present.
func (r *Registry) Remove(root string) (bool, error) {
	roots, err := r.List()
	if err != nil {
		return false, err
	}

	idx := slices.Index(roots, root)
	if idx < 0 {
		return false, nil
	}

	if err := r.write(slices.Delete(roots, idx, idx+1)); err != nil {
		return false, err
	}

	return true, nil
}

// write replaces the backing file with roots joined by newlines.
func (r *Registry) write(roots []string) error {
	dir := filepath.Dir(r.path)

	tmp, err := afero.TempFile(r.fs, dir, ".roots-*")
	if err != nil {
		return fmt.Errorf("creating temporary roots file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strings.Join(roots, "\n")); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)

		return fmt.Errorf("writing roots file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)

		return fmt.Errorf("closing roots file: %w", err)
	}

	if err := r.fs.Rename(tmpName, r.path); err != nil {
		_ = r.fs.Remove(tmpName)

		return fmt.Errorf("replacing roots file %s: %w", r.path, err)
	}

	return nil
}

func parse(content string) []string {
	lines := strings.Split(content, "\n")
	roots := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		roots = append(roots, line)
	}

	return roots
}
