// Package figure derives names and paths for Inkscape figures.
//
// A figure is an SVG file. Its slug is the file stem, its display title is the
// stem with separators turned into spaces and title-cased, and its exported
// counterpart is the sibling PDF with the same stem.
package figure

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/afero"
)

// Ext is the extension of figure sources.
const Ext = ".svg"

// PDFExt is the extension of exported figures.
const PDFExt = ".pdf"

// Slug turns a user supplied title into a file stem: surrounding whitespace
// trimmed, spaces replaced by hyphens, lowercased.
func Slug(title string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "-"))
}

// FileName returns the figure file name for title.
func FileName(title string) string {
	return Slug(title) + Ext
}

// Beautify turns a figure stem into a display title.
func Beautify(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)

	return titleCase(name)
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so "3d-plot" reads "3D Plot".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inWord := false

	for _, r := range s {
		if unicode.IsLetter(r) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}

			inWord = true

			continue
		}

		inWord = false

		b.WriteRune(r)
	}

	return b.String()
}

// IsFigure reports whether path names a figure source.
func IsFigure(path string) bool {
	return filepath.Ext(path) == Ext
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PDFPath returns the export target next to the figure at path.
func PDFPath(path string) string {
	return filepath.Join(filepath.Dir(path), Stem(path)+PDFExt)
}

// List returns the figures directly inside root, most recently modified
// first.
func List(fsys afero.Fs, root string) ([]string, error) {
	matches, err := afero.Glob(fsys, filepath.Join(root, "*"+Ext))
	if err != nil {
		return nil, fmt.Errorf("listing figures in %s: %w", root, err)
	}

	type entry struct {
		path string
		info fs.FileInfo
	}

	entries := make([]entry, 0, len(matches))

	for _, m := range matches {
		info, err := fsys.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m, err)
		}

		if info.IsDir() {
			continue
		}

		entries = append(entries, entry{path: m, info: info})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].info.ModTime().After(entries[j].info.ModTime())
	})

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.path
	}

	return paths, nil
}
