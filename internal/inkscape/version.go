package inkscape

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrUnparseableVersion is returned when the version output carries no
// numeric version.
var ErrUnparseableVersion = errors.New("unparseable version string")

// ModernCLI is the first release with the --export-type/--export-filename
// command line.
var ModernCLI = semver.New(1, 0, 0, "", "")

var versionPattern = regexp.MustCompile(`\d+(?:\.\d+)*`)

// ParseVersion extracts the first dotted number from output and right-pads it
// to major.minor.patch:
//
//	"Inkscape 0.92.4 (unknown)"        -> 0.92.4
//	"Inkscape 1.1-dev (3a9df5bcce)"    -> 1.1.0
//	"Inkscape 1.0rc1"                  -> 1.0.0
func ParseVersion(output string) (*semver.Version, error) {
	match := versionPattern.FindString(output)
	if match == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnparseableVersion, strings.TrimSpace(output))
	}

	var parts [3]uint64

	for i, field := range strings.SplitN(match, ".", 4) {
		if i == len(parts) {
			break
		}

		n, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnparseableVersion, match, err)
		}

		parts[i] = n
	}

	return semver.New(parts[0], parts[1], parts[2], "", ""), nil
}

// UsesModernCLI reports whether v understands the 1.0 export flags.
func UsesModernCLI(v *semver.Version) bool {
	return !v.LessThan(ModernCLI)
}

// Probe detects the installed Inkscape version.
type Probe struct {
	Editor string
	Runner Runner
}

// Detect runs "<editor> --version" and parses its output.
func (p *Probe) Detect(ctx context.Context) (*semver.Version, error) {
	out, err := p.Runner.Output(ctx, p.Editor, "--version")
	if err != nil {
		return nil, fmt.Errorf("running %s --version: %w", p.Editor, err)
	}

	v, err := ParseVersion(string(out))
	if err != nil {
		return nil, fmt.Errorf("detecting %s version: %w", p.Editor, err)
	}

	return v, nil
}
