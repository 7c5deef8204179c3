package latex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultSnippet = `\begin{figure}[ht]
    \centering
    \incfig{my-figure}
    \caption{My Figure}
    \label{fig:my-figure}
\end{figure}`

func TestDefault(t *testing.T) {
	got, err := Default.Snippet("my-figure", "My Figure")
	require.NoError(t, err)
	assert.Equal(t, defaultSnippet, got)
}

func TestFunc(t *testing.T) {
	var s Snippeter = Func(func(name, title string) (string, error) {
		return name + "|" + title, nil
	})

	got, err := s.Snippet("a", "A")
	require.NoError(t, err)
	assert.Equal(t, "a|A", got)
}

// ---------------------------------------------------------------------------
// Template
// ---------------------------------------------------------------------------

func TestTemplate(t *testing.T) {
	tpl, err := ParseTemplate("snippet.tex", "\\includegraphics{figures/{{ .Name }}.pdf} % {{ .Title | upper }}\n")
	require.NoError(t, err)

	got, err := tpl.Snippet("my-figure", "My Figure")
	require.NoError(t, err)
	assert.Equal(t, `\includegraphics{figures/my-figure.pdf} % MY FIGURE`, got)
}

func TestTemplate_ParseError(t *testing.T) {
	_, err := ParseTemplate("broken", "{{ .Name ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing snippet template")
}

func TestTemplate_ExecError(t *testing.T) {
	tpl, err := ParseTemplate("bad-field", "{{ .Caption }}")
	require.NoError(t, err)

	_, err = tpl.Snippet("a", "A")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Command
// ---------------------------------------------------------------------------

func writeScript(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}

	p := filepath.Join(t.TempDir(), "snippet.sh")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755))

	return p
}

func TestCommand(t *testing.T) {
	script := writeScript(t, `printf '\\fig{%s}{%s}\n' "$1" "$2"`)

	cmd, err := NewCommand(script)
	require.NoError(t, err)

	got, err := cmd.Snippet("my-figure", "My Figure")
	require.NoError(t, err)
	assert.Equal(t, `\fig{my-figure}{My Figure}`, got)
}

func TestCommand_ExtraArgs(t *testing.T) {
	script := writeScript(t, `echo "$1:$2:$3"`)

	cmd, err := NewCommand(script + " --beamer")
	require.NoError(t, err)

	got, err := cmd.Snippet("a", "A")
	require.NoError(t, err)
	assert.Equal(t, "--beamer:a:A", got)
}

func TestCommand_Failure(t *testing.T) {
	script := writeScript(t, "echo boom >&2\nexit 3\n")

	cmd, err := NewCommand(script)
	require.NoError(t, err)

	_, err = cmd.Snippet("a", "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNewCommand_Empty(t *testing.T) {
	_, err := NewCommand("   ")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	fs := afero.NewMemMapFs()

	s, err := Resolve(fs, "", "/cfg/snippet.tex")
	require.NoError(t, err)
	got, err := s.Snippet("my-figure", "My Figure")
	require.NoError(t, err)
	assert.Equal(t, defaultSnippet, got, "missing template falls back to default")

	require.NoError(t, afero.WriteFile(fs, "/cfg/snippet.tex", []byte("{{ .Name }}/{{ .Title }}"), 0o644))

	s, err = Resolve(fs, "", "/cfg/snippet.tex")
	require.NoError(t, err)
	got, err = s.Snippet("a", "A")
	require.NoError(t, err)
	assert.Equal(t, "a/A", got)

	s, err = Resolve(fs, "my-snippet --flag", "/cfg/snippet.tex")
	require.NoError(t, err)
	require.IsType(t, &Command{}, s)
	assert.Equal(t, "my-snippet", s.(*Command).Path)
	assert.Equal(t, []string{"--flag"}, s.(*Command).Args)
}

func TestResolve_BrokenTemplate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/snippet.tex", []byte("{{ if }}"), 0o644))

	_, err := Resolve(fs, "", "/cfg/snippet.tex")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Indent
// ---------------------------------------------------------------------------

func TestIndent(t *testing.T) {
	assert.Equal(t, "a\nb", Indent("a\nb", ""))
	assert.Equal(t, "    a\n    b", Indent("a\nb", "    "))
	assert.Equal(t, "\ta\n\tb", Indent("a\nb", "\t"))
}

func TestLeadingWhitespace(t *testing.T) {
	assert.Equal(t, "", LeadingWhitespace("Title"))
	assert.Equal(t, "    ", LeadingWhitespace("    Title"))
	assert.Equal(t, "\t ", LeadingWhitespace("\t Title"))
	assert.Equal(t, "   ", LeadingWhitespace("   "))
}
