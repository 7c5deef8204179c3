// Package latex renders the LaTeX code that includes a figure in a document.
//
// The snippet generator is a strategy resolved once at startup: the built-in
// figure environment, a user text/template in the config directory, or a
// user executable.
package latex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/afero"
)

// Snippeter renders the include code for the figure named name (its slug)
// with caption title.
type Snippeter interface {
	Snippet(name, title string) (string, error)
}

// Func adapts a plain function to Snippeter.
type Func func(name, title string) (string, error)

// Snippet calls f.
func (f Func) Snippet(name, title string) (string, error) {
	return f(name, title)
}

// Default renders the figure environment expected by the \incfig macro.
var Default Snippeter = Func(func(name, title string) (string, error) {
	return strings.Join([]string{
		`\begin{figure}[ht]`,
		`    \centering`,
		`    \incfig{` + name + `}`,
		`    \caption{` + title + `}`,
		`    \label{fig:` + name + `}`,
		`\end{figure}`,
	}, "\n"), nil
})

// Data is the value a snippet template is executed with.
type Data struct {
	Name  string
	Title string
}

// Template renders snippets from a text/template with the sprig functions.
type Template struct {
	tpl *template.Template
}

// ParseTemplate compiles a snippet template.
func ParseTemplate(name, text string) (*Template, error) {
	tpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing snippet template %s: %w", name, err)
	}

	return &Template{tpl: tpl}, nil
}

// Snippet executes the template. A single trailing newline is dropped so file
// based templates behave like the default.
func (t *Template) Snippet(name, title string) (string, error) {
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, Data{Name: name, Title: title}); err != nil {
		return "", fmt.Errorf("rendering snippet template: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Command renders snippets by running an executable as
// "<path> <args...> <name> <title>" and taking its standard output.
type Command struct {
	Path string
	Args []string
}

// NewCommand splits a command line on whitespace.
func NewCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty snippet command")
	}

	return &Command{Path: fields[0], Args: fields[1:]}, nil
}

// Snippet runs the command.
func (c *Command) Snippet(name, title string) (string, error) {
	args := append(append([]string{}, c.Args...), name, title)

	cmd := exec.CommandContext(context.Background(), c.Path, args...) //nolint:gosec

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("snippet command %s: %w: %s", c.Path, err, msg)
		}

		return "", fmt.Errorf("snippet command %s: %w", c.Path, err)
	}

	return strings.TrimSuffix(strings.TrimSuffix(string(out), "\n"), "\r"), nil
}

// Resolve picks the snippet strategy: an explicit command wins over a
// template file, which wins over Default.
func Resolve(fsys afero.Fs, command, templateFile string) (Snippeter, error) {
	if strings.TrimSpace(command) != "" {
		return NewCommand(command)
	}

	data, err := afero.ReadFile(fsys, templateFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default, nil
		}

		return nil, fmt.Errorf("reading snippet template: %w", err)
	}

	return ParseTemplate(templateFile, string(data))
}

// Indent prefixes every line of text with prefix.
func Indent(text, prefix string) string {
	if prefix == "" {
		return text
	}

	lines := strings.Split(text, "\n")

	for i, line := range lines {
		lines[i] = prefix + line
	}

	return strings.Join(lines, "\n")
}

// LeadingWhitespace returns the run of spaces and tabs that starts s.
func LeadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
