// Package picker asks the user to choose one entry from a list.
//
// Two kinds of pickers exist: external dmenu-style programs (rofi, dmenu,
// fzf or any command reading choices on stdin and printing the selection on
// stdout) and a terminal list built with bubbletea.
package picker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Picker presents items and returns the index of the chosen one. ok is false
// when the user dismissed the picker without choosing.
type Picker interface {
	Pick(ctx context.Context, prompt string, items []string) (index int, ok bool, err error)
}

// New returns the picker named kind: "tui", "rofi", "dmenu", "fzf", "auto"
// or a custom command line.
func New(kind string) (Picker, error) {
	switch strings.TrimSpace(kind) {
	case "", "auto":
		return Auto(exec.LookPath), nil
	case "tui":
		return &TUI{In: os.Stdin, Out: os.Stderr}, nil
	case "rofi":
		return Rofi(), nil
	case "dmenu":
		return Dmenu(), nil
	case "fzf":
		return FZF(), nil
	}

	fields := strings.Fields(kind)

	return &Command{Path: fields[0], Args: fields[1:]}, nil
}

// Auto prefers rofi, which works without a terminal, and falls back to the
// terminal picker.
func Auto(lookPath func(string) (string, error)) Picker {
	if _, err := lookPath("rofi"); err == nil {
		return Rofi()
	}

	return &TUI{In: os.Stdin, Out: os.Stderr}
}

// Rofi returns a picker backed by "rofi -dmenu". rofi reports the chosen
// index itself.
func Rofi() *Command {
	return &Command{
		Path:        "rofi",
		Args:        []string{"-dmenu", "-i", "-format", "i"},
		PromptFlag:  "-p",
		PrintsIndex: true,
	}
}

// Dmenu returns a picker backed by dmenu.
func Dmenu() *Command {
	return &Command{Path: "dmenu", Args: []string{"-i"}, PromptFlag: "-p"}
}

// FZF returns a picker backed by fzf.
func FZF() *Command {
	return &Command{Path: "fzf", Args: []string{"--no-multi"}, PromptFlag: "--prompt"}
}

// indexOf returns the position of the item equal to selection.
func indexOf(items []string, selection string) (int, bool) {
	for i, item := range items {
		if item == selection {
			return i, true
		}
	}

	return -1, false
}

func validate(items []string) error {
	for i, item := range items {
		if strings.ContainsAny(item, "\r\n") {
			return fmt.Errorf("item %d contains a line break", i)
		}
	}

	return nil
}
