package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Command runs a dmenu-style program: items are written to its standard
// input one per line and the chosen line is read from its standard output.
// A non-zero exit with empty output means the user cancelled.
type Command struct {
	Path string
	Args []string

	// PromptFlag, when set, passes the prompt as "<flag> <prompt>".
	PromptFlag string

	// PrintsIndex is set for programs told to print the zero-based index of
	// the chosen line instead of its text (rofi -format i).
	PrintsIndex bool
}

// Pick implements Picker.
func (c *Command) Pick(ctx context.Context, prompt string, items []string) (int, bool, error) {
	if err := validate(items); err != nil {
		return -1, false, err
	}

	args := append([]string{}, c.Args...)
	if c.PromptFlag != "" && prompt != "" {
		args = append(args, c.PromptFlag, prompt)
	}

	lines := items
	if !c.PrintsIndex {
		lines = uniqueLabels(items)
	}

	cmd := exec.CommandContext(ctx, c.Path, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	selection := strings.TrimRight(stdout.String(), "\r\n")

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && selection == "" {
			return -1, false, nil
		}

		return -1, false, fmt.Errorf("running picker %s: %w", c.Path, err)
	}

	if c.PrintsIndex {
		idx, err := strconv.Atoi(strings.TrimSpace(selection))
		if err != nil || idx < 0 || idx >= len(items) {
			return -1, false, nil
		}

		return idx, true, nil
	}

	idx, ok := indexOf(lines, selection)

	return idx, ok, nil
}

// uniqueLabels suffixes repeated items with " (2)", " (3)", ... so the
// printed selection maps back to exactly one position.
func uniqueLabels(items []string) []string {
	original := make(map[string]bool, len(items))
	for _, item := range items {
		original[item] = true
	}

	used := make(map[string]bool, len(items))
	labels := make([]string, len(items))

	for i, item := range items {
		label := item

		for n := 2; used[label]; n++ {
			if candidate := fmt.Sprintf("%s (%d)", item, n); !original[candidate] {
				label = candidate
			}
		}

		used[label] = true
		labels[i] = label
	}

	return labels
}
