package picker

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("205"))

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(4)
)

// TUI is a full-screen terminal picker with fuzzy filtering.
type TUI struct {
	In  io.Reader
	Out io.Writer
}

// Pick implements Picker.
func (p *TUI) Pick(ctx context.Context, prompt string, items []string) (int, bool, error) {
	if len(items) == 0 {
		return -1, false, nil
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}

	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(newModel(prompt, items), opts...).Run()
	if err != nil {
		return -1, false, fmt.Errorf("running picker: %w", err)
	}

	m, ok := final.(model)
	if !ok || m.chosen < 0 {
		return -1, false, nil
	}

	return m.chosen, true, nil
}

// entry is a list row remembering its position in the caller's slice, which
// survives filtering.
type entry struct {
	index int
	title string
}

func (e entry) FilterValue() string { return e.title }

// delegate renders one line per entry.
type delegate struct{}

func (delegate) Height() int                             { return 1 }
func (delegate) Spacing() int                            { return 0 }
func (delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	e, ok := item.(entry)
	if !ok {
		return
	}

	if index == m.Index() {
		_, _ = fmt.Fprint(w, selectedItemStyle.Render("> "+e.title))
		return
	}

	_, _ = fmt.Fprint(w, itemStyle.Render(e.title))
}

type model struct {
	list   list.Model
	chosen int
}

func newModel(prompt string, items []string) model {
	rows := make([]list.Item, len(items))
	for i, title := range items {
		rows[i] = entry{index: i, title: title}
	}

	l := list.New(rows, delegate{}, 40, 20)
	l.Title = prompt
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	return model{list: l, chosen: -1}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// While typing a filter, keys belong to the list.
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if e, ok := m.list.SelectedItem().(entry); ok {
				m.chosen = e.index
			}

			return m, tea.Quit
		case "esc":
			if m.list.FilterState() == list.Unfiltered {
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m model) View() string {
	return m.list.View()
}
