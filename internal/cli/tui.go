package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FieldListModel - Interactive field selection
// =============================================================================

// FieldListModel is the bubbletea model for picking the fields to draw.
// Space toggles a field, enter confirms; enter with nothing marked picks
// the field under the cursor.
type FieldListModel struct {
	Fields   []string
	Cursor   int
	Marked   map[int]bool
	Selected []string
	Height   int
	Offset   int
}

// NewFieldListModel creates a new field list model.
func NewFieldListModel(fields []string) FieldListModel {
	return FieldListModel{
		Fields: fields,
		Marked: make(map[int]bool),
		Height: 15,
	}
}

func (m FieldListModel) Init() tea.Cmd {
	return nil
}

func (m FieldListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Fields)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			if len(m.Fields) > 0 {
				m.Marked[m.Cursor] = !m.Marked[m.Cursor]
			}
		case "enter":
			if len(m.Fields) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.selection()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

// selection returns the marked fields in list order, or the field under
// the cursor.
func (m FieldListModel) selection() []string {
	var out []string
	for i, f := range m.Fields {
		if m.Marked[i] {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = []string{m.Fields[m.Cursor]}
	}
	return out
}

func (m FieldListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Fields"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space mark  ⏎ draw  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Fields))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Marked[i] {
			mark = "[" + iconSuccess + "]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, m.Fields[i])
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Fields))))
	return b.String()
}

// pickFields runs the picker and returns the chosen fields; nil means the
// user quit.
func pickFields(fields []string) ([]string, error) {
	final, err := tea.NewProgram(NewFieldListModel(fields)).Run()
	if err != nil {
		return nil, err
	}
	return final.(FieldListModel).Selected, nil
}
