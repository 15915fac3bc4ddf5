package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// StrategyListModel - Interactive strategy selection
// =============================================================================

// StrategyListModel is the bubbletea model for picking a layout strategy.
// Moving the cursor previews the highlighted strategy on the plate.
type StrategyListModel struct {
	Strategies []layout.Strategy
	Cursor     int
	Selected   *layout.Strategy

	preview func(layout.Strategy) string
}

// NewStrategyListModel creates a strategy list. preview renders the plate
// map shown under the list; it may be nil.
func NewStrategyListModel(preview func(layout.Strategy) string) StrategyListModel {
	return StrategyListModel{
		Strategies: layout.Strategies(),
		preview:    preview,
	}
}

func (m StrategyListModel) Init() tea.Cmd {
	return nil
}

func (m StrategyListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Strategies)-1 {
				m.Cursor++
			}
		case "enter":
			s := m.Strategies[m.Cursor]
			m.Selected = &s
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m StrategyListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Layout Strategy"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, s := range m.Strategies {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-12s  %s", cursor, s, listDimStyle.Render(s.Description()))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.preview != nil {
		b.WriteString("\n")
		b.WriteString(m.preview(m.Strategies[m.Cursor]))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// ConfirmModel - Claim confirmation
// =============================================================================

// ConfirmModel asks the user to approve a proposed allocation before it is
// written to the store.
type ConfirmModel struct {
	Prompt    string
	Body      string
	Confirmed bool
	Answered  bool
}

// NewConfirmModel creates a yes/no prompt showing body above the question.
func NewConfirmModel(prompt, body string) ConfirmModel {
	return ConfirmModel{Prompt: prompt, Body: body}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			m.Confirmed, m.Answered = true, true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c", "enter":
			m.Answered = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.Answered {
		return ""
	}
	var b strings.Builder
	if m.Body != "" {
		b.WriteString(m.Body)
		b.WriteString("\n\n")
	}
	b.WriteString(StyleTitle.Render(m.Prompt))
	b.WriteString(" ")
	b.WriteString(listDimStyle.Render("[y/N]"))
	b.WriteString("\n")
	return b.String()
}
