// Package promptcard renders one reflection prompt and its options.
package promptcard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dayreflect/internal/models"
)

// SelectOptionMsg is sent when the user picks an option.
type SelectOptionMsg struct {
	PromptID string
	OptionID string
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginBottom(1)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				MarginBottom(1)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingLeft(2)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true).
			PaddingLeft(2)

	perspectiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1).
				MarginTop(1).
				Width(50)
)

type Model struct {
	prompt      models.Prompt
	cursor      int
	selected    string
	perspective string
	width       int
	height      int
}

func New() Model {
	return Model{}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetPrompt shows p with selected as its recorded answer. The cursor is kept
// while the prompt stays the same.
func (m *Model) SetPrompt(p models.Prompt, selected, perspective string) {
	if p.ID != m.prompt.ID {
		m.cursor = 0
		for i, o := range p.Options {
			if o.ID == selected {
				m.cursor = i
			}
		}
	}
	m.prompt = p
	m.selected = selected
	m.perspective = perspective
	if m.cursor >= len(p.Options) {
		m.cursor = max(len(p.Options)-1, 0)
	}
}

func (m Model) Cursor() int {
	return m.cursor
}

// Perspective is the revealed text for the recorded answer, if any.
func (m Model) Perspective() string {
	return m.perspective
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.prompt.Options) == 0 {
		return m, nil
	}

	switch s := keyMsg.String(); s {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.prompt.Options)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m, m.choose()
	default:
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.prompt.Options) {
				m.cursor = i
				return m, m.choose()
			}
		}
	}
	return m, nil
}

func (m Model) choose() tea.Cmd {
	msg := SelectOptionMsg{PromptID: m.prompt.ID, OptionID: m.prompt.Options[m.cursor].ID}
	return func() tea.Msg { return msg }
}

func (m Model) View() string {
	if m.prompt.ID == "" {
		return titleStyle.Render("No prompts for today.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.prompt.Title))
	b.WriteString("\n")
	if m.prompt.Description != "" {
		b.WriteString(descriptionStyle.Render(m.prompt.Description))
		b.WriteString("\n")
	}

	for i, o := range m.prompt.Options {
		mark := " "
		if o.ID == m.selected {
			mark = "✓"
		}
		line := fmt.Sprintf("%s %d. %s", mark, i+1, o.Label)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString(optionStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if m.perspective != "" {
		b.WriteString(perspectiveStyle.Render(m.perspective))
	}
	return b.String()
}
