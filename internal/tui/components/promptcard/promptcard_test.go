package promptcard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dayreflect/internal/models"
)

func testPrompt() models.Prompt {
	return models.Prompt{
		ID:    "energy",
		Title: "Where is your energy?",
		Options: []models.Option{
			{ID: "high", Label: "Buzzing"},
			{ID: "steady", Label: "Even"},
			{ID: "low", Label: "Gentle"},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCursorMovement(t *testing.T) {
	m := New()
	m.SetPrompt(testPrompt(), "", "")

	steps := []struct {
		key  string
		want int
	}{
		{"up", 0},
		{"down", 1},
		{"j", 2},
		{"down", 2},
		{"k", 1},
	}
	for _, s := range steps {
		m, _ = m.Update(key(s.key))
		if m.Cursor() != s.want {
			t.Fatalf("after %q cursor = %d, want %d", s.key, m.Cursor(), s.want)
		}
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		want   string
		noMsgs bool
	}{
		{name: "enter on first", keys: []string{"enter"}, want: "high"},
		{name: "move then enter", keys: []string{"down", "enter"}, want: "steady"},
		{name: "number", keys: []string{"3"}, want: "low"},
		{name: "number out of range", keys: []string{"4"}, noMsgs: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.SetPrompt(testPrompt(), "", "")
			var cmd tea.Cmd
			for _, k := range tt.keys {
				m, cmd = m.Update(key(k))
			}
			if tt.noMsgs {
				if cmd != nil {
					t.Fatal("expected no command")
				}
				return
			}
			if cmd == nil {
				t.Fatal("expected a select command")
			}
			msg, ok := cmd().(SelectOptionMsg)
			if !ok {
				t.Fatalf("expected SelectOptionMsg")
			}
			if msg.PromptID != "energy" || msg.OptionID != tt.want {
				t.Errorf("got %+v, want option %s", msg, tt.want)
			}
		})
	}
}

func TestSetPromptKeepsCursorOnSamePrompt(t *testing.T) {
	m := New()
	m.SetPrompt(testPrompt(), "", "")
	m, _ = m.Update(key("down"))
	m.SetPrompt(testPrompt(), "steady", "Keep it even.")
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor())
	}
	if !strings.Contains(m.View(), "✓") {
		t.Error("expected the recorded answer to be marked")
	}

	other := testPrompt()
	other.ID = "focus"
	m.SetPrompt(other, "low", "")
	if m.Cursor() != 2 {
		t.Errorf("cursor on new prompt = %d, want the selected option", m.Cursor())
	}
}

func TestEmptyPrompt(t *testing.T) {
	m := New()
	m.SetPrompt(models.Prompt{}, "", "")
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("empty prompt should not select")
	}
	if !strings.Contains(m.View(), "No prompts") {
		t.Error("expected empty-state text")
	}
}
