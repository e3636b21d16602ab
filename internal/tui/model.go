// Package tui is the interactive reflection screen.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/models"
	"github.com/julianstephens/dayreflect/internal/perspective"
	"github.com/julianstephens/dayreflect/internal/session"
	"github.com/julianstephens/dayreflect/internal/tui/components/promptcard"
	"github.com/julianstephens/dayreflect/internal/tui/components/remindercard"
)

type SessionState int

const (
	StatePrompts SessionState = iota
	StateReminder
	StateEditReminder
)

var tabTitles = []string{"Today", "Reminder"}

// Scheduler is the reminder behavior the screen uses.
type Scheduler interface {
	GetSavedReminderTime(ctx context.Context) models.ReminderTime
	SavedScheduleID(ctx context.Context) (string, bool)
	UpdateReminderTime(ctx context.Context, t models.ReminderTime) (string, error)
}

type Deps struct {
	Session      *session.Store
	Scheduler    Scheduler
	Perspectives *perspective.Table
	Location     *time.Location
	Now          func() time.Time
}

type ReminderFormModel struct {
	Time string
}

type Model struct {
	session      *session.Store
	scheduler    Scheduler
	perspectives *perspective.Table
	loc          *time.Location
	now          func() time.Time

	state        SessionState
	keys         KeyMap
	help         help.Model
	card         promptcard.Model
	reminderCard remindercard.Model
	form         *huh.Form
	reminderForm *ReminderFormModel
	formError    string
	status       string
	day          string
	quitting     bool
	width        int
	height       int
}

func NewModel(d Deps) Model {
	if d.Perspectives == nil {
		d.Perspectives = perspective.Default()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	m := Model{
		session:      d.Session,
		scheduler:    d.Scheduler,
		perspectives: d.Perspectives,
		loc:          d.Location,
		now:          d.Now,
		state:        StatePrompts,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		card:         promptcard.New(),
		day:          d.Now().In(d.Location).Format(constants.DateFormat),
	}
	m.refreshCard()
	m.refreshReminder()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StatePrompts:
		keys = append(keys, m.keys.Enter, m.keys.Next, m.keys.Back)
	case StateReminder:
		keys = append(keys, m.keys.Edit)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	var actions []key.Binding
	switch m.state {
	case StatePrompts:
		actions = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Next, m.keys.Back}
	case StateReminder:
		actions = []key.Binding{m.keys.Edit}
	}
	return [][]key.Binding{global, actions}
}

// dayTickMsg drives the check for a new calendar day.
type dayTickMsg time.Time

func dayTick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return dayTickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return dayTick()
}

// refreshCard loads the current prompt, its answer and the revealed
// perspective. An unanswered prompt shows its fallback perspective.
func (m *Model) refreshCard() {
	p, ok := m.session.CurrentPrompt()
	if !ok {
		m.card.SetPrompt(models.Prompt{}, "", "")
		return
	}
	var selected, text string
	if r, ok := m.session.ResponseFor(p.ID); ok {
		selected = r.OptionID
		text, _ = m.perspectives.Reveal(p.ID, r.OptionID)
	} else {
		text, _ = m.perspectives.Fallback(p.ID)
	}
	m.card.SetPrompt(p, selected, text)
}

func (m *Model) refreshReminder() {
	if m.scheduler == nil {
		return
	}
	ctx := context.Background()
	_, scheduled := m.scheduler.SavedScheduleID(ctx)
	m.reminderCard.SetReminder(m.scheduler.GetSavedReminderTime(ctx), scheduled)
}
