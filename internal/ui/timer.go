package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/routineapp/routine/pomodoro"
	"github.com/routineapp/routine/store"
)

// TickMsg is the 1 Hz heartbeat driving the session machine. The UI
// loop is the machine's single writer.
type TickMsg time.Time

// ConfigChangedMsg carries a live configuration reload into the timer.
// The new values take effect on the next phase entry.
type ConfigChangedMsg struct {
	Config pomodoro.Config
}

type timerKeyMap struct {
	Toggle key.Binding
	Reset  key.Binding
	Focus  key.Binding
	Short  key.Binding
	Long   key.Binding
	Detach key.Binding
	Quit   key.Binding
}

func (k timerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Focus, k.Short, k.Long, k.Detach, k.Quit}
}

func (k timerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Toggle, k.Reset}, {k.Focus, k.Short, k.Long}, {k.Detach, k.Quit}}
}

var timerKeys = timerKeyMap{
	Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/pause")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Focus:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus")),
	Short:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "short break")),
	Long:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "long break")),
	Detach: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "detach task")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// TimerModel is the bubbletea model for the pomodoro timer.
type TimerModel struct {
	machine *pomodoro.Machine
	agg     *pomodoro.Aggregator

	attachedTitle string
	warn          string
	width         int

	progress progress.Model
	keys     timerKeyMap
	help     help.Model
	quitting bool
}

// NewTimerModel builds the timer UI around an existing machine and
// aggregator. attachedTitle may be empty when no task is attached.
func NewTimerModel(machine *pomodoro.Machine, agg *pomodoro.Aggregator, attachedTitle string) TimerModel {
	return TimerModel{
		machine:       machine,
		agg:           agg,
		attachedTitle: attachedTitle,
		progress:      progress.New(progress.WithDefaultGradient()),
		keys:          timerKeys,
		help:          help.New(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m TimerModel) Init() tea.Cmd {
	return tickCmd()
}

func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if ev := m.machine.Tick(1); ev != nil {
			m.handleCompletion(*ev)
		}
		return m, tickCmd()

	case ConfigChangedMsg:
		if err := m.machine.SetConfig(msg.Config); err != nil {
			m.warn = err.Error()
		} else {
			m.warn = "configuration updated; applies on next phase"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 10
		if w > 48 {
			w = 48
		}
		if w > 0 {
			m.progress.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			if m.machine.Running() {
				m.machine.Pause()
			} else {
				m.machine.Start()
			}
		case key.Matches(msg, m.keys.Reset):
			m.machine.Reset()
		case key.Matches(msg, m.keys.Focus):
			m.machine.SwitchPhase(pomodoro.PhaseFocus)
		case key.Matches(msg, m.keys.Short):
			m.machine.SwitchPhase(pomodoro.PhaseShortBreak)
		case key.Matches(msg, m.keys.Long):
			m.machine.SwitchPhase(pomodoro.PhaseLongBreak)
		case key.Matches(msg, m.keys.Detach):
			m.machine.Detach()
			m.attachedTitle = ""
		}
		return m, nil
	}
	return m, nil
}

// handleCompletion routes a phase-completion event to the aggregator
// and degrades the attachment when the task has vanished. Aggregation
// failures become a warning line; the timer keeps ticking.
func (m *TimerModel) handleCompletion(ev pomodoro.PhaseCompleted) {
	err := m.agg.HandlePhaseCompleted(ev)
	if err == nil {
		m.warn = ""
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		m.machine.Detach()
		m.attachedTitle = ""
	}
	m.warn = err.Error()
}

func (m TimerModel) View() string {
	if m.quitting {
		return ""
	}

	phase := m.machine.Phase()
	header := PhaseStyle(phase).Render(phase.Label())
	if m.attachedTitle != "" {
		header += StyleSubtle.Render(" · " + m.attachedTitle)
	}

	clock := StyleClock.Foreground(phaseColor(phase)).Render(pomodoro.FormatClock(m.machine.Remaining()))
	state := "paused"
	if m.machine.Running() {
		state = "running"
	}

	var pct float64
	if length := m.machine.PhaseLength(); length > 0 {
		pct = 1 - float64(m.machine.Remaining())/float64(length)
	}

	var b strings.Builder
	b.WriteString(header + "\n\n")
	b.WriteString(clock + StyleSubtle.Render("  "+state) + "\n\n")
	b.WriteString(m.progress.ViewAs(pct) + "\n\n")
	b.WriteString(StyleStudyTime.Render("Study time: "+pomodoro.FormatSeconds(m.agg.Total())) + "\n")
	b.WriteString(StyleSubtle.Render(fmt.Sprintf("Focus streak: %d", m.machine.FocusStreak())) + "\n")
	if m.warn != "" {
		b.WriteString(StyleWarning.Render("⚠ "+m.warn) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))

	return StyleTimerBox.Render(b.String())
}

func phaseColor(p pomodoro.Phase) lipgloss.Color {
	switch p {
	case pomodoro.PhaseShortBreak:
		return ColorShortBreak
	case pomodoro.PhaseLongBreak:
		return ColorLongBreak
	default:
		return ColorFocus
	}
}
