// Package tui renders the live fasting timer in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fasttrack/internal/core"
	"fasttrack/internal/domain"
	"fasttrack/internal/logging"
	"fasttrack/internal/usecase"
)

// statusMsg carries one Status from TrackerUseCase.Watch.
type statusMsg usecase.Status

// watchClosedMsg is sent once the Watch channel closes.
type watchClosedMsg struct{}

// actionDoneMsg reports the outcome of a start/end/select call.
type actionDoneMsg struct {
	state core.State
	err   error
}

type keyMap struct {
	Toggle key.Binding
	Method key.Binding
	Theme  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle: key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s", "start/end fast")),
		Method: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "next method")),
		Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Method, k.Theme, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Method},
		{k.Theme, k.Help, k.Quit},
	}
}

// Options configures the timer screen.
type Options struct {
	Tick  time.Duration
	Theme string
}

// Model is the Bubble Tea model of the timer screen. All state changes go
// through the use case; the model only keeps the latest Status.
type Model struct {
	ctx     context.Context
	tracker usecase.TrackerUseCase
	updates <-chan usecase.Status

	status    usecase.Status
	completed int
	theme     Theme
	keys      keyMap
	help      help.Model
	progress  progress.Model
	err       error
	width     int
	quitting  bool
}

// NewModel subscribes to the tracker and prepares the screen.
func NewModel(ctx context.Context, tracker usecase.TrackerUseCase, opts Options) Model {
	theme := ThemeByName(opts.Theme)
	return Model{
		ctx:       ctx,
		tracker:   tracker,
		updates:   tracker.Watch(ctx, opts.Tick),
		status:    tracker.Status(tracker.Now()),
		completed: len(tracker.Snapshot().History),
		theme:     theme,
		keys:      defaultKeys(),
		help:      help.New(),
		progress:  newProgressBar(theme, 40),
	}
}

func newProgressBar(t Theme, width int) progress.Model {
	return progress.New(
		progress.WithGradient(t.GradientStart, t.GradientEnd),
		progress.WithWidth(width),
	)
}

// Init starts listening for timer updates.
func (m Model) Init() tea.Cmd {
	return waitForStatus(m.updates)
}

func waitForStatus(ch <-chan usecase.Status) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return statusMsg(st)
	}
}

// Update handles key presses and timer updates.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			return m, m.toggleFast()
		case key.Matches(msg, m.keys.Method):
			return m, m.nextMethod()
		case key.Matches(msg, m.keys.Theme):
			m.theme = m.theme.toggled()
			m.progress = newProgressBar(m.theme, m.progress.Width)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		w := msg.Width - 8
		if w > 60 {
			w = 60
		}
		if w < 10 {
			w = 10
		}
		m.progress.Width = w
		return m, nil

	case statusMsg:
		m.status = usecase.Status(msg)
		return m, waitForStatus(m.updates)

	case watchClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case actionDoneMsg:
		m.err = msg.err
		if msg.err != nil {
			logging.L().Warnw("timer action failed", "err", msg.err)
			return m, nil
		}
		m.completed = len(msg.state.History)
		m.status = m.tracker.Status(m.tracker.Now())
		return m, nil
	}
	return m, nil
}

func (m Model) toggleFast() tea.Cmd {
	ctx, tracker, fasting := m.ctx, m.tracker, m.status.Fasting
	return func() tea.Msg {
		var (
			s   core.State
			err error
		)
		if fasting {
			s, err = tracker.EndFast(ctx, usecase.EndInput{})
		} else {
			s, err = tracker.StartFast(ctx, usecase.StartInput{})
		}
		return actionDoneMsg{state: s, err: err}
	}
}

func (m Model) nextMethod() tea.Cmd {
	ctx, tracker := m.ctx, m.tracker
	next := nextMethodID(tracker.Methods(), m.status.SelectedMethodID)
	return func() tea.Msg {
		s, err := tracker.SelectMethod(ctx, next)
		return actionDoneMsg{state: s, err: err}
	}
}

// nextMethodID returns the catalogue entry after current, wrapping around.
func nextMethodID(methods []domain.FastingMethod, current string) string {
	if len(methods) == 0 {
		return current
	}
	for i, mth := range methods {
		if mth.ID == current {
			return methods[(i+1)%len(methods)].ID
		}
	}
	return methods[0].ID
}

// View renders the timer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Title).MarginBottom(1)
	accent := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent)
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	st := m.status
	p := st.Progress

	var b strings.Builder
	b.WriteString(title.Render("fasttrack"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Method: %s  %s\n", accent.Render(st.Method.Name), muted.Render(fmt.Sprintf("(%gh fast / %gh eat)", st.Method.FastingHours, st.Method.EatingHours))))

	if st.Fasting {
		b.WriteString(accent.Render("Fasting"))
		b.WriteString(muted.Render(fmt.Sprintf("  since %s", st.ActiveFast.StartTime.Local().Format(time.Kitchen))))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Elapsed   %s\n", domain.FormatHMS(p.ClampedElapsedSeconds)))
		b.WriteString(fmt.Sprintf("Remaining %s\n", domain.FormatHMS(p.RemainingSeconds)))
	} else {
		b.WriteString(muted.Render("Not fasting"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Target    %s\n", domain.FormatHMS(p.TotalSeconds)))
	}
	b.WriteString(m.progress.ViewAs(p.Ratio))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n\n", p.Ratio*100))

	b.WriteString(muted.Render(fmt.Sprintf("Completed fasts: %d", m.completed)))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Run shows the timer until the user quits or ctx is cancelled.
func Run(ctx context.Context, tracker usecase.TrackerUseCase, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(ctx, tracker, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
