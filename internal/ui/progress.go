package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tracelens/internal/analysis"
)

type progressModel struct {
	title   string
	events  <-chan analysis.Event
	spinner spinner.Model
	prog    progress.Model
	items   []stageItem
	index   map[analysis.Stage]int
	width   int
	done    bool
	failed  bool
}

type stageItem struct {
	stage   analysis.Stage
	status  analysis.Status
	elapsed time.Duration
	err     string
}

type eventMsg analysis.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders analysis progress,
// one row per stage. The model quits when events is closed.
func NewProgressModel(title string, stages []analysis.Stage, events <-chan analysis.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]stageItem, 0, len(stages))
	index := make(map[analysis.Stage]int, len(stages))
	for i, s := range stages {
		items = append(items, stageItem{stage: s, status: analysis.StatusQueued})
		index[s] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(analysis.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	header := m.title
	switch {
	case m.done && m.failed:
		header = fmt.Sprintf("failed: %s", header)
	case m.done:
		header = fmt.Sprintf("done: %s", header)
	default:
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := m.width - 12 - 14
	if nameWidth < 10 {
		nameWidth = 10
	}
	for _, item := range m.items {
		label := statusLabel(item.status)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%10s", label))
		line := fmt.Sprintf("  %s %s", statusStyled, truncate(string(item.stage), nameWidth))
		if item.status == analysis.StatusDone {
			line += fmt.Sprintf("  %s", item.elapsed.Round(time.Microsecond))
		}
		b.WriteString(line)
		b.WriteString("\n")
		if item.err != "" {
			b.WriteString(errStyle.Render("             " + truncate(item.err, nameWidth)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.done && !m.failed {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev analysis.Event) tea.Cmd {
	idx, ok := m.index[ev.Stage]
	if !ok {
		return nil
	}
	m.items[idx].status = ev.Status
	m.items[idx].elapsed = ev.Elapsed
	if ev.Status == analysis.StatusError {
		m.failed = true
		if ev.Err != nil {
			m.items[idx].err = ev.Err.Error()
		}
	}
	return m.prog.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		switch item.status {
		case analysis.StatusDone, analysis.StatusError:
			total += 1.0
		case analysis.StatusWorking:
			total += 0.5
		}
	}
	return total / float64(len(m.items))
}

func statusLabel(status analysis.Status) string {
	switch status {
	case analysis.StatusWorking:
		return "running"
	case "":
		return "queued"
	default:
		return string(status)
	}
}

func styleStatus(status analysis.Status) lipgloss.Style {
	switch status {
	case analysis.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case analysis.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case analysis.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
