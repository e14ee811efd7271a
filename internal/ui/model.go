// ABOUTME: Bubbletea model for the mashability ranking TUI
// ABOUTME: Shows analysis progress, then a navigable table of candidates
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Phase is the stage of a ranking run
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseAnalyzing
	PhaseScoring
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "Scanning library"
	case PhaseAnalyzing:
		return "Analysing"
	case PhaseScoring:
		return "Scoring"
	case PhaseDone:
		return "Done"
	case PhaseFailed:
		return "Failed"
	}
	return "Unknown"
}

// Row is one ranked candidate
type Row struct {
	Rank      int
	Path      string
	Score     float64
	Offset    int
	Semitones int
	Tempo     float64
}

// StatusMsg updates progress. Zero fields are left alone.
type StatusMsg struct {
	Phase   *Phase
	Done    int
	Total   int
	Current string
	Backend string
	Err     error
}

// ResultsMsg replaces the ranking table
type ResultsMsg struct {
	Rows []Row
}

// ChooseMsg is sent when the user picks a candidate
type ChooseMsg struct {
	Row Row
}

// QuitMsg is sent when the user leaves the TUI
type QuitMsg struct{}

// Model represents the TUI state
type Model struct {
	// Request
	title   string
	backend string

	// Progress
	phase   Phase
	done    int
	total   int
	current string
	err     error

	// Results
	rows     []Row
	selected int
	chosen   bool

	// Detail pane
	showDetail bool

	ctrl *Control

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case ResultsMsg:
		m.rows = msg.Rows
		if m.selected >= len(m.rows) {
			m.selected = 0
		}
	}

	return m, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	tableStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("automashup"))
	b.WriteString("\n\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	if m.showDetail {
		b.WriteString(m.renderDetail())
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderHeader renders the base song and progress
func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Song:     "))
	b.WriteString(valueStyle.Render(m.title))
	b.WriteString("\n")

	if m.backend != "" {
		b.WriteString(headerStyle.Render("Backend:  "))
		b.WriteString(valueStyle.Render(m.backend))
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render("Status:   "))
	status := m.phase.String()
	if m.total > 0 && m.phase != PhaseDone {
		status = fmt.Sprintf("%s [%s] %d/%d", status, renderBar(m.done, m.total, 20), m.done, m.total)
	}
	b.WriteString(valueStyle.Render(status))
	b.WriteString("\n")

	if m.current != "" && m.phase != PhaseDone {
		b.WriteString(headerStyle.Render("Current:  "))
		b.WriteString(valueStyle.Render(truncate(filepath.Base(m.current), 50)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTable renders the ranked candidates
func (m Model) renderTable() string {
	if len(m.rows) == 0 {
		return valueStyle.Render("  No candidates yet") + "\n"
	}

	var b strings.Builder
	b.WriteString(tableStyle.Render(fmt.Sprintf("  %-4s %-7s %-6s %-5s %-7s %s", "rank", "score", "offset", "semi", "tempo", "song")))
	b.WriteString("\n")
	for i, r := range m.rows {
		line := fmt.Sprintf("%-4d %-7.4f %+-6d %+-5d %-7.1f %s",
			r.Rank, r.Score, r.Offset, r.Semitones, r.Tempo, truncate(filepath.Base(r.Path), 40))
		if i == m.selected {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString(valueStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderDetail renders the selected candidate in full
func (m Model) renderDetail() string {
	if len(m.rows) == 0 {
		return ""
	}
	r := m.rows[m.selected]
	return fmt.Sprintf("\n%s\n  Path:      %s\n  Score:     %.6f\n  Offset:    %+d beats\n  Transpose: %+d semitones\n  Tempo:     %.2f BPM\n",
		headerStyle.Render("Selected"), r.Path, r.Score, r.Offset, r.Semitones, r.Tempo)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("↑/↓:Select  enter:Generate  d:Details  q:Quit")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.ctrl != nil {
			select {
			case m.ctrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
	case "d":
		m.showDetail = !m.showDetail
	case "enter":
		if len(m.rows) == 0 || m.chosen {
			return m, nil
		}
		m.chosen = true
		if m.ctrl != nil {
			select {
			case m.ctrl.Choose <- ChooseMsg{Row: m.rows[m.selected]}:
			default:
			}
		}
		return m, tea.Quit
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Phase != nil {
		m.phase = *msg.Phase
	}
	if msg.Total != 0 {
		m.total = msg.Total
	}
	if msg.Done != 0 {
		m.done = msg.Done
	}
	if msg.Current != "" {
		m.current = msg.Current
	}
	if msg.Backend != "" {
		m.backend = msg.Backend
	}
	if msg.Err != nil {
		m.err = msg.Err
		m.phase = PhaseFailed
	}
}

// Utility functions
func renderBar(value, max, width int) string {
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := (value * width) / max
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
