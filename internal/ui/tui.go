// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the ranking view
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Control carries user choices out of the TUI
type Control struct {
	Choose chan ChooseMsg
	Quit   chan QuitMsg
}

// NewControl creates a control handler
func NewControl() *Control {
	return &Control{
		Choose: make(chan ChooseMsg, 1),
		Quit:   make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model for the given base song
func NewModel(ctrl *Control, title string) Model {
	return Model{
		title: title,
		phase: PhaseScanning,
		ctrl:  ctrl,
	}
}

// Run creates the TUI program. The caller runs it.
func Run(ctrl *Control, title string) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl, title), tea.WithAltScreen())
	return p, nil
}
