// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/matt-FFFFFF/scripter/internal/config"
	"github.com/matt-FFFFFF/scripter/internal/execution"
)

// Model is the bubbletea model over the execution manager. The manager is
// only ever touched from Update, which bubbletea serializes, so no locking
// is needed.
type Model struct {
	manager *execution.Manager
	cfg     config.AppConfig

	spinner spinner.Model
	styles  *Styles

	width  int
	height int

	// selected is the index of the highlighted execution in display order.
	selected  int
	completed bool
	quitting  bool
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title        lipgloss.Style
	ExecName     lipgloss.Style
	Selected     lipgloss.Style
	Pending      lipgloss.Style
	Running      lipgloss.Style
	Success      lipgloss.Style
	Failed       lipgloss.Style
	Skipped      lipgloss.Style
	Disconnected lipgloss.Style
	LogStdout    lipgloss.Style
	LogStderr    lipgloss.Style
	LogError     lipgloss.Style
	LogEvent     lipgloss.Style
	Help         lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		ExecName: lipgloss.NewStyle().
			Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Bold(true),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Skipped: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Disconnected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")),
		LogStdout: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		LogStderr: lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")),
		LogError: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		LogEvent: lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// NewModel creates a TUI model over the given manager.
func NewModel(manager *execution.Manager, cfg config.AppConfig) *Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return &Model{
		manager: manager,
		cfg:     cfg,
		spinner: s,
		styles:  NewStyles(),
	}
}

// executionList returns the executions in display order.
func (m *Model) executionList() []*execution.Execution {
	var out []*execution.Execution
	for e := range m.manager.Executions() {
		out = append(out, e)
	}

	return out
}

// selectedExecution returns the highlighted execution, or nil when there are
// none.
func (m *Model) selectedExecution() *execution.Execution {
	execs := m.executionList()
	if len(execs) == 0 {
		return nil
	}

	if m.selected >= len(execs) {
		return execs[len(execs)-1]
	}

	return execs[m.selected]
}

// clampSelection keeps the selection inside the current execution count.
func (m *Model) clampSelection() {
	if n := m.manager.ExecutionCount(); m.selected >= n && n > 0 {
		m.selected = n - 1
	} else if n == 0 {
		m.selected = 0
	}
}
