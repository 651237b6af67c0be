// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// pollInterval is how often the manager is ticked. Matches the worker's own
// poll cadence, so draining one message per tick keeps up with progress.
const pollInterval = 100 * time.Millisecond

// tickMsg asks the model to advance the manager by one tick.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.manager.Tick(m.cfg)
		m.clampSelection()

		if m.manager.HasAllExecutionsFinished() && !m.manager.IsWaitingOnAnyExecutionToFinish() {
			m.completed = true
		}

		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		// stop whatever is still running before leaving the screen
		for e := range m.manager.Executions() {
			if !e.HasFinished() {
				e.RequestStop()
			}
		}

		m.quitting = true

		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

		return m, nil

	case "down", "j":
		if m.selected+1 < m.manager.ExecutionCount() {
			m.selected++
		}

		return m, nil

	case "s":
		if e := m.selectedExecution(); e != nil {
			m.manager.RequestStop(e.ID())
		}

		return m, nil

	case "e":
		if e := m.selectedExecution(); e != nil && e.HasPotentiallyEditableScripts() {
			m.manager.RequestEditNonExecutedScripts(e.ID())
		}

		return m, nil
	}

	return m, nil
}
