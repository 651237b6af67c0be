// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matt-FFFFFF/scripter/internal/execution"
)

const (
	// durations are rounded so the display doesn't flicker with nanoseconds
	durationRounding = 100 * time.Millisecond
	// recentLogLines is how many lines of the selected execution's output
	// tail are shown.
	recentLogLines = 10
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("Scripter"))
	view.WriteString("\n\n")

	execs := m.executionList()

	if len(execs) == 0 {
		view.WriteString(m.styles.Pending.Render("No executions started."))
		view.WriteString("\n")
	}

	for i, e := range execs {
		m.renderExecution(&view, e, i == m.selected)
	}

	if selected := m.selectedExecution(); selected != nil {
		m.renderRecentLogs(&view, selected)
	}

	if m.completed {
		view.WriteString("\n")

		if m.manager.HasAnyExecutionFailed() {
			view.WriteString(m.styles.Failed.Render("Finished with failures"))
		} else {
			view.WriteString(m.styles.Success.Render("All executions finished"))
		}

		view.WriteString("\n")
	}

	view.WriteString(m.styles.Help.Render("↑/↓ select · s stop · e edit queued · q quit"))
	view.WriteString("\n")

	return view.String()
}

func (m *Model) renderExecution(view *strings.Builder, e *execution.Execution, selected bool) {
	cursor := "  "
	if selected {
		cursor = m.styles.Selected.Render("> ")
	}

	header := m.styles.ExecName.Render(e.Name())

	switch {
	case e.HasFinished() && e.HasFailedScripts():
		header += " " + m.styles.Failed.Render("failed")
	case e.HasFinished():
		header += " " + m.styles.Success.Render("done")
	default:
		header += " " + m.styles.Running.Render(m.spinner.View())
	}

	view.WriteString(cursor + header + "\n")

	for _, s := range e.ScheduledScripts() {
		view.WriteString("    ")
		view.WriteString(m.renderScript(s))
		view.WriteString("\n")
	}
}

func (m *Model) renderScript(s execution.ScheduledScript) string {
	icon, style := m.scriptGlyph(s.Status)

	line := fmt.Sprintf("%s %s", icon, s.Script.Name)

	if s.Status.RetryCount > 0 {
		line += fmt.Sprintf(" (retry %d)", s.Status.RetryCount)
	}

	if s.Status.Finished() {
		d := s.Status.FinishTime.Sub(*s.Status.StartTime).Round(durationRounding)
		line += fmt.Sprintf(" [%s]", d)
	}

	return style.Render(line)
}

func (m *Model) scriptGlyph(s execution.Status) (string, lipgloss.Style) {
	switch {
	case s.Disconnected():
		return "↩", m.styles.Disconnected
	case !s.Started():
		return "·", m.styles.Pending
	case !s.Finished():
		return m.spinner.View(), m.styles.Running
	case s.Result == execution.ResultSuccess:
		return "✓", m.styles.Success
	case s.Result == execution.ResultSkipped:
		return "−", m.styles.Skipped
	default:
		return "✗", m.styles.Failed
	}
}

func (m *Model) renderRecentLogs(view *strings.Builder, e *execution.Execution) {
	lines := e.RecentLogs().Snapshot()
	if len(lines) == 0 {
		return
	}

	if len(lines) > recentLogLines {
		lines = lines[len(lines)-recentLogLines:]
	}

	view.WriteString("\n")
	view.WriteString(m.styles.ExecName.Render("Recent output"))
	view.WriteString("\n")

	for _, line := range lines {
		style := m.styles.LogStdout

		switch line.Kind {
		case execution.OutputStderr:
			style = m.styles.LogStderr
		case execution.OutputError:
			style = m.styles.LogError
		case execution.OutputEvent:
			style = m.styles.LogEvent
		case execution.OutputStdout:
		}

		view.WriteString(style.Render(strings.TrimRight(line.Text, "\n")))
		view.WriteString("\n")
	}
}
