// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matt-FFFFFF/scripter/internal/config"
	"github.com/matt-FFFFFF/scripter/internal/execution"
)

// Run displays the TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, manager *execution.Manager, cfg config.AppConfig) error {
	program := tea.NewProgram(
		NewModel(manager, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := program.Run()

	return err
}

// RunHeadless drives the manager without a terminal UI: it polls until every
// execution finished (or the context is cancelled) and then writes a
// per-script summary to w. Useful for CI and non-tty environments.
func RunHeadless(
	ctx context.Context,
	manager *execution.Manager,
	cfg config.AppConfig,
	w io.Writer,
) error {
	if !manager.HasAnyExecutionStarted() {
		return nil
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	done := ctx.Done()

	for !manager.HasAllExecutionsFinished() || manager.IsWaitingOnAnyExecutionToFinish() {
		select {
		case <-done:
			// ask the workers to wind down, then keep polling so the skip
			// statuses land in the caches
			for e := range manager.Executions() {
				if !e.HasFinished() {
					e.RequestStop()
				}
			}

			done = nil

		case <-ticker.C:
			manager.Tick(cfg)
		}
	}

	writeSummary(w, manager)

	return ctx.Err()
}

func writeSummary(w io.Writer, manager *execution.Manager) {
	for e := range manager.Executions() {
		fmt.Fprintf(w, "%s:\n", e.Name())

		for _, s := range e.ScheduledScripts() {
			duration := ""
			if s.Status.Finished() {
				duration = fmt.Sprintf(" (%s)", s.Status.FinishTime.Sub(*s.Status.StartTime).Round(durationRounding))
			}

			retries := ""
			if s.Status.RetryCount > 0 {
				retries = fmt.Sprintf(" after %d retries", s.Status.RetryCount)
			}

			fmt.Fprintf(w, "  %-12s %s%s%s\n", s.Status.Result, s.Script.Name, retries, duration)
		}

		fmt.Fprintf(w, "  logs: %s\n", e.LogDirectory())
	}
}
