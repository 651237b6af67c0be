// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import (
	"iter"
	"slices"

	"github.com/spf13/afero"

	"github.com/matt-FFFFFF/scripter/internal/config"
	"github.com/matt-FFFFFF/scripter/internal/sparseset"
)

// ExecutionID is a stable handle to a started execution. Handles to removed
// executions safely resolve to not-found, even if the underlying slot has
// been reused.
type ExecutionID = sparseset.Key

// Manager runs executions in parallel, each tracking its own progress, and
// owns the staging queue of edited scripts waiting to be submitted.
//
// An example with 3 parallel executions running 8 scripts in total:
//
//	E0 : [S1, S2] => [S3] => [S4, S5]
//	E1 : [S11, S12]
//	E2 : [S21]
//
// All methods must be called from the controller goroutine.
type Manager struct {
	fs afero.Fs

	startedExecutions *sparseset.SparseSet[*Execution]
	editedScripts     []config.ScriptDefinition
}

// NewManager returns an empty manager writing script output through fs.
func NewManager(fs afero.Fs) *Manager {
	return &Manager{
		fs:                fs,
		startedExecutions: sparseset.New[*Execution](),
	}
}

// StartNewExecution allocates a stable id, constructs an execution and
// immediately submits the first batch.
func (m *Manager) StartNewExecution(
	cfg config.AppConfig,
	name string,
	scripts []config.ScriptDefinition,
) ExecutionID {
	e := newExecution(m.fs, name)

	id := m.startedExecutions.Push(e)
	e.id = id

	e.ExecuteScripts(cfg, scripts)

	return id
}

// AddScriptsToRunningExecution chains a new batch onto an existing
// execution. Stale ids are a safe no-op.
func (m *Manager) AddScriptsToRunningExecution(
	cfg config.AppConfig,
	id ExecutionID,
	scripts []config.ScriptDefinition,
) {
	if e, ok := m.Execution(id); ok {
		e.ExecuteScripts(cfg, scripts)
	}
}

// RemoveExecution removes an execution from the manager and returns it. Any
// still-alive worker is joined first; by the time removal is requested the
// workers are expected to be done, the join is defensive.
func (m *Manager) RemoveExecution(id ExecutionID) (*Execution, bool) {
	e, ok := m.startedExecutions.RemoveStable(id)
	if !ok {
		return nil, false
	}

	e.joinAllWorkers()

	return e, true
}

// Execution looks up a started execution by id.
func (m *Manager) Execution(id ExecutionID) (*Execution, bool) {
	p, ok := m.startedExecutions.Get(id)
	if !ok {
		return nil, false
	}

	return *p, true
}

// Executions iterates the started executions in submission order.
func (m *Manager) Executions() iter.Seq[*Execution] {
	return func(yield func(*Execution) bool) {
		for p := range m.startedExecutions.Values() {
			if !yield(*p) {
				return
			}
		}
	}
}

// Tick advances every unfinished execution by at most one progress message
// and returns the ids of executions that completed this tick. Executions
// whose disconnect resolved this tick have their reclaimed scripts folded
// into the edited staging queue before Tick returns.
func (m *Manager) Tick(cfg config.AppConfig) []ExecutionID {
	var justFinished, justDisconnected []ExecutionID

	for id, p := range m.startedExecutions.All() {
		e := *p

		if e.HasFinished() {
			continue
		}

		switch e.Tick(cfg) {
		case TickExecutionFinished:
			justFinished = append(justFinished, id)
		case TickDisconnectFinished:
			justDisconnected = append(justDisconnected, id)
		case TickContinue:
		}
	}

	for _, id := range justDisconnected {
		m.moveNotStartedExecutionListsToEditedList(id)
	}

	return justFinished
}

// RequestStop asks the execution's running worker to kill the current child
// and skip the rest of its queue. Stale ids are a safe no-op.
func (m *Manager) RequestStop(id ExecutionID) {
	if e, ok := m.Execution(id); ok {
		e.RequestStop()
	}
}

// RequestEditNonExecutedScripts asks the execution's running worker to
// disconnect every not-yet-reached script so it can be reclaimed into the
// edited staging queue. Stale ids are a safe no-op.
func (m *Manager) RequestEditNonExecutedScripts(id ExecutionID) {
	if e, ok := m.Execution(id); ok {
		e.RequestDisconnect()
	}
}

// AddScriptToEditedList appends a script to the staging queue.
func (m *Manager) AddScriptToEditedList(script config.ScriptDefinition) {
	m.editedScripts = append(m.editedScripts, script.Clone())
}

// RemoveScriptFromEditedList removes the script at idx from the staging
// queue. Out-of-range indices are a no-op.
func (m *Manager) RemoveScriptFromEditedList(idx int) {
	if idx < 0 || idx >= len(m.editedScripts) {
		return
	}

	m.editedScripts = slices.Delete(m.editedScripts, idx, idx+1)
}

// EditedScripts returns the staging queue.
func (m *Manager) EditedScripts() []config.ScriptDefinition {
	return m.editedScripts
}

// ConsumeEditedScripts empties the staging queue and returns its contents.
func (m *Manager) ConsumeEditedScripts() []config.ScriptDefinition {
	scripts := m.editedScripts
	m.editedScripts = nil

	return scripts
}

// ClearEditedScripts empties the staging queue.
func (m *Manager) ClearEditedScripts() {
	m.editedScripts = nil
}

// ExecutionCount returns the number of started, not yet removed executions.
func (m *Manager) ExecutionCount() int {
	return m.startedExecutions.Len()
}

// HasAnyExecutionStarted reports whether any execution was ever started and
// not yet removed.
func (m *Manager) HasAnyExecutionStarted() bool {
	return !m.startedExecutions.IsEmpty()
}

// HasAllExecutionsFinished reports whether there is at least one execution
// and all of them finished.
func (m *Manager) HasAllExecutionsFinished() bool {
	if m.startedExecutions.IsEmpty() {
		return false
	}

	for p := range m.startedExecutions.Values() {
		if !(*p).HasFinished() {
			return false
		}
	}

	return true
}

// IsWaitingOnAnyExecutionToFinish reports whether any execution still has a
// live worker goroutine.
func (m *Manager) IsWaitingOnAnyExecutionToFinish() bool {
	for p := range m.startedExecutions.Values() {
		if (*p).IsWaitingForThread() {
			return true
		}
	}

	return false
}

// HasAnyExecutionFailed reports whether any execution had a failed script.
func (m *Manager) HasAnyExecutionFailed() bool {
	for p := range m.startedExecutions.Values() {
		if (*p).HasFailedScripts() {
			return true
		}
	}

	return false
}

func (m *Manager) moveNotStartedExecutionListsToEditedList(id ExecutionID) {
	e, ok := m.Execution(id)
	if !ok {
		return
	}

	m.editedScripts = append(m.editedScripts, e.ConsumeDisconnectedAndNotStartedScripts()...)
}
