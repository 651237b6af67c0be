// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import (
	"time"

	"github.com/spf13/afero"

	"github.com/matt-FFFFFF/scripter/internal/config"
)

// TickStatus is what one Execution.Tick call observed.
type TickStatus int

const (
	// TickContinue means nothing conclusive happened this tick.
	TickContinue TickStatus = iota
	// TickExecutionFinished means the last script of the last list reached a
	// terminal status this tick.
	TickExecutionFinished
	// TickDisconnectFinished means the worker completed transmitting
	// disconnect statuses; the detached scripts are ready to be reclaimed
	// with ConsumeDisconnectedAndNotStartedScripts.
	TickDisconnectFinished
)

// ScheduledScript is one cache record: the script definition as submitted
// and its last observed status.
type ScheduledScript struct {
	Script config.ScriptDefinition
	Status Status
}

// executionList is one batch of scripts handled by a single worker
// invocation. An execution can chain multiple lists; as soon as one list
// finishes the next one starts, so to the user it looks like one continuous
// run.
type executionList struct {
	data *scriptExecutionData
	// firstCacheIndex is where this list's scripts start in the flat
	// scheduled-scripts cache.
	firstCacheIndex int
}

// Execution is one logical run as perceived by the user. It owns a chain of
// execution lists, a flat status cache over all of them, and the shared ring
// buffer of recent output. All methods must be called from the controller
// goroutine; only the worker-facing channels cross goroutines.
type Execution struct {
	id   ExecutionID
	name string
	fs   afero.Fs

	lists            []executionList
	currentListIndex int

	scheduledScripts []ScheduledScript

	hasFailedScripts bool

	logDirectory string
	recentLogs   *SharedLogBuffer
	// currentlyOutputtingScript is the cache index of the script that last
	// reported progress, or -1 before any progress arrives.
	currentlyOutputtingScript int
}

func newExecution(fs afero.Fs, name string) *Execution {
	return &Execution{
		name:                      name,
		fs:                        fs,
		recentLogs:                NewSharedLogBuffer(),
		currentlyOutputtingScript: -1,
	}
}

// ID returns the stable identifier assigned by the manager.
func (e *Execution) ID() ExecutionID {
	return e.id
}

// Name returns the display name the execution was started with.
func (e *Execution) Name() string {
	return e.name
}

// LogDirectory returns the directory this execution writes script output to.
// Empty until the first batch is submitted.
func (e *Execution) LogDirectory() string {
	return e.logDirectory
}

// RecentLogs returns the shared ring buffer of recent output lines.
func (e *Execution) RecentLogs() *SharedLogBuffer {
	return e.recentLogs
}

// CurrentlyOutputtingScript returns the cache index of the script that last
// reported progress, or -1 if none has yet.
func (e *Execution) CurrentlyOutputtingScript() int {
	return e.currentlyOutputtingScript
}

// HasFailedScripts reports whether any script of this execution ended Failed.
func (e *Execution) HasFailedScripts() bool {
	return e.hasFailedScripts
}

// ScheduledScripts returns the flat cache of every submitted script with its
// last observed status, in submission order.
func (e *Execution) ScheduledScripts() []ScheduledScript {
	return e.scheduledScripts
}

// HasFinished reports whether every submitted script reached a terminal
// status. False for an execution with no scripts yet.
func (e *Execution) HasFinished() bool {
	if len(e.scheduledScripts) == 0 {
		return false
	}

	return e.scheduledScripts[len(e.scheduledScripts)-1].Status.Finished()
}

// HasPotentiallyEditableScripts reports whether there are scripts after the
// one currently outputting, i.e. scripts a disconnect could reclaim.
func (e *Execution) HasPotentiallyEditableScripts() bool {
	return e.currentlyOutputtingScript+1 < len(e.scheduledScripts)
}

// IsWaitingForThread reports whether the previous list's worker goroutine is
// still alive. The UI uses this to delay teardown until workers settled.
func (e *Execution) IsWaitingForThread() bool {
	if len(e.lists) == 0 || e.currentListIndex == 0 {
		return false
	}

	data := e.lists[e.currentListIndex-1].data

	return data.started() && !data.joined && data.isRunning()
}

// ExecuteScripts either starts the execution (first call) or appends the
// batch as a new list that runs once all prior lists finish. The scripts are
// cloned at submission time so later edits to the caller's definitions do
// not affect the run.
func (e *Execution) ExecuteScripts(cfg config.AppConfig, scripts []config.ScriptDefinition) {
	if len(scripts) == 0 {
		return
	}

	firstCacheIndex := len(e.scheduledScripts)
	alreadyStarted := len(e.lists) > 0

	// the cache exists so callers can render the full script list with
	// statuses without touching worker state
	for i := range scripts {
		e.scheduledScripts = append(e.scheduledScripts, ScheduledScript{
			Script: scripts[i].Clone(),
		})
	}

	e.lists = append(e.lists, executionList{
		data: &scriptExecutionData{
			scriptsToRun: config.CloneScripts(scripts),
		},
		firstCacheIndex: firstCacheIndex,
	})

	if !alreadyStarted {
		e.logDirectory = executionLogDirectory(cfg.Paths.LogsDir, time.Now())

		e.runExecutionList(cfg)
	}
}

// RequestStop asks the running worker to kill the current child and skip the
// rest of its queue. No-op when the execution already finished.
func (e *Execution) RequestStop() {
	if e.currentListIndex < len(e.lists) {
		e.lists[e.currentListIndex].data.requestedAction.requestStop()
	}
}

// RequestDisconnect asks the running worker to mark every not-yet-reached
// script as Disconnected so it can be reclaimed. The currently running
// script is left to finish normally. No-op when the execution already
// finished.
func (e *Execution) RequestDisconnect() {
	if e.currentListIndex < len(e.lists) {
		e.lists[e.currentListIndex].data.requestedAction.requestDisconnect()
	}
}

// Tick drains at most one progress message from the running worker and folds
// it into the status cache. It never blocks.
func (e *Execution) Tick(cfg config.AppConfig) TickStatus {
	if e.currentListIndex >= len(e.lists) {
		return TickContinue
	}

	list := &e.lists[e.currentListIndex]

	if list.data.progress == nil {
		// current list not started yet: waiting on the previous worker
		e.tryJoinPreviousAndStartNext(cfg)

		return TickContinue
	}

	select {
	case progress := <-list.data.progress:
		localIdx := progress.scriptIdx
		status := progress.status

		if status.Failed() {
			e.hasFailedScripts = true
		}

		if status.Disconnected() {
			// disconnect statuses only flag cache entries, they are not
			// execution progress; the index one past the list's end is the
			// end-of-transmission sentinel
			if localIdx == len(list.data.scriptsToRun) {
				return TickDisconnectFinished
			}

			e.scheduledScripts[list.firstCacheIndex+localIdx].Status = status

			return TickContinue
		}

		cacheIdx := list.firstCacheIndex + localIdx

		e.scheduledScripts[cacheIdx].Status = status
		e.currentlyOutputtingScript = cacheIdx

		if e.scheduledScripts[cacheIdx].Status.Finished() &&
			len(list.data.scriptsToRun) == localIdx+1 {
			e.currentListIndex++
			e.tryJoinPreviousAndStartNext(cfg)
		}

		if e.HasFinished() {
			return TickExecutionFinished
		}

	default:
	}

	return TickContinue
}

// ConsumeDisconnectedAndNotStartedScripts strips every not-yet-started
// script out of the execution, both the disconnected remainder of the
// current list and every list queued after it, and returns them in original
// submission order.
func (e *Execution) ConsumeDisconnectedAndNotStartedScripts() []config.ScriptDefinition {
	var result []config.ScriptDefinition

	if e.currentListIndex >= len(e.lists) {
		return result
	}

	firstDisconnectedCacheIdx := -1

	for i := range e.scheduledScripts {
		if e.scheduledScripts[i].Status.Disconnected() {
			firstDisconnectedCacheIdx = i

			break
		}
	}

	if firstDisconnectedCacheIdx >= 0 {
		listIdx, localIdx, ok := e.scriptIdxFromCacheIdx(firstDisconnectedCacheIdx)
		if !ok || listIdx != e.currentListIndex {
			return result
		}

		data := e.lists[listIdx].data

		result = append(result, data.scriptsToRun[localIdx:]...)
		data.scriptsToRun = data.scriptsToRun[:localIdx]

		e.scheduledScripts = e.scheduledScripts[:firstDisconnectedCacheIdx]
	} else if e.currentListIndex+1 < len(e.lists) {
		e.scheduledScripts = e.scheduledScripts[:e.lists[e.currentListIndex+1].firstCacheIndex]
	}

	for _, list := range e.lists[e.currentListIndex+1:] {
		result = append(result, list.data.scriptsToRun...)
	}

	e.lists = e.lists[:e.currentListIndex+1]

	return result
}

// joinAllWorkers blocks until every started worker of this execution has
// returned. Used on removal; the workers are expected to already be done, the
// join is defensive.
func (e *Execution) joinAllWorkers() {
	for i := range e.lists {
		data := e.lists[i].data
		if data.started() && !data.joined {
			data.join()
			data.joined = true
		}
	}
}

// tryJoinPreviousAndStartNext advances the chain: once the previous list's
// worker is observed finished it is joined and the next list (if any) is
// started. If the worker is still alive the start attempt is deferred to the
// next tick. This keeps at most one worker alive per execution and
// guarantees list i's log files are closed before list i+1 runs.
func (e *Execution) tryJoinPreviousAndStartNext(cfg config.AppConfig) {
	if e.currentListIndex == 0 {
		return
	}

	if !e.tryJoinWorker(e.currentListIndex - 1) {
		return
	}

	if e.currentListIndex < len(e.lists) {
		e.runExecutionList(cfg)
	}
}

// tryJoinWorker reports whether the given list's worker has been joined,
// joining it now if it just finished. Non-blocking.
func (e *Execution) tryJoinWorker(listIdx int) bool {
	data := e.lists[listIdx].data

	if !data.started() || data.joined {
		return true
	}

	if data.isRunning() {
		return false
	}

	data.join()
	data.joined = true

	return true
}

// runExecutionList launches the worker for the current list. The first
// script inherits the final status of the previous list's last script for
// the skip-on-failure policy.
func (e *Execution) runExecutionList(cfg config.AppConfig) {
	if e.currentListIndex >= len(e.lists) {
		return
	}

	hadFailuresBefore := false
	if prev := e.previousListFinalStatus(); prev != nil {
		hadFailuresBefore = prev.Failed() || prev.Skipped()
	}

	list := &e.lists[e.currentListIndex]

	if len(list.data.scriptsToRun) == 0 {
		return
	}

	runScripts(list.data, e.fs, e.logDirectory, hadFailuresBefore, cfg, e.recentLogs, list.firstCacheIndex)
}

// previousListFinalStatus returns the status of the previous list's last
// script, or nil when running the first list.
func (e *Execution) previousListFinalStatus() *Status {
	if e.currentListIndex == 0 {
		return nil
	}

	prev := &e.lists[e.currentListIndex-1]
	idx := prev.firstCacheIndex + len(prev.data.scriptsToRun) - 1

	return &e.scheduledScripts[idx].Status
}

// scriptIdxFromCacheIdx translates a flat cache index into (list index,
// list-local index).
func (e *Execution) scriptIdxFromCacheIdx(cacheIdx int) (listIdx, localIdx int, ok bool) {
	for i := range e.lists {
		list := &e.lists[i]
		if cacheIdx >= list.firstCacheIndex &&
			cacheIdx < list.firstCacheIndex+len(list.data.scriptsToRun) {
			return i, cacheIdx - list.firstCacheIndex, true
		}
	}

	return 0, 0, false
}
