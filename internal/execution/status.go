// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import "time"

// Result is the terminal classification of one script run.
type Result int

const (
	// ResultSuccess means the script exited successfully.
	ResultSuccess Result = iota
	// ResultFailed means the script failed to spawn or exhausted its retries.
	ResultFailed
	// ResultSkipped means the script never ran because a stop was requested
	// or an earlier script failed and the script does not ignore failures.
	ResultSkipped
	// ResultDisconnected means the script was voluntarily detached from the
	// running execution before it started, to be returned to the editable
	// pool. It does not advance execution progress accounting.
	ResultDisconnected
)

// String implements fmt.Stringer.
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFailed:
		return "failed"
	case ResultSkipped:
		return "skipped"
	case ResultDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Status is the progress record of one scheduled script.
// Invariant: FinishTime is only set when StartTime is set.
type Status struct {
	StartTime  *time.Time
	FinishTime *time.Time
	Result     Result
	RetryCount int
}

// Started reports whether the script has begun (or been skipped, which marks
// start and finish at the same instant).
func (s Status) Started() bool {
	return s.StartTime != nil
}

// Finished reports whether the script reached a terminal status.
func (s Status) Finished() bool {
	return s.Started() && s.FinishTime != nil
}

// Failed reports whether the script finished with a failure.
func (s Status) Failed() bool {
	return s.Finished() && s.Result == ResultFailed
}

// Skipped reports whether the script finished by being skipped.
func (s Status) Skipped() bool {
	return s.Finished() && s.Result == ResultSkipped
}

// Disconnected reports whether the script was detached from the execution.
// Disconnected scripts never start, so this does not require Finished.
func (s Status) Disconnected() bool {
	return s.Result == ResultDisconnected
}
