// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package execution runs user-defined scripts as OS processes, in parallel
// executions that each process their scripts strictly in order.
// An execution can have batches of scripts chained onto it while it runs, it
// can be stopped, and its not-yet-run scripts can be disconnected so they can
// be edited and resubmitted. Progress is reported through non-blocking
// channels so a UI can poll the manager on a timer without ever blocking.
package execution
