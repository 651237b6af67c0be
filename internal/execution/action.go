// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import "sync/atomic"

// requestedAction is the out-of-band cancellation/request signal from the
// controller to a worker goroutine. It is last-write-wins: storing a new
// request overwrites an unconsumed one, and the worker clears it on its next
// poll. Delivery of multiple distinct requests is deliberately not
// guaranteed.
type requestedAction struct {
	v atomic.Uint32
}

const (
	actionNone uint32 = iota
	actionStop
	actionDisconnect
)

// requestStop asks the worker to kill the current child process and skip the
// remaining scripts.
func (a *requestedAction) requestStop() {
	a.v.Store(actionStop)
}

// requestDisconnect asks the worker to mark every not-yet-reached script as
// disconnected without killing the currently running one.
func (a *requestedAction) requestDisconnect() {
	a.v.Store(actionDisconnect)
}

// consume returns the pending request, if any, and clears it.
func (a *requestedAction) consume() uint32 {
	raw := a.v.Load()
	if raw != actionNone {
		a.v.Store(actionNone)
	}

	return raw
}
