// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import (
	"sync"
	"time"

	"github.com/matt-FFFFFF/scripter/internal/ringbuffer"
)

// logBufferCapacity is how many recent output lines an execution keeps for
// live tailing.
const logBufferCapacity = 30

// OutputKind tags an output line with its origin.
type OutputKind int

const (
	// OutputStdout is a line read from the child's standard output.
	OutputStdout OutputKind = iota
	// OutputStderr is a line read from the child's standard error.
	OutputStderr
	// OutputError is an engine-generated error message.
	OutputError
	// OutputEvent is an engine-generated informational message.
	OutputEvent
)

// String implements fmt.Stringer.
func (k OutputKind) String() string {
	switch k {
	case OutputStdout:
		return "stdout"
	case OutputStderr:
		return "stderr"
	case OutputError:
		return "error"
	case OutputEvent:
		return "event"
	default:
		return "unknown"
	}
}

// OutputLine is one captured line of script output or an engine event.
type OutputLine struct {
	Text      string
	Kind      OutputKind
	Timestamp time.Time
}

// SharedLogBuffer is the mutex-guarded view of the recent-output ring buffer
// shared between the worker goroutines (writers) and the UI (reader).
type SharedLogBuffer struct {
	mu  sync.Mutex
	buf *ringbuffer.RingBuffer[OutputLine]
}

// NewSharedLogBuffer creates a buffer holding the last logBufferCapacity lines.
func NewSharedLogBuffer() *SharedLogBuffer {
	return &SharedLogBuffer{
		buf: ringbuffer.New[OutputLine](logBufferCapacity),
	}
}

// Push appends a line, overwriting the oldest once full.
func (b *SharedLogBuffer) Push(line OutputLine) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Push(line)
}

// Snapshot returns the live lines from oldest to newest.
func (b *SharedLogBuffer) Snapshot() []OutputLine {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]OutputLine, 0, b.buf.Len())
	for line := range b.buf.Items() {
		out = append(out, line)
	}

	return out
}

// IsEmpty reports whether nothing has been pushed yet.
func (b *SharedLogBuffer) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.IsEmpty()
}
