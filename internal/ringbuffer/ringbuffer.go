// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ringbuffer provides a fixed-capacity circular buffer that
// overwrites the oldest entry once full. It is used to keep the most recent
// output lines of an execution for live tailing.
//
// The buffer is not internally synchronized; callers that share it between
// goroutines must guard it with a mutex.
package ringbuffer

import "iter"

// RingBuffer is a fixed-capacity circular buffer. The capacity is set at
// construction and never changes. Pushing into a full buffer overwrites the
// oldest entry.
//
//	|-- tail        |-- head
//	v               v
//	[1] [2] [3] [4] [ ]
type RingBuffer[T any] struct {
	buf   []T
	head  int
	tail  int
	empty bool
}

// New creates a RingBuffer with the given capacity. A capacity below one is
// treated as one.
func New[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &RingBuffer[T]{
		buf:   make([]T, capacity),
		empty: true,
	}
}

// Push appends a value. Once the buffer is full, the oldest value is
// overwritten and both head and tail advance.
func (r *RingBuffer[T]) Push(value T) {
	if r.empty {
		r.empty = false
	} else {
		r.head = (r.head + 1) % len(r.buf)
		if r.head == r.tail {
			r.tail = (r.tail + 1) % len(r.buf)
		}
	}

	r.buf[r.head] = value
}

// Items returns a forward iterator over the live entries, from oldest to
// newest. The sequence is restartable and empty for a fresh buffer.
func (r *RingBuffer[T]) Items() iter.Seq[T] {
	return func(yield func(T) bool) {
		if r.empty {
			return
		}

		i := r.tail
		for {
			if !yield(r.buf[i]) {
				return
			}

			if i == r.head {
				return
			}

			i = (i + 1) % len(r.buf)
		}
	}
}

// Len returns the number of live entries.
func (r *RingBuffer[T]) Len() int {
	switch {
	case r.empty:
		return 0
	case r.head >= r.tail:
		return r.head - r.tail + 1
	default:
		return len(r.buf) - r.tail + r.head + 1
	}
}

// IsEmpty reports whether nothing has been pushed since construction or the
// last Reset.
func (r *RingBuffer[T]) IsEmpty() bool {
	return r.empty
}

// Reset marks the buffer empty without releasing its storage.
func (r *RingBuffer[T]) Reset() {
	r.head = 0
	r.tail = 0
	r.empty = true
}
