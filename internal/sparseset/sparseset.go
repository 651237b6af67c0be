// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sparseset implements a generational arena: a set of values
// addressed by generated keys with O(1) insert, lookup and removal.
//
// A Key obtained before a removal never aliases a later-inserted value, even
// when the underlying slot is reused: the epoch stored in the key no longer
// matches and lookups report not-found instead of returning wrong data. This
// makes keys safe to hold across ticks in UI-facing bookkeeping.
//
// The used memory only grows; it is reclaimed by discarding the whole set.
package sparseset

import (
	"fmt"
	"iter"
	"math"
)

// Key is a stable handle to a value in a SparseSet. Keys are only meaningful
// for the set that created them; they are not meant to be persisted.
type Key struct {
	sparseIndex int
	epoch       uint64
}

// String implements fmt.Stringer for diagnostics.
func (k Key) String() string {
	return fmt.Sprintf("key(%d@%d)", k.sparseIndex, k.epoch)
}

const noFreeEntry = math.MaxInt

type sparseEntry struct {
	// denseIndex is valid while alive; nextFree while on the free list.
	denseIndex int
	nextFree   int
	epoch      uint64
	alive      bool
}

// SparseSet stores values in a dense slice for cheap iteration, with a
// parallel dense-to-sparse back-reference slice and a sparse slice of
// generational entries threaded onto a free list.
type SparseSet[T any] struct {
	denseValues []T
	denseKeys   []Key
	sparse      []sparseEntry
	nextFree    int
}

// New creates an empty SparseSet.
func New[T any]() *SparseSet[T] {
	return &SparseSet[T]{
		nextFree: noFreeEntry,
	}
}

// Push inserts a value and returns its key.
func (s *SparseSet[T]) Push(value T) Key {
	denseIndex := len(s.denseValues)

	var key Key

	if s.nextFree != noFreeEntry {
		sparseIndex := s.nextFree
		entry := &s.sparse[sparseIndex]
		s.nextFree = entry.nextFree

		entry.alive = true
		entry.denseIndex = denseIndex

		key = Key{sparseIndex: sparseIndex, epoch: entry.epoch}
	} else {
		s.sparse = append(s.sparse, sparseEntry{
			denseIndex: denseIndex,
			alive:      true,
		})

		key = Key{sparseIndex: len(s.sparse) - 1}
	}

	s.denseValues = append(s.denseValues, value)
	s.denseKeys = append(s.denseKeys, key)

	return key
}

// Get returns a pointer to the value for the key, or false when the key is
// stale or was never issued by this set. The pointer is invalidated by the
// next removal.
func (s *SparseSet[T]) Get(key Key) (*T, bool) {
	entry, ok := s.lookup(key)
	if !ok {
		return nil, false
	}

	return &s.denseValues[entry.denseIndex], true
}

// Contains reports whether the key still resolves to a live value.
func (s *SparseSet[T]) Contains(key Key) bool {
	_, ok := s.lookup(key)
	return ok
}

// RemoveSwap removes the value for the key in O(1) by swapping the last dense
// element into its place, reordering the dense storage. It returns the
// removed value, or false for a stale key.
func (s *SparseSet[T]) RemoveSwap(key Key) (T, bool) {
	var zero T

	entry, ok := s.lookup(key)
	if !ok {
		return zero, false
	}

	denseIndex := entry.denseIndex
	last := len(s.denseValues) - 1

	removed := s.denseValues[denseIndex]

	s.denseValues[denseIndex] = s.denseValues[last]
	s.denseKeys[denseIndex] = s.denseKeys[last]
	s.denseValues = s.denseValues[:last]
	s.denseKeys = s.denseKeys[:last]

	// fix the back-reference of the element that was swapped in
	if denseIndex < len(s.denseValues) {
		swapped := s.denseKeys[denseIndex]
		s.sparse[swapped.sparseIndex].denseIndex = denseIndex
	}

	s.free(key)

	return removed, true
}

// RemoveStable removes the value for the key preserving the relative order of
// the remaining values, at O(n) cost. It returns the removed value, or false
// for a stale key.
func (s *SparseSet[T]) RemoveStable(key Key) (T, bool) {
	var zero T

	entry, ok := s.lookup(key)
	if !ok {
		return zero, false
	}

	denseIndex := entry.denseIndex
	removed := s.denseValues[denseIndex]

	for i := denseIndex + 1; i < len(s.denseValues); i++ {
		s.sparse[s.denseKeys[i].sparseIndex].denseIndex = i - 1
	}

	s.denseValues = append(s.denseValues[:denseIndex], s.denseValues[denseIndex+1:]...)
	s.denseKeys = append(s.denseKeys[:denseIndex], s.denseKeys[denseIndex+1:]...)

	s.free(key)

	return removed, true
}

// Len returns the number of live values.
func (s *SparseSet[T]) Len() int {
	return len(s.denseValues)
}

// IsEmpty reports whether the set holds no values.
func (s *SparseSet[T]) IsEmpty() bool {
	return len(s.denseValues) == 0
}

// Values iterates over pointers to the live values in dense order. The set
// must not be modified during iteration.
func (s *SparseSet[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for i := range s.denseValues {
			if !yield(&s.denseValues[i]) {
				return
			}
		}
	}
}

// All iterates over key/value-pointer pairs in dense order. The set must not
// be modified during iteration.
func (s *SparseSet[T]) All() iter.Seq2[Key, *T] {
	return func(yield func(Key, *T) bool) {
		for i := range s.denseValues {
			if !yield(s.denseKeys[i], &s.denseValues[i]) {
				return
			}
		}
	}
}

// Keys returns the keys of the live values in dense order.
func (s *SparseSet[T]) Keys() []Key {
	keys := make([]Key, len(s.denseKeys))
	copy(keys, s.denseKeys)

	return keys
}

func (s *SparseSet[T]) lookup(key Key) (sparseEntry, bool) {
	if key.sparseIndex < 0 || key.sparseIndex >= len(s.sparse) {
		return sparseEntry{}, false
	}

	entry := s.sparse[key.sparseIndex]
	if !entry.alive || entry.epoch != key.epoch {
		return sparseEntry{}, false
	}

	return entry, true
}

func (s *SparseSet[T]) free(key Key) {
	entry := &s.sparse[key.sparseIndex]
	entry.alive = false
	entry.nextFree = s.nextFree
	entry.epoch++

	// once the epoch counter would wrap the slot is retired for good
	if entry.epoch != 0 {
		s.nextFree = key.sparseIndex
	}
}
