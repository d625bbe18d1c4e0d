package ecs

import (
	"sync/atomic"
)

// Storage is a sparse set of T keyed by Entity, with change tracking.
//
// Every write through Insert or GetMut stamps the slot with a new version.
// A reader remembers Version() after it has looked at the storage and later
// asks ChangedSince to know whether someone wrote the slot in between.
//
// Pointers returned by Get, GetMut and Peek stay valid until the next Insert
// or Remove. GetMut and Peek may be called concurrently for distinct entities;
// Insert and Remove need exclusive access.
type Storage[T any] struct {
	dense    []T
	entities []Entity
	changed  []uint64
	sparse   []int

	version atomic.Uint64
}

// NewStorage creates an empty storage.
func NewStorage[T any]() *Storage[T] {
	return &Storage[T]{}
}

func (s *Storage[T]) index(e Entity) (int, bool) {
	if e.ID <= 0 || e.ID > len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[e.ID-1]
	if idx < 0 || idx >= len(s.entities) || s.entities[idx] != e {
		return 0, false
	}
	return idx, true
}

func (s *Storage[T]) mark(idx int) {
	s.changed[idx] = s.version.Add(1)
}

// Insert adds or replaces the component of e, flagging it changed.
func (s *Storage[T]) Insert(e Entity, value T) {
	if e.ID <= 0 {
		return
	}

	if idx, ok := s.index(e); ok {
		s.dense[idx] = value
		s.mark(idx)
		return
	}

	for len(s.sparse) < e.ID {
		s.sparse = append(s.sparse, -1)
	}
	// an older generation of the same id may still hold the slot
	if idx := s.sparse[e.ID-1]; idx >= 0 && idx < len(s.entities) && s.entities[idx].ID == e.ID {
		s.removeAt(idx)
	}

	s.dense = append(s.dense, value)
	s.entities = append(s.entities, e)
	s.changed = append(s.changed, 0)
	s.sparse[e.ID-1] = len(s.dense) - 1
	s.mark(len(s.dense) - 1)
}

// Get returns the component of e for reading. Writing through the pointer
// bypasses change tracking.
func (s *Storage[T]) Get(e Entity) (*T, bool) {
	idx, ok := s.index(e)
	if !ok {
		return nil, false
	}
	return &s.dense[idx], true
}

// GetMut returns the component of e for writing and flags it changed.
func (s *Storage[T]) GetMut(e Entity) (*T, bool) {
	idx, ok := s.index(e)
	if !ok {
		return nil, false
	}
	s.mark(idx)
	return &s.dense[idx], true
}

// Peek is GetMut without the change flag, for bookkeeping writes that
// dependents need not see.
func (s *Storage[T]) Peek(e Entity) (*T, bool) {
	return s.Get(e)
}

// Has reports whether e has a component in this storage.
func (s *Storage[T]) Has(e Entity) bool {
	_, ok := s.index(e)
	return ok
}

// Remove deletes the component of e, if any.
func (s *Storage[T]) Remove(e Entity) bool {
	idx, ok := s.index(e)
	if !ok {
		return false
	}
	s.removeAt(idx)
	return true
}

func (s *Storage[T]) removeAt(idx int) {
	last := len(s.entities) - 1
	removed := s.entities[idx]
	moved := s.entities[last]

	s.dense[idx] = s.dense[last]
	s.entities[idx] = moved
	s.changed[idx] = s.changed[last]
	s.sparse[moved.ID-1] = idx

	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	s.changed = s.changed[:last]
	s.sparse[removed.ID-1] = -1
}

// Len returns the number of components stored.
func (s *Storage[T]) Len() int {
	return len(s.entities)
}

// Entities returns a copy of the entities owning a component, in storage order.
func (s *Storage[T]) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Each calls fn for every component, without change tracking. fn must not
// insert or remove.
func (s *Storage[T]) Each(fn func(e Entity, value *T)) {
	for i := range s.entities {
		fn(s.entities[i], &s.dense[i])
	}
}

// Version returns the version of the latest write.
func (s *Storage[T]) Version() uint64 {
	return s.version.Load()
}

// ChangedSince reports whether the component of e was written after version.
func (s *Storage[T]) ChangedSince(e Entity, version uint64) bool {
	idx, ok := s.index(e)
	if !ok {
		return false
	}
	return s.changed[idx] > version
}

// Changed returns the entities whose component was written after version.
func (s *Storage[T]) Changed(version uint64) []Entity {
	var out []Entity
	for i, v := range s.changed {
		if v > version {
			out = append(out, s.entities[i])
		}
	}
	return out
}
