package ecs

import (
	"reflect"
	"sync"
)

type anyStorage interface {
	Remove(e Entity) bool
}

// World owns entities and one Storage per component type.
type World struct {
	entities entityStore

	mu       sync.Mutex
	storages map[reflect.Type]anyStorage
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{storages: make(map[reflect.Type]anyStorage)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e and invalidates it.
func (w *World) DestroyEntity(e Entity) {
	if !w.entities.destroy(e) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.storages {
		s.Remove(e)
	}
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// GetStorage returns the storage of T in w, creating it on first use.
func GetStorage[T any](w *World) *Storage[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.storages == nil {
		w.storages = make(map[reflect.Type]anyStorage)
	}
	if s, ok := w.storages[t]; ok {
		return s.(*Storage[T])
	}

	s := NewStorage[T]()
	w.storages[t] = s
	return s
}

// Insert adds value to e in the storage of T. Dead entities are ignored.
func Insert[T any](w *World, e Entity, value T) bool {
	if !w.IsAlive(e) {
		return false
	}
	GetStorage[T](w).Insert(e, value)
	return true
}
