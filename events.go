package feathersync

import (
	"github.com/akmonengine/feathersync/actor"
)

const (
	ON_SLEEP EventType = iota
	ON_WAKE
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Sleep/Wake events
type SleepEvent struct {
	Body actor.Handle
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body actor.Handle
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	sleepStates map[actor.Handle]bool
}

func NewEvents() Events {
	return Events{
		listeners:   make(map[EventType][]EventListener),
		buffer:      make([]Event, 0, 256),
		sleepStates: make(map[actor.Handle]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// processSleepEvents compares the sleep state of each live body with the
// state seen at the previous step. A body seen for the first time only
// records its state.
func (e *Events) processSleepEvents(slots []bodySlot) {
	if e.sleepStates == nil {
		e.sleepStates = make(map[actor.Handle]bool)
	}

	for index, slot := range slots {
		if slot.body == nil {
			continue
		}
		handle := actor.NewHandle(uint32(index), slot.generation)

		trackedState, exists := e.sleepStates[handle]
		if !exists {
			e.sleepStates[handle] = slot.body.IsSleeping
			continue
		}

		if !trackedState && slot.body.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: handle})
			e.sleepStates[handle] = true
		} else if trackedState && !slot.body.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: handle})
			e.sleepStates[handle] = false
		}
	}
}

// forget drops the tracked state of a removed body
func (e *Events) forget(handle actor.Handle) {
	delete(e.sleepStates, handle)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
