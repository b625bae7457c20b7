package repository

import (
	"sync"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain/event"
)

// MemoryRecorder keeps events in memory. It is the default sink when no
// database is configured and the observer used by the engine tests.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []*event.Event
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(c ctx.Ctx, e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of all recorded events in emission order.
func (r *MemoryRecorder) Events() []*event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// EventsOfType filters recorded events by type.
func (r *MemoryRecorder) EventsOfType(t event.Type) []*event.Event {
	out := []*event.Event{}
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
