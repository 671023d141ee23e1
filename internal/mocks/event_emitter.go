package mocks

import (
	"context"
	"sync"

	"github.com/daylist/daylist-api/internal/events"
)

// MockEventEmitter implements events.EventEmitter for testing
type MockEventEmitter struct {
	// EmitEventFn allows test cases to mock the EmitEvent behavior
	EmitEventFn func(ctx context.Context, event *events.RefreshEvent) error

	// EmitError is returned by the default implementation when set
	EmitError error

	// Call tracking for test verification
	mu     sync.Mutex
	Events []*events.RefreshEvent
}

// Ensure MockEventEmitter implements events.EventEmitter
var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements the events.EventEmitter interface
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.RefreshEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()

	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}

	return m.EmitError
}

// Emitted returns a snapshot of the events recorded so far.
func (m *MockEventEmitter) Emitted() []*events.RefreshEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*events.RefreshEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

// EmittedOfType returns the recorded events with the given type.
func (m *MockEventEmitter) EmittedOfType(eventType string) []*events.RefreshEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*events.RefreshEvent
	for _, e := range m.Events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears recorded events between test phases.
func (m *MockEventEmitter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = nil
}
