package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types carried by RefreshEvent.
const (
	// EventTypeDayRollover is emitted when a user's local midnight passes
	// and their "today" has moved to a new calendar date.
	EventTypeDayRollover = "day_rollover"

	// EventTypePreferenceChange is emitted when a user saves new time
	// preferences, shifting their boundaries immediately.
	EventTypePreferenceChange = "preference_change"

	// EventTypeForceRefresh is emitted when an operator forces every
	// scheduled user's views to recompute.
	EventTypeForceRefresh = "force_refresh"
)

// RefreshEvent announces that a user's filtered views are stale and must be
// recomputed. It carries the reason and a typed payload, but no computed
// results; consumers query the view engine themselves.
type RefreshEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the EventType constants above
	Type string `json:"type"`

	// UserID identifies whose views went stale
	UserID uuid.UUID `json:"user_id"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// RolloverPayload describes a day rollover fire.
type RolloverPayload struct {
	Timezone  string    `json:"timezone"`
	LocalDate string    `json:"local_date"`
	FiredAt   time.Time `json:"fired_at"`
}

// PreferencePayload describes a preference change.
type PreferencePayload struct {
	Timezone            string `json:"timezone"`
	CompletedVisibility string `json:"completed_task_visibility"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *RefreshEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewRefreshEvent creates a new RefreshEvent for the given user with the
// specified type and payload.
func NewRefreshEvent(eventType string, userID uuid.UUID, payload interface{}) (*RefreshEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &RefreshEvent{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *RefreshEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *RefreshEvent) error
}
