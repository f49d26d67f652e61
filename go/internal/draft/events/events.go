// Package events carries draft domain events to interested parties.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event. It is also the last token of the subject the
// event is published on.
type Type string

const (
	TypePickMade       Type = "PickMade"
	TypeDraftStarted   Type = "DraftStarted"
	TypeDraftPaused    Type = "DraftPaused"
	TypeDraftResumed   Type = "DraftResumed"
	TypeDraftCompleted Type = "DraftCompleted"
	TypeAutopickFailed Type = "AutopickFailed"
)

// Event is a domain event before serialization.
type Event struct {
	ID         uuid.UUID
	Type       Type
	RoomID     uuid.UUID
	OccurredAt time.Time
	Payload    any
}

// New builds an Event with a fresh id
func New(t Type, roomID uuid.UUID, at time.Time, payload any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		RoomID:     roomID,
		OccurredAt: at,
		Payload:    payload,
	}
}

// Envelope is the wire form of an Event.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType Type            `json:"eventType"`
	RoomID    string          `json:"roomId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Envelope serializes the payload and wraps it.
func (e Event) Envelope() (Envelope, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", e.Type, err)
	}
	return Envelope{
		EventID:   e.ID.String(),
		EventType: e.Type,
		RoomID:    e.RoomID.String(),
		Timestamp: e.OccurredAt.UTC(),
		Payload:   payload,
	}, nil
}

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error { return f(ctx, event) }

// Nop discards every event.
var Nop Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

// Fanout publishes to every publisher in order and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
