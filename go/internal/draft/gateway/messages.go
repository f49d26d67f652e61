package gateway

import (
	"context"

	"github.com/mcdev12/snakedraft/go/internal/draft/engine"
	"github.com/mcdev12/snakedraft/go/internal/draft/events"
)

// MessageType tells websocket clients how to read Data
type MessageType string

const (
	MessageState MessageType = "state" // Data is an engine.State
	MessageEvent MessageType = "event" // Data is an events.Envelope
)

// Message is the frame written to websocket clients
type Message struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

func stateMessage(s engine.State) Message {
	return Message{Type: MessageState, Data: s}
}

var _ events.Publisher = (*ConnectionManager)(nil)

// Publish forwards a domain event to every websocket client
func (cm *ConnectionManager) Publish(_ context.Context, e events.Event) error {
	env, err := e.Envelope()
	if err != nil {
		return err
	}
	cm.Broadcast(Message{Type: MessageEvent, Data: env})
	return nil
}
