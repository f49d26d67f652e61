package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeCarriesPayload(t *testing.T) {
	roomID := uuid.New()
	event := New(TypeDraftCompleted, roomID, time.Unix(100, 0), DraftCompletedPayload{TotalPicks: 216})

	env, err := event.Envelope()
	require.NoError(t, err)
	assert.Equal(t, roomID.String(), env.RoomID)
	assert.Equal(t, TypeDraftCompleted, env.EventType)
	assert.JSONEq(t, `{"room_id":"","completed_at":"0001-01-01T00:00:00Z","duration":"","total_picks":216}`, string(env.Payload))
}

func TestEnvelopeRejectsUnmarshalablePayload(t *testing.T) {
	_, err := New(TypePickMade, uuid.New(), time.Now(), make(chan int)).Envelope()
	assert.Error(t, err)
}

func TestFanoutPublishesToAllAndJoinsErrors(t *testing.T) {
	var got []Type
	record := PublisherFunc(func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	boom := errors.New("boom")
	failing := PublisherFunc(func(context.Context, Event) error { return boom })

	err := Fanout{failing, record, Nop}.Publish(context.Background(), New(TypeDraftResumed, uuid.New(), time.Now(), nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []Type{TypeDraftResumed}, got)
}
