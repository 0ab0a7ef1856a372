package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lecture-service/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatermillPublisher_DeliversEnvelope(t *testing.T) {
	logger := discardLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NewSlogLogger(logger))
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, "lectures")
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubSub, "lectures", logger)
	event, err := NewEvent(LectureCreated, LectureEvent{LectureID: 7, TeacherProfileID: 3, Title: "Recursion", Actor: "teacher_ananya"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, LectureCreated, msg.Metadata.Get("event_type"))

		var got Event
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, EventSource, got.Source)
		assert.Equal(t, EventVersion, got.Version)

		data, err := DecodeLectureEvent(got)
		require.NoError(t, err)
		assert.EqualValues(t, 7, data.LectureID)
		assert.Equal(t, "teacher_ananya", data.Actor)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestNewEventPublisher_Drivers(t *testing.T) {
	publisher, err := NewEventPublisher(config.EventsConfig{Driver: config.EventsDriverGoChannel, Topic: "lectures"}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, publisher.Close())

	_, err = NewEventPublisher(config.EventsConfig{Driver: "nats"}, discardLogger())
	assert.Error(t, err)
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(discardLogger())
	event, err := NewEvent(LectureDeleted, LectureEvent{LectureID: 1})
	require.NoError(t, err)

	require.NoError(t, mock.Publish(context.Background(), event))
	require.Len(t, mock.GetPublishedEvents(), 1)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())

	mock.FailWith(assert.AnError)
	assert.ErrorIs(t, mock.Publish(context.Background(), event), assert.AnError)
}
