package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"groupchat/internal/events"
	"groupchat/internal/mocks"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newEnvelope(t *testing.T, eventType string) events.Envelope {
	t.Helper()
	id := uuid.New()
	env, err := events.NewEnvelope(eventType, events.AggregateTypeMessage, id, time.Now(), events.MessagePayload{MessageID: id})
	require.NoError(t, err)
	return env
}

func TestLocalBus(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := events.NewLocalBus(logger.NewWithCore(core))

	var calls []string
	bus.Subscribe(events.EventTypeMessageCreated, func(_ context.Context, env events.Envelope) error {
		calls = append(calls, "first")
		return errors.New("handler broke")
	})
	bus.Subscribe(events.EventTypeMessageCreated, func(_ context.Context, env events.Envelope) error {
		var p events.MessagePayload
		require.NoError(t, env.Decode(&p))
		require.Equal(t, env.AggregateID, p.MessageID.String())
		calls = append(calls, "second")
		return nil
	})

	t.Run("handlers run in order and errors do not stop the rest", func(t *testing.T) {
		err := bus.Publish(ctx, "channel:chat:x", newEnvelope(t, events.EventTypeMessageCreated))
		require.NoError(t, err)
		require.Equal(t, []string{"first", "second"}, calls)
		require.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	})

	t.Run("unsubscribed event types are ignored", func(t *testing.T) {
		calls = nil
		require.NoError(t, bus.Publish(ctx, "channel:chat:x", newEnvelope(t, events.EventTypeMessageDeleted)))
		require.Empty(t, calls)
	})
}

func TestRedisBus(t *testing.T) {
	ctx := context.Background()

	t.Run("publish sends the JSON envelope", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		pub := mocks.NewMockPublisher(ctrl)
		bus := events.NewRedisBus(pub, mocks.NewMockSubscriber(ctrl), logger.NewNop())

		env := newEnvelope(t, events.EventTypeMessageUpdated)
		var sent []byte
		pub.EXPECT().Publish(gomock.Any(), "channel:chat:1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, payload []byte) error {
				sent = payload
				return nil
			})
		req.NoError(bus.Publish(ctx, "channel:chat:1", env))

		var got events.Envelope
		req.NoError(json.Unmarshal(sent, &got))
		req.Equal(env.EventType, got.EventType)
		req.Equal(env.AggregateID, got.AggregateID)
		req.JSONEq(string(env.Payload), string(got.Payload))
	})

	t.Run("publish errors are returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		pub := mocks.NewMockPublisher(ctrl)
		bus := events.NewRedisBus(pub, mocks.NewMockSubscriber(ctrl), logger.NewNop())

		boom := errors.New("connection refused")
		pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)
		require.ErrorIs(t, bus.Publish(ctx, "channel:user:1", newEnvelope(t, events.EventTypeChatCreated)), boom)
	})

	t.Run("run dispatches received envelopes and drops malformed ones", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		sub := mocks.NewMockSubscriber(ctrl)
		core, logs := observer.New(zapcore.WarnLevel)
		bus := events.NewRedisBus(mocks.NewMockPublisher(ctrl), sub, logger.NewWithCore(core))

		var received []events.Envelope
		bus.Subscribe(events.EventTypeMessageCreated, func(_ context.Context, env events.Envelope) error {
			received = append(received, env)
			return nil
		})

		env := newEnvelope(t, events.EventTypeMessageCreated)
		data, err := json.Marshal(env)
		req.NoError(err)

		sub.EXPECT().Subscribe(gomock.Any(), []string{events.ChannelPattern}, gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ []string, handler func(string, []byte)) error {
				handler("channel:chat:1", []byte("{not json"))
				handler("channel:chat:1", data)
				return context.Canceled
			})

		req.NoError(bus.Run(ctx))
		req.Len(received, 1)
		req.Equal(env.AggregateID, received[0].AggregateID)
		req.Equal(1, logs.FilterMessage("dropping malformed event").Len())
	})

	t.Run("run reports subscription failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sub := mocks.NewMockSubscriber(ctrl)
		bus := events.NewRedisBus(mocks.NewMockPublisher(ctrl), sub, logger.NewNop())

		sub.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("no route to host"))
		require.Error(t, bus.Run(ctx))
	})
}
