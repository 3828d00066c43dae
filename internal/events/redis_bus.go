package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"groupchat/pkg/logger"

	"go.uber.org/zap"
)

// RedisBus publishes envelopes as JSON over Redis pub/sub and dispatches every
// envelope received on ChannelPattern to the registered handlers.
type RedisBus struct {
	registry
	pub Publisher
	sub Subscriber
	log *logger.Logger
}

func NewRedisBus(pub Publisher, sub Subscriber, log *logger.Logger) *RedisBus {
	return &RedisBus{pub: pub, sub: sub, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.pub.Publish(ctx, channel, data); err != nil {
		return fmt.Errorf("publish %s to %s: %w", env.EventType, channel, err)
	}
	return nil
}

// Run consumes events until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context) error {
	err := b.sub.Subscribe(ctx, []string{ChannelPattern}, func(channel string, payload []byte) {
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			b.log.Warn(ctx, "dropping malformed event", zap.String("channel", channel), zap.Error(err))
			return
		}
		b.dispatch(ctx, b.log, channel, env)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event subscription: %w", err)
	}
	return nil
}
