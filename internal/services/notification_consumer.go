package services

import (
	"context"

	"groupchat/internal/events"
	"groupchat/pkg/logger"

	"go.uber.org/zap"
)

// NotificationConsumer turns message.created events into notifications.
type NotificationConsumer struct {
	notifications *NotificationService
	log           *logger.Logger
}

func NewNotificationConsumer(notifications *NotificationService, log *logger.Logger) *NotificationConsumer {
	return &NotificationConsumer{notifications: notifications, log: log}
}

func (c *NotificationConsumer) Register(bus events.Bus) {
	bus.Subscribe(events.EventTypeMessageCreated, c.Handle)
}

func (c *NotificationConsumer) Handle(ctx context.Context, env events.Envelope) error {
	if env.EventType != events.EventTypeMessageCreated {
		return nil
	}
	var payload events.MessagePayload
	if err := env.Decode(&payload); err != nil {
		c.log.Warn(ctx, "dropping undecodable message event", zap.String("aggregate_id", env.AggregateID), zap.Error(err))
		return nil
	}
	_, err := c.notifications.NotifyMessage(ctx, payload.MessageID)
	return err
}
