package services

import (
	"context"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/friend"
	"groupchat/internal/domain/message"
	"groupchat/internal/events"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher announces committed changes on the event bus. Publishing
// happens after the write succeeded, so a failure is logged and never undoes it.
type EventPublisher struct {
	bus events.Bus
	log *logger.Logger
}

func NewEventPublisher(bus events.Bus, log *logger.Logger) *EventPublisher {
	return &EventPublisher{bus: bus, log: log}
}

func (p *EventPublisher) MessageCreated(ctx context.Context, m message.Message) {
	p.publishMessage(ctx, events.EventTypeMessageCreated, m.ID, m.ChatID, m.SenderID, m.SenderID)
}

func (p *EventPublisher) MessageUpdated(ctx context.Context, m message.Message, actorID uuid.UUID) {
	p.publishMessage(ctx, events.EventTypeMessageUpdated, m.ID, m.ChatID, m.SenderID, actorID)
}

func (p *EventPublisher) MessageDeleted(ctx context.Context, m message.Message, actorID uuid.UUID) {
	p.publishMessage(ctx, events.EventTypeMessageDeleted, m.ID, m.ChatID, m.SenderID, actorID)
}

func (p *EventPublisher) AttachmentAdded(ctx context.Context, chatID uuid.UUID, a message.Attachment) {
	p.publish(ctx, events.ChatChannel(chatID), events.EventTypeAttachmentAdded, events.AggregateTypeMessage, a.MessageID, events.AttachmentPayload{
		AttachmentID: a.ID,
		MessageID:    a.MessageID,
		ChatID:       chatID,
		FileName:     a.FileName,
	})
}

func (p *EventPublisher) ChatCreated(ctx context.Context, c chat.Chat) {
	for _, id := range c.AudienceIDs() {
		p.publish(ctx, events.UserChannel(id), events.EventTypeChatCreated, events.AggregateTypeChat, c.ID, events.ChatMemberPayload{
			ChatID:  c.ID,
			UserID:  id,
			ActorID: c.CreatorID,
		})
	}
}

func (p *EventPublisher) MemberAdded(ctx context.Context, chatID, userID, actorID uuid.UUID) {
	p.publishMember(ctx, events.EventTypeChatMemberAdded, chatID, userID, actorID)
}

func (p *EventPublisher) MemberRemoved(ctx context.Context, chatID, userID, actorID uuid.UUID) {
	p.publishMember(ctx, events.EventTypeChatMemberRemoved, chatID, userID, actorID)
}

func (p *EventPublisher) FriendRequestSent(ctx context.Context, r friend.Request) {
	p.publishFriend(ctx, events.EventTypeFriendRequestSent, r, r.ToUserID)
}

func (p *EventPublisher) FriendRequestAccepted(ctx context.Context, r friend.Request) {
	p.publishFriend(ctx, events.EventTypeFriendRequestAccepted, r, r.FromUserID)
}

func (p *EventPublisher) publishMessage(ctx context.Context, eventType string, messageID, chatID, senderID, actorID uuid.UUID) {
	p.publish(ctx, events.ChatChannel(chatID), eventType, events.AggregateTypeMessage, messageID, events.MessagePayload{
		MessageID: messageID,
		ChatID:    chatID,
		SenderID:  senderID,
		ActorID:   actorID,
	})
}

func (p *EventPublisher) publishMember(ctx context.Context, eventType string, chatID, userID, actorID uuid.UUID) {
	payload := events.ChatMemberPayload{ChatID: chatID, UserID: userID, ActorID: actorID}
	p.publish(ctx, events.ChatChannel(chatID), eventType, events.AggregateTypeChat, chatID, payload)
	p.publish(ctx, events.UserChannel(userID), eventType, events.AggregateTypeChat, chatID, payload)
}

func (p *EventPublisher) publishFriend(ctx context.Context, eventType string, r friend.Request, recipient uuid.UUID) {
	p.publish(ctx, events.UserChannel(recipient), eventType, events.AggregateTypeFriendRequest, r.ID, events.FriendRequestPayload{
		RequestID:  r.ID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
	})
}

func (p *EventPublisher) publish(ctx context.Context, channel, eventType, aggregateType string, aggregateID uuid.UUID, payload any) {
	if p == nil || p.bus == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, aggregateType, aggregateID, now(), payload)
	if err == nil {
		err = p.bus.Publish(ctx, channel, env)
	}
	if err != nil {
		p.log.Error(ctx, "failed to publish event",
			zap.String("channel", channel),
			zap.String("event_type", eventType),
			zap.String("aggregate_id", aggregateID.String()),
			zap.Error(err),
		)
	}
}
