package events

import (
	"github.com/google/uuid"
)

// Event types follow the domain.action format.
const (
	EventTypeMessageCreated = "message.created"
	EventTypeMessageUpdated = "message.updated"
	EventTypeMessageDeleted = "message.deleted"

	EventTypeAttachmentAdded = "attachment.added"

	EventTypeChatCreated       = "chat.created"
	EventTypeChatMemberAdded   = "chat.member_added"
	EventTypeChatMemberRemoved = "chat.member_removed"

	EventTypeFriendRequestSent     = "friend.request_sent"
	EventTypeFriendRequestAccepted = "friend.request_accepted"
)

const (
	AggregateTypeMessage       = "message"
	AggregateTypeChat          = "chat"
	AggregateTypeFriendRequest = "friend_request"
)

const (
	ChannelPrefixChat = "channel:chat:"
	ChannelPrefixUser = "channel:user:"
	// ChannelPattern matches every channel the service publishes to.
	ChannelPattern = "channel:*"
)

func ChatChannel(chatID uuid.UUID) string {
	return ChannelPrefixChat + chatID.String()
}

func UserChannel(userID uuid.UUID) string {
	return ChannelPrefixUser + userID.String()
}

type MessagePayload struct {
	MessageID uuid.UUID `json:"message_id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	ActorID   uuid.UUID `json:"actor_id"`
}

type AttachmentPayload struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	MessageID    uuid.UUID `json:"message_id"`
	ChatID       uuid.UUID `json:"chat_id"`
	FileName     string    `json:"file_name"`
}

type ChatMemberPayload struct {
	ChatID  uuid.UUID `json:"chat_id"`
	UserID  uuid.UUID `json:"user_id"`
	ActorID uuid.UUID `json:"actor_id"`
}

type FriendRequestPayload struct {
	RequestID  uuid.UUID `json:"request_id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
}
