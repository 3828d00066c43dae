package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/friend"
	"groupchat/internal/domain/message"
	"groupchat/internal/domain/notification"
	"groupchat/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChatRepository interface {
	Create(ctx context.Context, c *chat.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
	AddMember(ctx context.Context, chatID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, chatID, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	ListByChat(ctx context.Context, chatID uuid.UUID, limit, offset int, newestFirst bool) ([]message.Message, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *message.Attachment) error
	ListByMessage(ctx context.Context, messageID uuid.UUID) ([]message.Attachment, error)
}

type FriendRequestRepository interface {
	Create(ctx context.Context, r *friend.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (friend.Request, error)
	GetByPair(ctx context.Context, fromUserID, toUserID uuid.UUID) (friend.Request, error)
	MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error
	ListPendingTo(ctx context.Context, userID uuid.UUID) ([]friend.Request, error)
	ListPendingFrom(ctx context.Context, userID uuid.UUID) ([]friend.Request, error)
	MutualFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	AcceptedFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type NotificationRepository interface {
	// CreateIfAbsent inserts n unless a row for the same (user, message) exists.
	CreateIfAbsent(ctx context.Context, n *notification.Notification) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (notification.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, p *user.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (user.Profile, error)
	UpdateFields(ctx context.Context, p user.Profile, fields []string) error
}

// Store is the single shared mutable resource. RunAtomic hands fn a store bound
// to one transaction; any error returned by fn (or a panic) rolls it back.
type Store interface {
	Users() UserRepository
	Chats() ChatRepository
	Messages() MessageRepository
	Attachments() AttachmentRepository
	FriendRequests() FriendRequestRepository
	Notifications() NotificationRepository
	Profiles() ProfileRepository
	RunAtomic(ctx context.Context, fn func(Store) error) error
}
