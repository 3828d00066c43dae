package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *GormStore) Chats() ChatRepository {
	return NewChatRepository(s.db)
}

func (s *GormStore) Messages() MessageRepository {
	return NewMessageRepository(s.db)
}

func (s *GormStore) Attachments() AttachmentRepository {
	return NewAttachmentRepository(s.db)
}

func (s *GormStore) FriendRequests() FriendRequestRepository {
	return NewFriendRequestRepository(s.db)
}

func (s *GormStore) Notifications() NotificationRepository {
	return NewNotificationRepository(s.db)
}

func (s *GormStore) Profiles() ProfileRepository {
	return NewProfileRepository(s.db)
}

// RunAtomic executes fn inside a transaction. When the store is already bound
// to a transaction the inner call becomes a savepoint.
func (s *GormStore) RunAtomic(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return errors.New("database not initialized")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
