package repository

import (
	"fmt"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/friend"
	"groupchat/internal/domain/message"
	"groupchat/internal/domain/notification"
	"groupchat/internal/domain/user"

	"gorm.io/gorm"
)

// InitSchema migrates every table, including the unique indexes that arbitrate
// races: friend request pairs, notification (user, message) and profile owners.
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&user.Profile{},
		&chat.Chat{},
		&message.Message{},
		&message.Attachment{},
		&friend.Request{},
		&notification.Notification{},
	); err != nil {
		return fmt.Errorf("failed to apply gorm migrations: %w", err)
	}
	return nil
}
