package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification represents the notifications table. At most one row exists
// per (user, message).
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_notifications_user_message,priority:1;index:idx_notifications_user_created,priority:1"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_notifications_user_message,priority:2;index"`
	IsRead    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_notifications_user_created,priority:2"`
}

func (Notification) TableName() string {
	return "notifications"
}
