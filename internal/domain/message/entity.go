package message

import (
	"time"

	"github.com/google/uuid"

	"groupchat/internal/domain"
)

// Message represents the messages table. Content is the only mutable field.
type Message struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ChatID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_messages_chat_created,priority:1"`
	SenderID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Content   string     `gorm:"type:text;not null" validate:"required,max=4000"`
	CreatedAt time.Time  `gorm:"not null;index:idx_messages_chat_created,priority:2"`
	EditedAt  *time.Time
}

// Attachment represents a file uploaded alongside a message.
type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	MessageID   uuid.UUID `gorm:"type:uuid;not null;index"`
	AddedByID   uuid.UUID `gorm:"type:uuid;not null"`
	ObjectKey   string    `gorm:"type:varchar(512);not null" validate:"required,max=512"`
	FileName    string    `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	ContentType string    `gorm:"type:varchar(127)" validate:"omitempty,max=127"`
	SizeBytes   int64     `gorm:"not null" validate:"gt=0"`
	UploadedAt  time.Time `gorm:"not null"`
}

func (Message) TableName() string {
	return "messages"
}

func (Attachment) TableName() string {
	return "attachments"
}

func (m Message) Validate() error {
	return domain.Validate("message", m)
}

func (a Attachment) Validate() error {
	return domain.Validate("attachment", a)
}

// SentBy reports whether userID authored the message.
func (m Message) SentBy(userID uuid.UUID) bool {
	return m.SenderID == userID
}
