package repository

import (
	"context"
	"time"

	"groupchat/internal/domain/message"
	"groupchat/internal/domain/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	return translateError(r.db.WithContext(ctx).Create(m).Error)
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return message.Message{}, translateError(err)
	}
	return m, nil
}

func (r *PostgresMessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID, limit, offset int, newestFirst bool) ([]message.Message, error) {
	messages := []message.Message{}
	order := "created_at ASC, id ASC"
	if newestFirst {
		order = "created_at DESC, id DESC"
	}
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, translateError(err)
	}
	return messages, nil
}

func (r *PostgresMessageRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	return affected(r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":   content,
			"edited_at": editedAt,
		}))
}

// Delete removes the message and its dependent notifications and attachments.
func (r *PostgresMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&notification.Notification{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("message_id = ?", id).Delete(&message.Attachment{}).Error; err != nil {
			return translateError(err)
		}
		return affected(tx.Delete(&message.Message{}, "id = ?", id))
	})
}

type PostgresAttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &PostgresAttachmentRepository{db: db}
}

func (r *PostgresAttachmentRepository) Create(ctx context.Context, a *message.Attachment) error {
	return translateError(r.db.WithContext(ctx).Create(a).Error)
}

func (r *PostgresAttachmentRepository) ListByMessage(ctx context.Context, messageID uuid.UUID) ([]message.Attachment, error) {
	attachments := []message.Attachment{}
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("uploaded_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, translateError(err)
	}
	return attachments, nil
}
