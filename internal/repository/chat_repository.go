package repository

import (
	"context"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/message"
	"groupchat/internal/domain/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// chatMember maps the chat_members join table created for Chat.Members.
type chatMember struct {
	ChatID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (chatMember) TableName() string {
	return "chat_members"
}

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &PostgresChatRepository{db: db}
}

// Create inserts the chat and its member links. Member users must already exist.
func (r *PostgresChatRepository) Create(ctx context.Context, c *chat.Chat) error {
	return translateError(r.db.WithContext(ctx).Omit("Members.*").Create(c).Error)
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("username ASC")
		}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return chat.Chat{}, translateError(err)
	}
	return c, nil
}

func (r *PostgresChatRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	chats := []chat.Chat{}
	memberOf := r.db.Model(&chatMember{}).Select("chat_id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("username ASC")
		}).
		Where("creator_id = ? OR id IN (?)", userID, memberOf).
		Order("created_at ASC").
		Find(&chats).Error
	if err != nil {
		return nil, translateError(err)
	}
	return chats, nil
}

// AddMember is idempotent: adding an existing member is a no-op.
func (r *PostgresChatRepository) AddMember(ctx context.Context, chatID, userID uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&chatMember{ChatID: chatID, UserID: userID}).Error)
}

func (r *PostgresChatRepository) RemoveMember(ctx context.Context, chatID, userID uuid.UUID) error {
	return affected(r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&chatMember{}))
}

func (r *PostgresChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteChat(tx, id)
	})
}

// deleteChat cascades to messages and everything hanging off them.
func deleteChat(tx *gorm.DB, id uuid.UUID) error {
	msgs := func() *gorm.DB {
		return tx.Model(&message.Message{}).Select("id").Where("chat_id = ?", id)
	}
	if err := tx.Where("message_id IN (?)", msgs()).Delete(&notification.Notification{}).Error; err != nil {
		return translateError(err)
	}
	if err := tx.Where("message_id IN (?)", msgs()).Delete(&message.Attachment{}).Error; err != nil {
		return translateError(err)
	}
	if err := tx.Where("chat_id = ?", id).Delete(&message.Message{}).Error; err != nil {
		return translateError(err)
	}
	if err := tx.Where("chat_id = ?", id).Delete(&chatMember{}).Error; err != nil {
		return translateError(err)
	}
	return affected(tx.Delete(&chat.Chat{}, "id = ?", id))
}
