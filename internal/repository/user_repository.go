package repository

import (
	"context"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/friend"
	"groupchat/internal/domain/message"
	"groupchat/internal/domain/notification"
	"groupchat/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	return translateError(r.db.WithContext(ctx).Create(u).Error)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return user.User{}, translateError(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	users := []user.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return user.User{}, translateError(err)
	}
	return u, nil
}

// Delete removes the user together with everything it owns.
func (r *PostgresUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sent := func() *gorm.DB {
			return tx.Model(&message.Message{}).Select("id").Where("sender_id = ?", id)
		}
		if err := tx.Where("message_id IN (?)", sent()).Delete(&notification.Notification{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("message_id IN (?)", sent()).Delete(&message.Attachment{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("sender_id = ?", id).Delete(&message.Message{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&notification.Notification{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("from_user_id = ? OR to_user_id = ?", id, id).Delete(&friend.Request{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&chatMember{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&user.Profile{}).Error; err != nil {
			return translateError(err)
		}
		var chatIDs []uuid.UUID
		if err := tx.Model(&chat.Chat{}).Where("creator_id = ?", id).Pluck("id", &chatIDs).Error; err != nil {
			return translateError(err)
		}
		for _, chatID := range chatIDs {
			if err := deleteChat(tx, chatID); err != nil {
				return err
			}
		}
		return affected(tx.Delete(&user.User{}, "id = ?", id))
	})
}
