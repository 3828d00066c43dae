package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/friend"
	"groupchat/internal/domain/message"
	"groupchat/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const seedChatName = "General"

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	AdminUsername string
	TestUserCount int
}

func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		AdminUsername: "admin",
		TestUserCount: 3,
	}
}

type SeedResult struct {
	Admin    user.User
	Users    []user.User
	Chat     chat.Chat
	Messages []message.Message
}

// Seed inserts a staff user, TestUserCount regular users who are all friends
// with each other, and one chat created by the first of them with a short
// conversation. Users are matched by username, so reruns reuse them.
func Seed(ctx context.Context, db *gorm.DB, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	if cfg.TestUserCount < 2 {
		return nil, fmt.Errorf("need at least 2 test users, got %d", cfg.TestUserCount)
	}

	res := &SeedResult{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if res.Admin, err = seedUser(tx, cfg.AdminUsername, true); err != nil {
			return err
		}
		for i := 1; i <= cfg.TestUserCount; i++ {
			u, err := seedUser(tx, fmt.Sprintf("user%d", i), false)
			if err != nil {
				return err
			}
			res.Users = append(res.Users, u)
		}
		if err := seedFriendships(tx, res.Users); err != nil {
			return err
		}
		res.Chat, res.Messages, err = seedChat(tx, res.Users)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func seedUser(tx *gorm.DB, username string, staff bool) (user.User, error) {
	var u user.User
	err := tx.Where(user.User{Username: username}).
		Attrs(user.User{
			ID:        uuid.New(),
			IsStaff:   staff,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}).
		FirstOrCreate(&u).Error
	if err != nil {
		return user.User{}, fmt.Errorf("seed user %s: %w", username, err)
	}
	return u, nil
}

// seedFriendships sends requests in both directions for every pair, which
// makes them friends in mutual mode, and marks them accepted for accepted mode.
func seedFriendships(tx *gorm.DB, users []user.User) error {
	now := time.Now().UTC()
	var reqs []friend.Request
	for _, a := range users {
		for _, b := range users {
			if a.ID == b.ID {
				continue
			}
			reqs = append(reqs, friend.Request{
				ID:         uuid.New(),
				FromUserID: a.ID,
				ToUserID:   b.ID,
				Accepted:   true,
				AcceptedAt: &now,
				CreatedAt:  now,
			})
		}
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&reqs).Error; err != nil {
		return fmt.Errorf("seed friend requests: %w", err)
	}
	return nil
}

// seedChat returns the General chat of users[0], creating it with a short
// conversation on the first run.
func seedChat(tx *gorm.DB, users []user.User) (chat.Chat, []message.Message, error) {
	var existing chat.Chat
	err := tx.Preload("Members").
		Where("name = ? AND creator_id = ?", seedChatName, users[0].ID).
		First(&existing).Error
	switch {
	case err == nil:
		var msgs []message.Message
		if err := tx.Where("chat_id = ?", existing.ID).Order("created_at ASC, id ASC").Find(&msgs).Error; err != nil {
			return chat.Chat{}, nil, fmt.Errorf("load seed messages: %w", err)
		}
		return existing, msgs, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return chat.Chat{}, nil, fmt.Errorf("load seed chat: %w", err)
	}

	now := time.Now().UTC()
	c := chat.Chat{
		ID:        uuid.New(),
		Name:      seedChatName,
		CreatorID: users[0].ID,
		Members:   users,
		CreatedAt: now,
	}
	if err := tx.Omit("Members.*").Create(&c).Error; err != nil {
		return chat.Chat{}, nil, fmt.Errorf("seed chat: %w", err)
	}

	lines := []string{"Welcome to the general chat!", "Hi everyone", "Glad to be here"}
	msgs := make([]message.Message, 0, len(lines))
	for i, content := range lines {
		id, err := uuid.NewV7()
		if err != nil {
			return chat.Chat{}, nil, err
		}
		msgs = append(msgs, message.Message{
			ID:        id,
			ChatID:    c.ID,
			SenderID:  users[i%len(users)].ID,
			Content:   content,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
	}
	if err := tx.Create(&msgs).Error; err != nil {
		return chat.Chat{}, nil, fmt.Errorf("seed messages: %w", err)
	}
	return c, msgs, nil
}
