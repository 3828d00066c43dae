package services

import (
	"context"
	"fmt"
	"strings"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/user"
	"groupchat/internal/proxy"
	"groupchat/internal/repository"
	groupchat_errors "groupchat/pkg/errors"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type ChatService struct {
	store  repository.Store
	access *proxy.AccessControl
	log    *logger.Logger
}

func NewChatService(store repository.Store, access *proxy.AccessControl, log *logger.Logger) *ChatService {
	return &ChatService{store: store, access: access, log: log}
}

// Create stores a chat owned by creator. The creator is also put in the member set.
func (s *ChatService) Create(ctx context.Context, creator user.User, name string, memberIDs []uuid.UUID) (chat.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return chat.Chat{}, groupchat_errors.InvalidInput("chat name is empty")
	}
	ids := lo.Uniq(append([]uuid.UUID{creator.ID}, memberIDs...))

	var created chat.Chat
	err := atomic(ctx, s.store, s.log, "create chat", func(tx repository.Store) error {
		members, err := tx.Users().GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(members) != len(ids) {
			found := lo.Map(members, func(u user.User, _ int) uuid.UUID { return u.ID })
			missing, _ := lo.Difference(ids, found)
			return fmt.Errorf("%w: unknown users %v", groupchat_errors.ErrNotFound, missing)
		}
		c := chat.Chat{
			ID:        uuid.New(),
			Name:      name,
			CreatorID: creator.ID,
			Members:   members,
			CreatedAt: now(),
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := tx.Chats().Create(ctx, &c); err != nil {
			return err
		}
		created, err = tx.Chats().GetByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return chat.Chat{}, err
	}
	s.log.Info(ctx, "chat created", zap.String("chat_id", created.ID.String()), zap.Int("members", len(created.Members)))
	return created, nil
}

func (s *ChatService) Get(ctx context.Context, chatID uuid.UUID, viewer user.User) (chat.Chat, error) {
	c, err := s.store.Chats().GetByID(ctx, chatID)
	if err != nil {
		return chat.Chat{}, storeError(ctx, s.log, "get chat", err)
	}
	if err := s.access.CanViewChat(ctx, viewer, c); err != nil {
		return chat.Chat{}, err
	}
	return c, nil
}

func (s *ChatService) ListForUser(ctx context.Context, u user.User) ([]chat.Chat, error) {
	chats, err := s.store.Chats().ListForUser(ctx, u.ID)
	if err != nil {
		return nil, storeError(ctx, s.log, "list chats", err)
	}
	return chats, nil
}

// AddMember adds userID to the chat. Adding an existing member is a no-op.
func (s *ChatService) AddMember(ctx context.Context, chatID uuid.UUID, actor user.User, userID uuid.UUID) (chat.Chat, error) {
	var updated chat.Chat
	err := atomic(ctx, s.store, s.log, "add chat member", func(tx repository.Store) error {
		c, err := tx.Chats().GetByID(ctx, chatID)
		if err != nil {
			return err
		}
		if err := s.access.CanManageChat(ctx, actor, c); err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		if err := tx.Chats().AddMember(ctx, c.ID, userID); err != nil {
			return err
		}
		updated, err = tx.Chats().GetByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return chat.Chat{}, err
	}
	return updated, nil
}

// RemoveMember drops userID from the member set. The creator cannot be removed
// because it stays authorized regardless of the set.
func (s *ChatService) RemoveMember(ctx context.Context, chatID uuid.UUID, actor user.User, userID uuid.UUID) (chat.Chat, error) {
	var updated chat.Chat
	err := atomic(ctx, s.store, s.log, "remove chat member", func(tx repository.Store) error {
		c, err := tx.Chats().GetByID(ctx, chatID)
		if err != nil {
			return err
		}
		if err := s.access.CanManageChat(ctx, actor, c); err != nil {
			return err
		}
		if userID == c.CreatorID {
			return groupchat_errors.InvalidInput("the chat creator cannot be removed")
		}
		if err := tx.Chats().RemoveMember(ctx, c.ID, userID); err != nil {
			return err
		}
		updated, err = tx.Chats().GetByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return chat.Chat{}, err
	}
	return updated, nil
}
