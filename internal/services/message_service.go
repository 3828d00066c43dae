package services

import (
	"context"
	"errors"
	"strings"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/message"
	"groupchat/internal/domain/user"
	"groupchat/internal/proxy"
	"groupchat/internal/repository"
	groupchat_errors "groupchat/pkg/errors"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultListLimit = 50

// DeleteDeniedMode decides what Delete reports when the actor may not delete.
type DeleteDeniedMode string

const (
	DeleteDeniedRaise  DeleteDeniedMode = "raise"
	DeleteDeniedSilent DeleteDeniedMode = "silent"
)

func ParseDeleteDeniedMode(s string) (DeleteDeniedMode, bool) {
	switch DeleteDeniedMode(s) {
	case DeleteDeniedRaise:
		return DeleteDeniedRaise, true
	case DeleteDeniedSilent:
		return DeleteDeniedSilent, true
	}
	return "", false
}

type ListOptions struct {
	Limit       int
	Offset      int
	NewestFirst bool
	// Viewer, when set, must be a member of the chat.
	Viewer *user.User
}

type MessageService struct {
	store      repository.Store
	access     *proxy.AccessControl
	log        *logger.Logger
	deniedMode DeleteDeniedMode
}

func NewMessageService(store repository.Store, access *proxy.AccessControl, log *logger.Logger, deniedMode DeleteDeniedMode) *MessageService {
	if deniedMode == "" {
		deniedMode = DeleteDeniedRaise
	}
	return &MessageService{
		store:      store,
		access:     access,
		log:        log,
		deniedMode: deniedMode,
	}
}

func (s *MessageService) Send(ctx context.Context, sender user.User, content string, chatID uuid.UUID) (message.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		s.log.Debug(ctx, "rejecting empty message", zap.String("actor_id", sender.ID.String()))
		return message.Message{}, groupchat_errors.InvalidInput("message content is empty")
	}

	var created message.Message
	err := atomic(ctx, s.store, s.log, "send message", func(tx repository.Store) error {
		c, err := tx.Chats().GetByID(ctx, chatID)
		if err != nil {
			return err
		}
		if err := s.access.CanSendMessage(ctx, sender, c); err != nil {
			return err
		}
		// v7 ids sort by creation, which keeps same-timestamp ties in send order.
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m := message.Message{
			ID:        id,
			ChatID:    c.ID,
			SenderID:  sender.ID,
			Content:   content,
			CreatedAt: now(),
		}
		if err := m.Validate(); err != nil {
			return err
		}
		if err := tx.Messages().Create(ctx, &m); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return message.Message{}, err
	}

	s.log.Info(ctx, "message sent",
		zap.String("message_id", created.ID.String()),
		zap.String("chat_id", created.ChatID.String()),
	)
	return created, nil
}

func (s *MessageService) List(ctx context.Context, chatID uuid.UUID, opts ListOptions) ([]message.Message, error) {
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, groupchat_errors.InvalidInput("limit and offset must not be negative")
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultListLimit
	}

	c, err := s.store.Chats().GetByID(ctx, chatID)
	if err != nil {
		return nil, storeError(ctx, s.log, "list messages", err)
	}
	if opts.Viewer != nil {
		if err := s.access.CanViewChat(ctx, *opts.Viewer, c); err != nil {
			return nil, err
		}
	}

	messages, err := s.store.Messages().ListByChat(ctx, c.ID, opts.Limit, opts.Offset, opts.NewestFirst)
	if err != nil {
		return nil, storeError(ctx, s.log, "list messages", err)
	}
	return messages, nil
}

// Find loads a message without any authorization. It serves internal callers
// such as event addressing and must not be used to answer a user.
func (s *MessageService) Find(ctx context.Context, ref message.Ref) (message.Message, error) {
	m, err := s.resolve(ctx, s.store, ref)
	if err != nil {
		return message.Message{}, storeError(ctx, s.log, "find message", err)
	}
	return m, nil
}

// Get returns a message to a member of its chat.
func (s *MessageService) Get(ctx context.Context, ref message.Ref, viewer user.User) (message.Message, error) {
	m, c, err := s.resolveWithChat(ctx, s.store, ref)
	if err != nil {
		return message.Message{}, storeError(ctx, s.log, "get message", err)
	}
	if err := s.access.CanViewChat(ctx, viewer, c); err != nil {
		return message.Message{}, err
	}
	return m, nil
}

func (s *MessageService) Edit(ctx context.Context, ref message.Ref, actor user.User, newContent string) (message.Message, error) {
	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		s.log.Debug(ctx, "rejecting empty edit",
			zap.String("actor_id", actor.ID.String()),
			zap.String("message_id", ref.ID().String()),
		)
		return message.Message{}, groupchat_errors.InvalidInput("message content is empty")
	}

	var updated message.Message
	err := atomic(ctx, s.store, s.log, "edit message", func(tx repository.Store) error {
		m, err := s.resolve(ctx, tx, ref)
		if err != nil {
			return err
		}
		if err := s.access.CanModifyMessage(ctx, "message.edit", actor, m); err != nil {
			return err
		}
		editedAt := now()
		m.Content = newContent
		m.EditedAt = &editedAt
		if err := m.Validate(); err != nil {
			return err
		}
		if err := tx.Messages().UpdateContent(ctx, m.ID, m.Content, editedAt); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return message.Message{}, err
	}
	return updated, nil
}

// Delete removes the message if actor is its sender or staff. A missing
// message reports false without an error. A denied actor gets ErrForbidden,
// or false when the service runs in DeleteDeniedSilent mode.
func (s *MessageService) Delete(ctx context.Context, ref message.Ref, actor user.User) (bool, error) {
	return s.delete(ctx, ref, &actor)
}

// DeleteAsSystem removes the message without an actor. It is meant for trusted
// callers such as moderation jobs and is never reachable from a user request.
func (s *MessageService) DeleteAsSystem(ctx context.Context, ref message.Ref) (bool, error) {
	return s.delete(ctx, ref, nil)
}

func (s *MessageService) delete(ctx context.Context, ref message.Ref, actor *user.User) (bool, error) {
	deleted := false
	err := atomic(ctx, s.store, s.log, "delete message", func(tx repository.Store) error {
		m, err := s.resolve(ctx, tx, ref)
		if errors.Is(err, groupchat_errors.ErrNotFound) {
			s.log.Debug(ctx, "message to delete not found", zap.String("message_id", ref.ID().String()))
			return nil
		}
		if err != nil {
			return err
		}
		if actor != nil {
			if err := s.access.CanModifyMessage(ctx, "message.delete", *actor, m); err != nil {
				if s.deniedMode == DeleteDeniedSilent {
					return nil
				}
				return err
			}
		}
		err = tx.Messages().Delete(ctx, m.ID)
		if errors.Is(err, groupchat_errors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		fields := []zap.Field{zap.String("message_id", ref.ID().String())}
		if actor == nil {
			fields = append(fields, zap.Bool("system", true))
		} else {
			fields = append(fields, zap.String("actor_id", actor.ID.String()))
		}
		s.log.Info(ctx, "message deleted", fields...)
	}
	return deleted, nil
}

// MarkAsRead resolves the message and checks that reader belongs to its chat.
// Read state lives on notifications, so nothing is written here. The boolean
// is false when the message does not exist.
func (s *MessageService) MarkAsRead(ctx context.Context, ref message.Ref, reader user.User) (message.Message, bool, error) {
	m, c, err := s.resolveWithChat(ctx, s.store, ref)
	if errors.Is(err, groupchat_errors.ErrNotFound) {
		s.log.Debug(ctx, "message to mark read not found", zap.String("message_id", ref.ID().String()))
		return message.Message{}, false, nil
	}
	if err != nil {
		return message.Message{}, false, storeError(ctx, s.log, "mark message read", err)
	}
	if err := s.access.CanViewChat(ctx, reader, c); err != nil {
		return message.Message{}, false, err
	}
	return m, true, nil
}

// resolve loads the current row for ref through store.
func (s *MessageService) resolve(ctx context.Context, store repository.Store, ref message.Ref) (message.Message, error) {
	if ref.ID() == uuid.Nil {
		return message.Message{}, groupchat_errors.ErrNotFound
	}
	return store.Messages().GetByID(ctx, ref.ID())
}

func (s *MessageService) resolveWithChat(ctx context.Context, store repository.Store, ref message.Ref) (message.Message, chat.Chat, error) {
	m, err := s.resolve(ctx, store, ref)
	if err != nil {
		return message.Message{}, chat.Chat{}, err
	}
	c, err := store.Chats().GetByID(ctx, m.ChatID)
	if err != nil {
		return message.Message{}, chat.Chat{}, err
	}
	return m, c, nil
}
