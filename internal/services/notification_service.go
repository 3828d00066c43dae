package services

import (
	"context"
	"errors"

	"groupchat/internal/domain/notification"
	"groupchat/internal/repository"
	groupchat_errors "groupchat/pkg/errors"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type NotificationService struct {
	store repository.Store
	log   *logger.Logger
}

func NewNotificationService(store repository.Store, log *logger.Logger) *NotificationService {
	return &NotificationService{store: store, log: log}
}

// List returns the notifications of userID, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error) {
	items, err := s.store.Notifications().ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(ctx, s.log, "list notifications", err)
	}
	return items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.store.Notifications().CountUnread(ctx, userID)
	if err != nil {
		return 0, storeError(ctx, s.log, "count unread notifications", err)
	}
	return count, nil
}

// MarkRead sets is_read. Marking a read notification again changes nothing.
// The boolean is false when the notification does not exist.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) (notification.Notification, bool, error) {
	return s.markRead(ctx, id, nil)
}

// MarkReadFor is MarkRead restricted to the notification's recipient.
func (s *NotificationService) MarkReadFor(ctx context.Context, userID, id uuid.UUID) (notification.Notification, bool, error) {
	return s.markRead(ctx, id, &userID)
}

func (s *NotificationService) markRead(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (notification.Notification, bool, error) {
	var n notification.Notification
	found := false
	err := atomic(ctx, s.store, s.log, "mark notification read", func(tx repository.Store) error {
		var err error
		n, err = s.load(ctx, tx, id, owner)
		if errors.Is(err, groupchat_errors.ErrNotFound) {
			s.log.Debug(ctx, "notification to mark read not found", zap.String("notification_id", id.String()))
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		if n.IsRead {
			return nil
		}
		if err := tx.Notifications().MarkRead(ctx, n.ID); err != nil {
			return err
		}
		n.IsRead = true
		return nil
	})
	if err != nil || !found {
		return notification.Notification{}, false, err
	}
	return n, true, nil
}

// Delete reports whether a notification was removed.
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.delete(ctx, id, nil)
}

// DeleteFor is Delete restricted to the notification's recipient.
func (s *NotificationService) DeleteFor(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	return s.delete(ctx, id, &userID)
}

func (s *NotificationService) delete(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (bool, error) {
	deleted := false
	err := atomic(ctx, s.store, s.log, "delete notification", func(tx repository.Store) error {
		n, err := s.load(ctx, tx, id, owner)
		if errors.Is(err, groupchat_errors.ErrNotFound) {
			s.log.Debug(ctx, "notification to delete not found", zap.String("notification_id", id.String()))
			return nil
		}
		if err != nil {
			return err
		}
		err = tx.Notifications().Delete(ctx, n.ID)
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
	return deleted, nil
}

func (s *NotificationService) load(ctx context.Context, tx repository.Store, id uuid.UUID, owner *uuid.UUID) (notification.Notification, error) {
	n, err := tx.Notifications().GetByID(ctx, id)
	if err != nil {
		return notification.Notification{}, err
	}
	if owner != nil && n.UserID != *owner {
		s.log.Warn(ctx, "permission denied",
			zap.String("action", "notification.access"),
			zap.String("actor_id", owner.String()),
			zap.String("notification_id", id.String()),
		)
		return notification.Notification{}, groupchat_errors.ErrForbidden
	}
	return n, nil
}

// NotifyMessage creates one unread notification for every member of the
// message's chat except its sender and returns how many were new. Running it
// again for the same message creates nothing. A message deleted in the
// meantime is skipped.
func (s *NotificationService) NotifyMessage(ctx context.Context, messageID uuid.UUID) (int, error) {
	created := 0
	err := atomic(ctx, s.store, s.log, "notify message", func(tx repository.Store) error {
		m, err := tx.Messages().GetByID(ctx, messageID)
		if errors.Is(err, groupchat_errors.ErrNotFound) {
			s.log.Debug(ctx, "message to notify about not found", zap.String("message_id", messageID.String()))
			return nil
		}
		if err != nil {
			return err
		}
		c, err := tx.Chats().GetByID(ctx, m.ChatID)
		if err != nil {
			return err
		}
		at := now()
		for _, recipient := range lo.Without(c.AudienceIDs(), m.SenderID) {
			ok, err := tx.Notifications().CreateIfAbsent(ctx, &notification.Notification{
				ID:        uuid.New(),
				UserID:    recipient,
				MessageID: m.ID,
				CreatedAt: at,
			})
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		s.log.Debug(ctx, "notifications created", zap.String("message_id", messageID.String()), zap.Int("count", created))
	}
	return created, nil
}
