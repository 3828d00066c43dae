package proxy

import (
	"context"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/message"
	"groupchat/internal/domain/user"
	groupchat_errors "groupchat/pkg/errors"
	"groupchat/pkg/logger"

	"go.uber.org/zap"
)

// AccessControl is the membership authority. It never touches the store; callers
// load the chat (with members) inside their own transaction.
type AccessControl struct {
	log *logger.Logger
}

func NewAccessControl(log *logger.Logger) *AccessControl {
	return &AccessControl{log: log}
}

// IsMember is true iff u is in the chat's member set or created the chat.
func (a *AccessControl) IsMember(c chat.Chat, u user.User) bool {
	return c.IsMember(u.ID)
}

func (a *AccessControl) CanSendMessage(ctx context.Context, u user.User, c chat.Chat) error {
	return a.ensureMember(ctx, "message.send", u, c)
}

func (a *AccessControl) CanViewChat(ctx context.Context, u user.User, c chat.Chat) error {
	return a.ensureMember(ctx, "chat.view", u, c)
}

// CanModifyMessage allows staff and the original sender.
func (a *AccessControl) CanModifyMessage(ctx context.Context, action string, u user.User, m message.Message) error {
	if u.IsStaff || m.SentBy(u.ID) {
		return nil
	}
	a.log.Warn(ctx, "permission denied",
		zap.String("action", action),
		zap.String("actor_id", u.ID.String()),
		zap.String("message_id", m.ID.String()),
	)
	return groupchat_errors.ErrForbidden
}

// CanManageChat allows the creator and staff to change the member set.
func (a *AccessControl) CanManageChat(ctx context.Context, u user.User, c chat.Chat) error {
	if u.IsStaff || c.CreatorID == u.ID {
		return nil
	}
	a.log.Warn(ctx, "permission denied",
		zap.String("action", "chat.manage"),
		zap.String("actor_id", u.ID.String()),
		zap.String("chat_id", c.ID.String()),
	)
	return groupchat_errors.ErrForbidden
}

func (a *AccessControl) ensureMember(ctx context.Context, action string, u user.User, c chat.Chat) error {
	if a.IsMember(c, u) {
		return nil
	}
	a.log.Warn(ctx, "permission denied",
		zap.String("action", action),
		zap.String("actor_id", u.ID.String()),
		zap.String("chat_id", c.ID.String()),
	)
	return groupchat_errors.ErrForbidden
}
