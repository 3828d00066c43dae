package httpdto

import (
	"groupchat/internal/domain/notification"
)

type NotificationDTO struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

func FromNotification(n notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID.String(),
		MessageID: n.MessageID.String(),
		IsRead:    n.IsRead,
		CreatedAt: formatTime(n.CreatedAt),
	}
}

func FromNotifications(items []notification.Notification) []NotificationDTO {
	out := make([]NotificationDTO, 0, len(items))
	for _, n := range items {
		out = append(out, FromNotification(n))
	}
	return out
}
