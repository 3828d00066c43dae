package httpdto

import (
	"groupchat/internal/domain/friend"
)

// FriendRequestCreate is used for POST /friends/requests
type FriendRequestCreate struct {
	ToUserID string `json:"to_user_id" binding:"required"`
}

type FriendRequestDTO struct {
	ID         string  `json:"id"`
	FromUserID string  `json:"from_user_id"`
	ToUserID   string  `json:"to_user_id"`
	Accepted   bool    `json:"accepted"`
	AcceptedAt *string `json:"accepted_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func FromFriendRequest(r friend.Request) FriendRequestDTO {
	dto := FriendRequestDTO{
		ID:         r.ID.String(),
		FromUserID: r.FromUserID.String(),
		ToUserID:   r.ToUserID.String(),
		Accepted:   r.Accepted,
		CreatedAt:  formatTime(r.CreatedAt),
	}
	if r.AcceptedAt != nil {
		at := formatTime(*r.AcceptedAt)
		dto.AcceptedAt = &at
	}
	return dto
}

func FromFriendRequests(items []friend.Request) []FriendRequestDTO {
	out := make([]FriendRequestDTO, 0, len(items))
	for _, r := range items {
		out = append(out, FromFriendRequest(r))
	}
	return out
}
