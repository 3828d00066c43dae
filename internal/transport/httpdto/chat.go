package httpdto

import (
	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/user"
)

// CreateChatRequest is used for POST /chats
type CreateChatRequest struct {
	Name      string   `json:"name" binding:"required"`
	MemberIDs []string `json:"member_ids"`
}

// MemberRequest is used for POST /chats/:id/members
type MemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff,omitempty"`
}

type ChatDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID string    `json:"creator_id"`
	Members   []UserDTO `json:"members"`
	CreatedAt string    `json:"created_at"`
}

func FromUser(u user.User) UserDTO {
	return UserDTO{ID: u.ID.String(), Username: u.Username, IsStaff: u.IsStaff}
}

func FromUsers(items []user.User) []UserDTO {
	out := make([]UserDTO, 0, len(items))
	for _, u := range items {
		out = append(out, FromUser(u))
	}
	return out
}

func FromChat(c chat.Chat) ChatDTO {
	return ChatDTO{
		ID:        c.ID.String(),
		Name:      c.Name,
		CreatorID: c.CreatorID.String(),
		Members:   FromUsers(c.Members),
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func FromChats(items []chat.Chat) []ChatDTO {
	out := make([]ChatDTO, 0, len(items))
	for _, c := range items {
		out = append(out, FromChat(c))
	}
	return out
}
