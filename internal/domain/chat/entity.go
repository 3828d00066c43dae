package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"groupchat/internal/domain"
	"groupchat/internal/domain/user"
)

// Chat represents the chats table. Members live in the chat_members join table.
type Chat struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name      string      `gorm:"type:varchar(100);not null" validate:"required,max=100"`
	CreatorID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Members   []user.User `gorm:"many2many:chat_members;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"not null"`
}

func (Chat) TableName() string {
	return "chats"
}

func (c Chat) Validate() error {
	return domain.Validate("chat", c)
}

// IsMember reports whether userID may act within the chat: either it is in the
// member set or it is the creator, who is authorized even when absent from Members.
func (c Chat) IsMember(userID uuid.UUID) bool {
	if userID == c.CreatorID {
		return true
	}
	return lo.ContainsBy(c.Members, func(m user.User) bool {
		return m.ID == userID
	})
}

// AudienceIDs returns the creator followed by every member, without duplicates.
func (c Chat) AudienceIDs() []uuid.UUID {
	ids := append([]uuid.UUID{c.CreatorID}, lo.Map(c.Members, func(m user.User, _ int) uuid.UUID {
		return m.ID
	})...)
	return lo.Uniq(ids)
}
