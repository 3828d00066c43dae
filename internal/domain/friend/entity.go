package friend

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects how friendship is derived from requests. It is fixed at startup.
type Mode string

const (
	// ModeMutual treats two opposite requests (A->B and B->A) as a friendship.
	ModeMutual Mode = "mutual"
	// ModeAccepted requires the recipient to accept a request.
	ModeAccepted Mode = "accepted"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeMutual:
		return ModeMutual, true
	case ModeAccepted:
		return ModeAccepted, true
	}
	return "", false
}

// Request represents the friend_requests table. The ordered pair is unique.
type Request struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FromUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friend_requests_pair,priority:1;check:chk_friend_requests_distinct,from_user_id <> to_user_id"`
	ToUserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friend_requests_pair,priority:2;index"`
	Accepted   bool      `gorm:"not null"`
	AcceptedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
}

func (Request) TableName() string {
	return "friend_requests"
}
