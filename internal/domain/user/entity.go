package user

import (
	"time"

	"github.com/google/uuid"

	"groupchat/internal/domain"
)

// User represents the users table. Its lifecycle is owned by the identity subsystem.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"type:varchar(150);not null;uniqueIndex"`
	IsStaff   bool      `gorm:"not null"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// Profile represents the profiles table, one-to-one with User.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Age       int       `gorm:"not null" validate:"gte=0,lte=150"`
	Bio       *string   `gorm:"type:text" validate:"omitempty,max=500"`
	Image     string    `gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func (Profile) TableName() string {
	return "profiles"
}


func (p Profile) Validate() error {
	return domain.Validate("profile", p)
}
