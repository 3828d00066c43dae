package httpdto

import (
	"groupchat/internal/domain/user"
)

type ProfileDTO struct {
	UserID    string  `json:"user_id"`
	Age       int     `json:"age"`
	Bio       *string `json:"bio"`
	Image     string  `json:"image,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

func FromProfile(p user.Profile) ProfileDTO {
	return ProfileDTO{
		UserID:    p.UserID.String(),
		Age:       p.Age,
		Bio:       p.Bio,
		Image:     p.Image,
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}
