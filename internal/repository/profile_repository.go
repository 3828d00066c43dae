package repository

import (
	"context"

	"groupchat/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Create(ctx context.Context, p *user.Profile) error {
	return translateError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	var p user.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return user.Profile{}, translateError(err)
	}
	return p, nil
}

// UpdateFields writes only the named columns of p.
func (r *PostgresProfileRepository) UpdateFields(ctx context.Context, p user.Profile, fields []string) error {
	return affected(r.db.WithContext(ctx).
		Model(&user.Profile{ID: p.ID}).
		Select(fields).
		Updates(&p))
}
