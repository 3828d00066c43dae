package repository

import (
	"context"
	"time"

	"groupchat/internal/domain/friend"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type PostgresFriendRequestRepository struct {
	db *gorm.DB
}

func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &PostgresFriendRequestRepository{db: db}
}

func (r *PostgresFriendRequestRepository) Create(ctx context.Context, fr *friend.Request) error {
	return translateError(r.db.WithContext(ctx).Create(fr).Error)
}

func (r *PostgresFriendRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (friend.Request, error) {
	var fr friend.Request
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fr).Error
	if err != nil {
		return friend.Request{}, translateError(err)
	}
	return fr, nil
}

func (r *PostgresFriendRequestRepository) GetByPair(ctx context.Context, fromUserID, toUserID uuid.UUID) (friend.Request, error) {
	var fr friend.Request
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		First(&fr).Error
	if err != nil {
		return friend.Request{}, translateError(err)
	}
	return fr, nil
}

func (r *PostgresFriendRequestRepository) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error {
	return affected(r.db.WithContext(ctx).
		Model(&friend.Request{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"accepted":    true,
			"accepted_at": at,
		}))
}

func (r *PostgresFriendRequestRepository) ListPendingTo(ctx context.Context, userID uuid.UUID) ([]friend.Request, error) {
	return r.listPending(ctx, "to_user_id = ?", userID)
}

func (r *PostgresFriendRequestRepository) ListPendingFrom(ctx context.Context, userID uuid.UUID) ([]friend.Request, error) {
	return r.listPending(ctx, "from_user_id = ?", userID)
}

func (r *PostgresFriendRequestRepository) listPending(ctx context.Context, cond string, userID uuid.UUID) ([]friend.Request, error) {
	requests := []friend.Request{}
	err := r.db.WithContext(ctx).
		Where(cond, userID).
		Where("accepted = ?", false).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, translateError(err)
	}
	return requests, nil
}

// MutualFriendIDs returns every user U with both userID->U and U->userID requests.
func (r *PostgresFriendRequestRepository) MutualFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	senders := r.db.Model(&friend.Request{}).Select("from_user_id").Where("to_user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Model(&friend.Request{}).
		Where("from_user_id = ? AND to_user_id IN (?)", userID, senders).
		Pluck("to_user_id", &ids).Error
	if err != nil {
		return nil, translateError(err)
	}
	return ids, nil
}

// AcceptedFriendIDs returns the other side of every accepted request touching userID.
func (r *PostgresFriendRequestRepository) AcceptedFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var sent, received []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&friend.Request{}).
		Where("from_user_id = ? AND accepted = ?", userID, true).
		Pluck("to_user_id", &sent).Error
	if err != nil {
		return nil, translateError(err)
	}
	err = r.db.WithContext(ctx).
		Model(&friend.Request{}).
		Where("to_user_id = ? AND accepted = ?", userID, true).
		Pluck("from_user_id", &received).Error
	if err != nil {
		return nil, translateError(err)
	}
	return lo.Uniq(append(sent, received...)), nil
}
