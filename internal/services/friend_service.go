package services

import (
	"context"
	"errors"

	"groupchat/internal/domain/friend"
	"groupchat/internal/domain/user"
	"groupchat/internal/repository"
	groupchat_errors "groupchat/pkg/errors"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FriendService struct {
	store repository.Store
	mode  friend.Mode
	log   *logger.Logger
}

// NewFriendService fixes how friendship is derived for the life of the service.
func NewFriendService(store repository.Store, mode friend.Mode, log *logger.Logger) *FriendService {
	if mode == "" {
		mode = friend.ModeMutual
	}
	return &FriendService{store: store, mode: mode, log: log}
}

func (s *FriendService) Mode() friend.Mode {
	return s.mode
}

// SendFriendRequest returns the request from -> to, creating it when absent.
// The boolean reports whether it was created by this call. Losing a creation
// race to a concurrent caller yields ErrConflict; GetRequest then finds the winner.
func (s *FriendService) SendFriendRequest(ctx context.Context, from, to user.User) (friend.Request, bool, error) {
	if from.ID == to.ID {
		s.log.Debug(ctx, "rejecting self friend request", zap.String("actor_id", from.ID.String()))
		return friend.Request{}, false, groupchat_errors.InvalidInput("cannot send a friend request to yourself")
	}

	var (
		req     friend.Request
		created bool
	)
	err := atomic(ctx, s.store, s.log, "send friend request", func(tx repository.Store) error {
		existing, err := tx.FriendRequests().GetByPair(ctx, from.ID, to.ID)
		if err == nil {
			req = existing
			return nil
		}
		if !errors.Is(err, groupchat_errors.ErrNotFound) {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, to.ID); err != nil {
			return err
		}
		req = friend.Request{
			ID:         uuid.New(),
			FromUserID: from.ID,
			ToUserID:   to.ID,
			CreatedAt:  now(),
		}
		if err := tx.FriendRequests().Create(ctx, &req); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return friend.Request{}, false, err
	}
	if created {
		s.log.Info(ctx, "friend request sent",
			zap.String("request_id", req.ID.String()),
			zap.String("actor_id", from.ID.String()),
			zap.String("to_user_id", to.ID.String()),
		)
	}
	return req, created, nil
}

func (s *FriendService) GetRequest(ctx context.Context, fromUserID, toUserID uuid.UUID) (friend.Request, error) {
	req, err := s.store.FriendRequests().GetByPair(ctx, fromUserID, toUserID)
	if err != nil {
		return friend.Request{}, storeError(ctx, s.log, "get friend request", err)
	}
	return req, nil
}

// AcceptFriendRequest marks a request accepted. Only its recipient may accept,
// and only when the service runs in accepted mode. Accepting twice is a no-op.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, requestID uuid.UUID, actor user.User) (friend.Request, error) {
	if s.mode != friend.ModeAccepted {
		return friend.Request{}, groupchat_errors.InvalidInput("friend requests are not accepted explicitly in mutual mode")
	}

	var req friend.Request
	err := atomic(ctx, s.store, s.log, "accept friend request", func(tx repository.Store) error {
		var err error
		req, err = tx.FriendRequests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.ToUserID != actor.ID {
			s.log.Warn(ctx, "permission denied",
				zap.String("action", "friend.accept"),
				zap.String("actor_id", actor.ID.String()),
				zap.String("request_id", requestID.String()),
			)
			return groupchat_errors.ErrForbidden
		}
		if req.Accepted {
			return nil
		}
		at := now()
		if err := tx.FriendRequests().MarkAccepted(ctx, req.ID, at); err != nil {
			return err
		}
		req.Accepted = true
		req.AcceptedAt = &at
		return nil
	})
	if err != nil {
		return friend.Request{}, err
	}
	return req, nil
}

// GetFriends derives the friends of u according to the configured mode:
// opposite requests in both directions, or accepted requests in either.
func (s *FriendService) GetFriends(ctx context.Context, u user.User) ([]user.User, error) {
	var (
		ids []uuid.UUID
		err error
	)
	switch s.mode {
	case friend.ModeAccepted:
		ids, err = s.store.FriendRequests().AcceptedFriendIDs(ctx, u.ID)
	default:
		ids, err = s.store.FriendRequests().MutualFriendIDs(ctx, u.ID)
	}
	if err != nil {
		return nil, storeError(ctx, s.log, "get friends", err)
	}
	friends, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(ctx, s.log, "get friends", err)
	}
	return friends, nil
}

func (s *FriendService) ListIncoming(ctx context.Context, u user.User) ([]friend.Request, error) {
	reqs, err := s.store.FriendRequests().ListPendingTo(ctx, u.ID)
	if err != nil {
		return nil, storeError(ctx, s.log, "list incoming friend requests", err)
	}
	return reqs, nil
}

func (s *FriendService) ListOutgoing(ctx context.Context, u user.User) ([]friend.Request, error) {
	reqs, err := s.store.FriendRequests().ListPendingFrom(ctx, u.ID)
	if err != nil {
		return nil, storeError(ctx, s.log, "list outgoing friend requests", err)
	}
	return reqs, nil
}
