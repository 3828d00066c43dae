package services

import (
	"context"
	"strings"

	"groupchat/internal/domain/user"
	"groupchat/internal/repository"
	groupchat_errors "groupchat/pkg/errors"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService is the read side of the identity subsystem plus the provisioning
// used by seeding and tests. Accounts are otherwise managed elsewhere.
type UserService struct {
	store repository.Store
	log   *logger.Logger
}

func NewUserService(store repository.Store, log *logger.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return user.User{}, storeError(ctx, s.log, "get user", err)
	}
	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (user.User, error) {
	u, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return user.User{}, storeError(ctx, s.log, "get user by username", err)
	}
	return u, nil
}

func (s *UserService) Provision(ctx context.Context, username string, isStaff bool) (user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return user.User{}, groupchat_errors.InvalidInput("username is empty")
	}
	u := user.User{
		ID:        uuid.New(),
		Username:  username,
		IsStaff:   isStaff,
		IsActive:  true,
		CreatedAt: now(),
	}
	if err := s.store.Users().Create(ctx, &u); err != nil {
		return user.User{}, storeError(ctx, s.log, "provision user", err)
	}
	s.log.Info(ctx, "user provisioned", zap.String("user_id", u.ID.String()), zap.Bool("is_staff", isStaff))
	return u, nil
}

// Delete removes the user with everything it owns: profile, sent messages,
// notifications, friend requests and the chats it created.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return storeError(ctx, s.log, "delete user", err)
	}
	s.log.Info(ctx, "user deleted", zap.String("user_id", id.String()))
	return nil
}
