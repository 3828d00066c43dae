package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"groupchat/internal/repository"
	groupchat_errors "groupchat/pkg/errors"
	"groupchat/pkg/logger"

	"go.uber.org/zap"
)

// now is the timestamp source for every row the services write. Postgres keeps
// microseconds, so values are truncated to compare equal after a round trip.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// storeError maps a repository failure onto the error taxonomy. Unique
// violations become conflicts; anything outside the taxonomy is logged as a
// store failure and returned wrapped.
func storeError(ctx context.Context, log *logger.Logger, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, groupchat_errors.ErrAlreadyExists):
		log.Warn(ctx, "store conflict", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w: %v", op, groupchat_errors.ErrConflict, err)
	case isTaxonomy(err):
		return err
	}
	log.Error(ctx, "store failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func isTaxonomy(err error) bool {
	for _, target := range []error{
		groupchat_errors.ErrInvalidInput,
		groupchat_errors.ErrForbidden,
		groupchat_errors.ErrNotFound,
		groupchat_errors.ErrValidation,
		groupchat_errors.ErrConflict,
		groupchat_errors.ErrTooLarge,
		groupchat_errors.ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// atomic runs fn in a transaction and maps any escaping error through storeError.
func atomic(ctx context.Context, store repository.Store, log *logger.Logger, op string, fn func(repository.Store) error) error {
	return storeError(ctx, log, op, store.RunAtomic(ctx, fn))
}
