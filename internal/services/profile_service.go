package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"groupchat/internal/domain/user"
	"groupchat/internal/repository"
	groupchat_errors "groupchat/pkg/errors"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultProfileFields is the update whitelist used when none is configured.
// display_name is not a profile attribute and is dropped on update.
var DefaultProfileFields = []string{"bio", "age", "image", "display_name"}

// profileSetters are the attributes an update may touch, keyed by column name.
var profileSetters = map[string]func(p *user.Profile, v any) error{
	"age": func(p *user.Profile, v any) error {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		p.Age = n
		return nil
	},
	"bio": func(p *user.Profile, v any) error {
		switch val := v.(type) {
		case nil:
			p.Bio = nil
		case string:
			p.Bio = &val
		default:
			return fmt.Errorf("expected string or null, got %T", v)
		}
		return nil
	},
	"image": func(p *user.Profile, v any) error {
		val, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		p.Image = val
		return nil
	},
}

type ProfileService struct {
	store   repository.Store
	allowed []string
	log     *logger.Logger
}

func NewProfileService(store repository.Store, allowed []string, log *logger.Logger) *ProfileService {
	if len(allowed) == 0 {
		allowed = DefaultProfileFields
	}
	return &ProfileService{store: store, allowed: allowed, log: log}
}

// GetProfile returns the profile of u. When it does not exist it is created if
// createIfMissing is set; otherwise the boolean is false.
func (s *ProfileService) GetProfile(ctx context.Context, u user.User, createIfMissing bool) (user.Profile, bool, error) {
	if !createIfMissing {
		p, err := s.store.Profiles().GetByUserID(ctx, u.ID)
		if errors.Is(err, groupchat_errors.ErrNotFound) {
			s.log.Debug(ctx, "profile not found", zap.String("user_id", u.ID.String()))
			return user.Profile{}, false, nil
		}
		if err != nil {
			return user.Profile{}, false, storeError(ctx, s.log, "get profile", err)
		}
		return p, true, nil
	}

	var p user.Profile
	err := atomic(ctx, s.store, s.log, "get or create profile", func(tx repository.Store) error {
		var err error
		p, err = s.getOrCreate(ctx, tx, u)
		return err
	})
	if err != nil {
		return user.Profile{}, false, err
	}
	return p, true, nil
}

// UpdateProfile applies the entries of values whose key is allowed and names a
// profile attribute; other keys are ignored. A nil allowed uses the service
// whitelist. When nothing applies the stored profile is returned untouched.
func (s *ProfileService) UpdateProfile(ctx context.Context, u user.User, values map[string]any, allowed []string) (user.Profile, error) {
	if allowed == nil {
		allowed = s.allowed
	}

	var p user.Profile
	err := atomic(ctx, s.store, s.log, "update profile", func(tx repository.Store) error {
		var err error
		p, err = s.getOrCreate(ctx, tx, u)
		if err != nil {
			return err
		}

		applied, ignored, err := applyProfileValues(&p, values, allowed)
		if len(ignored) > 0 {
			s.log.Debug(ctx, "ignoring profile fields",
				zap.String("user_id", u.ID.String()),
				zap.Strings("fields", ignored),
			)
		}
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			return nil
		}
		if err := p.Validate(); err != nil {
			return err
		}
		p.UpdatedAt = now()
		return tx.Profiles().UpdateFields(ctx, p, append(applied, "updated_at"))
	})
	if err != nil {
		return user.Profile{}, err
	}
	return p, nil
}

func (s *ProfileService) getOrCreate(ctx context.Context, tx repository.Store, u user.User) (user.Profile, error) {
	p, err := tx.Profiles().GetByUserID(ctx, u.ID)
	if !errors.Is(err, groupchat_errors.ErrNotFound) {
		return p, err
	}
	p = user.Profile{ID: uuid.New(), UserID: u.ID, UpdatedAt: now()}
	if err := tx.Profiles().Create(ctx, &p); err != nil {
		return user.Profile{}, err
	}
	s.log.Debug(ctx, "profile created", zap.String("user_id", u.ID.String()))
	return p, nil
}

// applyProfileValues returns the columns it set (sorted) and the keys it
// skipped. Values of the wrong type fail as a ValidationError before p is used.
func applyProfileValues(p *user.Profile, values map[string]any, allowed []string) ([]string, []string, error) {
	var applied, ignored []string
	invalid := map[string]string{}
	for _, key := range lo.Keys(values) {
		set, ok := profileSetters[key]
		if !ok || !lo.Contains(allowed, key) {
			ignored = append(ignored, key)
			continue
		}
		if err := set(p, values[key]); err != nil {
			invalid[key] = err.Error()
			continue
		}
		applied = append(applied, key)
	}
	if len(invalid) > 0 {
		return nil, ignored, groupchat_errors.NewValidationError("profile", invalid)
	}
	slices.Sort(applied)
	slices.Sort(ignored)
	return applied, ignored, nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %s", n)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}
