package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"groupchat/internal/services"
	"groupchat/internal/testutil"
	groupchat_errors "groupchat/pkg/errors"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	log, logs := testutil.NewObservedLogger(zapcore.DebugLevel)
	svc := services.NewProfileService(store, nil, log)

	alice := testutil.CreateUser(t, store, "alice", false)
	bob := testutil.CreateUser(t, store, "bob", false)

	t.Run("missing profile without create", func(t *testing.T) {
		_, found, err := svc.GetProfile(ctx, alice, false)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("create on demand is stable", func(t *testing.T) {
		req := require.New(t)
		first, found, err := svc.GetProfile(ctx, alice, true)
		req.NoError(err)
		req.True(found)
		req.Equal(alice.ID, first.UserID)

		second, found, err := svc.GetProfile(ctx, alice, true)
		req.NoError(err)
		req.True(found)
		req.Equal(first.ID, second.ID)
	})

	t.Run("whitelisted fields are applied and others ignored", func(t *testing.T) {
		req := require.New(t)
		p, err := svc.UpdateProfile(ctx, bob, map[string]any{
			"bio":          "hi there",
			"age":          float64(31),
			"display_name": "Bobby",
			"user_id":      "hijack",
		}, nil)
		req.NoError(err)
		req.Equal(31, p.Age)
		req.NotNil(p.Bio)
		req.Equal("hi there", *p.Bio)
		req.Equal(bob.ID, p.UserID)

		stored, found, err := svc.GetProfile(ctx, bob, false)
		req.NoError(err)
		req.True(found)
		req.Equal(31, stored.Age)
		req.Equal("hi there", *stored.Bio)

		ignored := logs.FilterMessage("ignoring profile fields").All()
		req.Len(ignored, 1)
		req.ElementsMatch([]any{"display_name", "user_id"}, ignored[0].ContextMap()["fields"])
	})

	t.Run("explicit whitelist narrows the update", func(t *testing.T) {
		req := require.New(t)
		p, err := svc.UpdateProfile(ctx, bob, map[string]any{"age": 40, "image": "me.png"}, []string{"image"})
		req.NoError(err)
		req.Equal(31, p.Age)
		req.Equal("me.png", p.Image)
	})

	t.Run("bio can be cleared", func(t *testing.T) {
		p, err := svc.UpdateProfile(ctx, bob, map[string]any{"bio": nil}, nil)
		require.NoError(t, err)
		require.Nil(t, p.Bio)
	})

	t.Run("json numbers are accepted", func(t *testing.T) {
		p, err := svc.UpdateProfile(ctx, bob, map[string]any{"age": json.Number("27")}, nil)
		require.NoError(t, err)
		require.Equal(t, 27, p.Age)
	})

	t.Run("negative age fails validation and nothing changes", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.UpdateProfile(ctx, bob, map[string]any{"age": -1}, nil)
		req.ErrorIs(err, groupchat_errors.ErrValidation)
		var verr *groupchat_errors.ValidationError
		req.ErrorAs(err, &verr)
		req.Contains(verr.Fields, "age")

		stored, _, err := svc.GetProfile(ctx, bob, false)
		req.NoError(err)
		req.Equal(27, stored.Age)
	})

	t.Run("wrong value types fail validation", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.UpdateProfile(ctx, bob, map[string]any{"age": "old", "image": 7, "bio": 1.5}, nil)
		var verr *groupchat_errors.ValidationError
		req.ErrorAs(err, &verr)
		req.Len(verr.Fields, 3)

		_, err = svc.UpdateProfile(ctx, bob, map[string]any{"age": 2.5}, nil)
		req.ErrorIs(err, groupchat_errors.ErrValidation)
	})

	t.Run("nothing applicable returns the stored profile", func(t *testing.T) {
		p, err := svc.UpdateProfile(ctx, bob, map[string]any{"unknown": true}, nil)
		require.NoError(t, err)
		require.Equal(t, 27, p.Age)
		require.Equal(t, "me.png", p.Image)
	})
}
