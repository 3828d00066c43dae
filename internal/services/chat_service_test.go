package services_test

import (
	"context"
	"testing"

	"groupchat/internal/domain/user"
	"groupchat/internal/proxy"
	"groupchat/internal/services"
	"groupchat/internal/testutil"
	groupchat_errors "groupchat/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func memberIDs(members []user.User) []uuid.UUID {
	return lo.Map(members, func(u user.User, _ int) uuid.UUID { return u.ID })
}

func TestChatService(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	log, logs := testutil.NewObservedLogger(zapcore.InfoLevel)
	svc := services.NewChatService(store, proxy.NewAccessControl(log), log)

	alice := testutil.CreateUser(t, store, "alice", false)
	bob := testutil.CreateUser(t, store, "bob", false)
	carol := testutil.CreateUser(t, store, "carol", false)
	admin := testutil.CreateUser(t, store, "admin", true)

	c, err := svc.Create(ctx, alice, " planning ", []uuid.UUID{bob.ID, bob.ID})
	require.NoError(t, err)

	t.Run("create trims the name and includes the creator", func(t *testing.T) {
		req := require.New(t)
		req.Equal("planning", c.Name)
		req.Equal(alice.ID, c.CreatorID)
		req.ElementsMatch([]uuid.UUID{alice.ID, bob.ID}, memberIDs(c.Members))
		req.Equal(1, logs.FilterMessage("chat created").Len())
	})

	t.Run("create rejects unknown members", func(t *testing.T) {
		_, err := svc.Create(ctx, alice, "ghosts", []uuid.UUID{uuid.New()})
		require.ErrorIs(t, err, groupchat_errors.ErrNotFound)
	})

	t.Run("create rejects a blank name", func(t *testing.T) {
		_, err := svc.Create(ctx, alice, "   ", nil)
		require.ErrorIs(t, err, groupchat_errors.ErrInvalidInput)
	})

	t.Run("get requires membership", func(t *testing.T) {
		_, err := svc.Get(ctx, c.ID, bob)
		require.NoError(t, err)
		_, err = svc.Get(ctx, c.ID, carol)
		require.ErrorIs(t, err, groupchat_errors.ErrForbidden)
	})

	t.Run("only creator or staff manage members", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.AddMember(ctx, c.ID, bob, carol.ID)
		req.ErrorIs(err, groupchat_errors.ErrForbidden)

		updated, err := svc.AddMember(ctx, c.ID, alice, carol.ID)
		req.NoError(err)
		req.Contains(memberIDs(updated.Members), carol.ID)

		updated, err = svc.RemoveMember(ctx, c.ID, admin, carol.ID)
		req.NoError(err)
		req.NotContains(memberIDs(updated.Members), carol.ID)
	})

	t.Run("adding an unknown user", func(t *testing.T) {
		_, err := svc.AddMember(ctx, c.ID, alice, uuid.New())
		require.ErrorIs(t, err, groupchat_errors.ErrNotFound)
	})

	t.Run("creator cannot be removed", func(t *testing.T) {
		_, err := svc.RemoveMember(ctx, c.ID, alice, alice.ID)
		require.ErrorIs(t, err, groupchat_errors.ErrInvalidInput)
	})

	t.Run("removing a non-member", func(t *testing.T) {
		_, err := svc.RemoveMember(ctx, c.ID, alice, carol.ID)
		require.ErrorIs(t, err, groupchat_errors.ErrNotFound)
	})

	t.Run("list for user", func(t *testing.T) {
		chats, err := svc.ListForUser(ctx, bob)
		require.NoError(t, err)
		require.Len(t, chats, 1)

		chats, err = svc.ListForUser(ctx, carol)
		require.NoError(t, err)
		require.Empty(t, chats)
	})
}
