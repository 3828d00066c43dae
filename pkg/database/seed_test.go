package database_test

import (
	"context"
	"testing"

	"groupchat/internal/repository"
	"groupchat/internal/testutil"
	"groupchat/pkg/database"

	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := repository.NewStore(db)

	t.Run("needs two users", func(t *testing.T) {
		_, err := database.Seed(ctx, db, &database.SeedConfig{AdminUsername: "admin", TestUserCount: 1})
		require.Error(t, err)
	})

	res, err := database.Seed(ctx, db, nil)
	require.NoError(t, err)

	t.Run("users chat and messages", func(t *testing.T) {
		req := require.New(t)
		req.True(res.Admin.IsStaff)
		req.Len(res.Users, 3)
		req.Len(res.Messages, 3)

		c, err := store.Chats().GetByID(ctx, res.Chat.ID)
		req.NoError(err)
		req.Len(c.Members, 3)

		msgs, err := store.Messages().ListByChat(ctx, c.ID, 10, 0, false)
		req.NoError(err)
		req.Equal("Welcome to the general chat!", msgs[0].Content)
	})

	t.Run("seeded users are friends in both modes", func(t *testing.T) {
		req := require.New(t)
		mutual, err := store.FriendRequests().MutualFriendIDs(ctx, res.Users[0].ID)
		req.NoError(err)
		req.Len(mutual, 2)

		accepted, err := store.FriendRequests().AcceptedFriendIDs(ctx, res.Users[0].ID)
		req.NoError(err)
		req.Len(accepted, 2)
	})

	t.Run("reseeding reuses users chat and messages", func(t *testing.T) {
		req := require.New(t)
		again, err := database.Seed(ctx, db, nil)
		req.NoError(err)
		req.Equal(res.Admin.ID, again.Admin.ID)
		req.True(again.Admin.IsStaff)
		for i := range res.Users {
			req.Equal(res.Users[i].ID, again.Users[i].ID)
		}
		req.Equal(res.Chat.ID, again.Chat.ID)
		req.Len(again.Messages, 3)

		chats, err := store.Chats().ListForUser(ctx, res.Users[0].ID)
		req.NoError(err)
		req.Len(chats, 1)
		msgs, err := store.Messages().ListByChat(ctx, res.Chat.ID, 10, 0, false)
		req.NoError(err)
		req.Len(msgs, 3)
	})

	t.Run("growing the user count on a rerun adds users", func(t *testing.T) {
		req := require.New(t)
		more, err := database.Seed(ctx, db, &database.SeedConfig{AdminUsername: "admin", TestUserCount: 4})
		req.NoError(err)
		req.Len(more.Users, 4)
		req.Equal(res.Users[2].ID, more.Users[2].ID)
		req.Equal(res.Chat.ID, more.Chat.ID)
	})
}
