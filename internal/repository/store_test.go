package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"groupchat/internal/domain/friend"
	"groupchat/internal/domain/message"
	"groupchat/internal/domain/notification"
	"groupchat/internal/domain/user"
	"groupchat/internal/repository"
	"groupchat/internal/testutil"
	groupchat_errors "groupchat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newMessage(chatID, senderID uuid.UUID, content string, at time.Time) message.Message {
	return message.Message{
		ID:        uuid.Must(uuid.NewV7()),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: at,
	}
}

func TestRunAtomic(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	t.Run("rolls back every write when fn fails", func(t *testing.T) {
		req := require.New(t)
		boom := errors.New("boom")
		var id uuid.UUID
		err := store.RunAtomic(ctx, func(tx repository.Store) error {
			u := user.User{ID: uuid.New(), Username: "ghost", IsActive: true, CreatedAt: time.Now().UTC()}
			id = u.ID
			if err := tx.Users().Create(ctx, &u); err != nil {
				return err
			}
			return boom
		})
		req.ErrorIs(err, boom)

		_, err = store.Users().GetByID(ctx, id)
		req.ErrorIs(err, groupchat_errors.ErrNotFound)
	})

	t.Run("commits when fn succeeds", func(t *testing.T) {
		req := require.New(t)
		var id uuid.UUID
		err := store.RunAtomic(ctx, func(tx repository.Store) error {
			u := user.User{ID: uuid.New(), Username: "kept", IsActive: true, CreatedAt: time.Now().UTC()}
			id = u.ID
			return tx.Users().Create(ctx, &u)
		})
		req.NoError(err)

		got, err := store.Users().GetByID(ctx, id)
		req.NoError(err)
		req.Equal("kept", got.Username)
	})

	t.Run("duplicate username is reported as already exists", func(t *testing.T) {
		testutil.CreateUser(t, store, "dup", false)
		u := user.User{ID: uuid.New(), Username: "dup", IsActive: true, CreatedAt: time.Now().UTC()}
		err := store.Users().Create(ctx, &u)
		require.ErrorIs(t, err, groupchat_errors.ErrAlreadyExists)
	})
}

func TestChatRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := testutil.CreateUser(t, store, "alice", false)
	bob := testutil.CreateUser(t, store, "bob", false)
	carol := testutil.CreateUser(t, store, "carol", false)

	t.Run("members are loaded and the creator is implicit", func(t *testing.T) {
		req := require.New(t)
		c := testutil.CreateChat(t, store, "team", alice, bob)
		req.Len(c.Members, 1)
		req.True(c.IsMember(alice.ID))
		req.True(c.IsMember(bob.ID))
		req.False(c.IsMember(carol.ID))
	})

	t.Run("add and remove member", func(t *testing.T) {
		req := require.New(t)
		c := testutil.CreateChat(t, store, "side", alice)

		req.NoError(store.Chats().AddMember(ctx, c.ID, carol.ID))
		req.NoError(store.Chats().AddMember(ctx, c.ID, carol.ID))
		got, err := store.Chats().GetByID(ctx, c.ID)
		req.NoError(err)
		req.Len(got.Members, 1)

		req.NoError(store.Chats().RemoveMember(ctx, c.ID, carol.ID))
		req.ErrorIs(store.Chats().RemoveMember(ctx, c.ID, carol.ID), groupchat_errors.ErrNotFound)
	})

	t.Run("list for user covers created and joined chats", func(t *testing.T) {
		req := require.New(t)
		owned := testutil.CreateChat(t, store, "owned-by-carol", carol)
		joined := testutil.CreateChat(t, store, "carol-joined", bob, carol)

		chats, err := store.Chats().ListForUser(ctx, carol.ID)
		req.NoError(err)
		ids := make([]uuid.UUID, 0, len(chats))
		for _, c := range chats {
			ids = append(ids, c.ID)
		}
		req.Contains(ids, owned.ID)
		req.Contains(ids, joined.ID)
	})

	t.Run("delete cascades to messages and notifications", func(t *testing.T) {
		req := require.New(t)
		c := testutil.CreateChat(t, store, "doomed", alice, bob)
		m := newMessage(c.ID, alice.ID, "bye", time.Now().UTC())
		req.NoError(store.Messages().Create(ctx, &m))
		_, err := store.Notifications().CreateIfAbsent(ctx, &notification.Notification{
			ID: uuid.New(), UserID: bob.ID, MessageID: m.ID, CreatedAt: time.Now().UTC(),
		})
		req.NoError(err)

		req.NoError(store.Chats().Delete(ctx, c.ID))

		_, err = store.Chats().GetByID(ctx, c.ID)
		req.ErrorIs(err, groupchat_errors.ErrNotFound)
		_, err = store.Messages().GetByID(ctx, m.ID)
		req.ErrorIs(err, groupchat_errors.ErrNotFound)
		items, err := store.Notifications().ListByUser(ctx, bob.ID)
		req.NoError(err)
		req.Empty(items)
	})
}

func TestMessageRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := testutil.CreateUser(t, store, "alice", false)
	bob := testutil.CreateUser(t, store, "bob", false)
	c := testutil.CreateChat(t, store, "room", alice, bob)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var sent []message.Message
	for i, content := range []string{"one", "two", "three", "four"} {
		m := newMessage(c.ID, alice.ID, content, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, store.Messages().Create(ctx, &m))
		sent = append(sent, m)
	}

	contents := func(ms []message.Message) []string {
		out := make([]string, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.Content)
		}
		return out
	}

	t.Run("list orders and paginates", func(t *testing.T) {
		req := require.New(t)
		asc, err := store.Messages().ListByChat(ctx, c.ID, 50, 0, false)
		req.NoError(err)
		req.Equal([]string{"one", "two", "three", "four"}, contents(asc))

		desc, err := store.Messages().ListByChat(ctx, c.ID, 2, 1, true)
		req.NoError(err)
		req.Equal([]string{"three", "two"}, contents(desc))

		past, err := store.Messages().ListByChat(ctx, c.ID, 10, 10, false)
		req.NoError(err)
		req.Empty(past)
	})

	t.Run("update content keeps creation time", func(t *testing.T) {
		req := require.New(t)
		editedAt := base.Add(time.Hour)
		req.NoError(store.Messages().UpdateContent(ctx, sent[0].ID, "uno", editedAt))

		got, err := store.Messages().GetByID(ctx, sent[0].ID)
		req.NoError(err)
		req.Equal("uno", got.Content)
		req.True(got.CreatedAt.Equal(sent[0].CreatedAt))
		req.NotNil(got.EditedAt)
		req.True(got.EditedAt.Equal(editedAt))

		req.ErrorIs(store.Messages().UpdateContent(ctx, uuid.New(), "x", editedAt), groupchat_errors.ErrNotFound)
	})

	t.Run("delete removes dependents", func(t *testing.T) {
		req := require.New(t)
		target := sent[3]
		_, err := store.Notifications().CreateIfAbsent(ctx, &notification.Notification{
			ID: uuid.New(), UserID: bob.ID, MessageID: target.ID, CreatedAt: time.Now().UTC(),
		})
		req.NoError(err)
		req.NoError(store.Attachments().Create(ctx, &message.Attachment{
			ID: uuid.New(), MessageID: target.ID, AddedByID: alice.ID,
			ObjectKey: "k", FileName: "a.txt", SizeBytes: 3, UploadedAt: time.Now().UTC(),
		}))

		req.NoError(store.Messages().Delete(ctx, target.ID))
		req.ErrorIs(store.Messages().Delete(ctx, target.ID), groupchat_errors.ErrNotFound)

		attachments, err := store.Attachments().ListByMessage(ctx, target.ID)
		req.NoError(err)
		req.Empty(attachments)
		count, err := store.Notifications().CountUnread(ctx, bob.ID)
		req.NoError(err)
		req.Zero(count)
	})
}

func TestFriendRequestRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := testutil.CreateUser(t, store, "alice", false)
	bob := testutil.CreateUser(t, store, "bob", false)
	carol := testutil.CreateUser(t, store, "carol", false)

	create := func(from, to user.User) friend.Request {
		r := friend.Request{ID: uuid.New(), FromUserID: from.ID, ToUserID: to.ID, CreatedAt: time.Now().UTC()}
		require.NoError(t, store.FriendRequests().Create(ctx, &r))
		return r
	}

	ab := create(alice, bob)
	create(bob, alice)
	ac := create(alice, carol)

	t.Run("pair is unique", func(t *testing.T) {
		dup := friend.Request{ID: uuid.New(), FromUserID: alice.ID, ToUserID: bob.ID, CreatedAt: time.Now().UTC()}
		require.ErrorIs(t, store.FriendRequests().Create(ctx, &dup), groupchat_errors.ErrAlreadyExists)
	})

	t.Run("self request violates the check", func(t *testing.T) {
		self := friend.Request{ID: uuid.New(), FromUserID: alice.ID, ToUserID: alice.ID, CreatedAt: time.Now().UTC()}
		require.ErrorIs(t, store.FriendRequests().Create(ctx, &self), groupchat_errors.ErrConflict)
	})

	t.Run("mutual friends need both directions", func(t *testing.T) {
		req := require.New(t)
		ids, err := store.FriendRequests().MutualFriendIDs(ctx, alice.ID)
		req.NoError(err)
		req.Equal([]uuid.UUID{bob.ID}, ids)

		ids, err = store.FriendRequests().MutualFriendIDs(ctx, carol.ID)
		req.NoError(err)
		req.Empty(ids)
	})

	t.Run("accepted friends in either direction", func(t *testing.T) {
		req := require.New(t)
		req.NoError(store.FriendRequests().MarkAccepted(ctx, ac.ID, time.Now().UTC()))

		ids, err := store.FriendRequests().AcceptedFriendIDs(ctx, carol.ID)
		req.NoError(err)
		req.Equal([]uuid.UUID{alice.ID}, ids)

		ids, err = store.FriendRequests().AcceptedFriendIDs(ctx, alice.ID)
		req.NoError(err)
		req.Equal([]uuid.UUID{carol.ID}, ids)
	})

	t.Run("pending lists", func(t *testing.T) {
		req := require.New(t)
		incoming, err := store.FriendRequests().ListPendingTo(ctx, bob.ID)
		req.NoError(err)
		req.Len(incoming, 1)
		req.Equal(ab.ID, incoming[0].ID)

		outgoing, err := store.FriendRequests().ListPendingFrom(ctx, alice.ID)
		req.NoError(err)
		req.Len(outgoing, 1)
	})
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := testutil.CreateUser(t, store, "alice", false)
	bob := testutil.CreateUser(t, store, "bob", false)
	c := testutil.CreateChat(t, store, "room", alice, bob)
	m := newMessage(c.ID, alice.ID, "hi", time.Now().UTC())
	require.NoError(t, store.Messages().Create(ctx, &m))

	req := require.New(t)
	first := notification.Notification{ID: uuid.New(), UserID: bob.ID, MessageID: m.ID, CreatedAt: time.Now().UTC()}
	created, err := store.Notifications().CreateIfAbsent(ctx, &first)
	req.NoError(err)
	req.True(created)

	created, err = store.Notifications().CreateIfAbsent(ctx, &notification.Notification{
		ID: uuid.New(), UserID: bob.ID, MessageID: m.ID, CreatedAt: time.Now().UTC(),
	})
	req.NoError(err)
	req.False(created)

	count, err := store.Notifications().CountUnread(ctx, bob.ID)
	req.NoError(err)
	req.EqualValues(1, count)

	req.NoError(store.Notifications().MarkRead(ctx, first.ID))
	count, err = store.Notifications().CountUnread(ctx, bob.ID)
	req.NoError(err)
	req.Zero(count)

	req.NoError(store.Notifications().Delete(ctx, first.ID))
	req.ErrorIs(store.Notifications().Delete(ctx, first.ID), groupchat_errors.ErrNotFound)
}

func TestUserRepositoryDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	req := require.New(t)

	alice := testutil.CreateUser(t, store, "alice", false)
	bob := testutil.CreateUser(t, store, "bob", false)
	owned := testutil.CreateChat(t, store, "alice's", alice, bob)
	shared := testutil.CreateChat(t, store, "bob's", bob, alice)

	m := newMessage(shared.ID, alice.ID, "from alice", time.Now().UTC())
	req.NoError(store.Messages().Create(ctx, &m))
	req.NoError(store.Profiles().Create(ctx, &user.Profile{ID: uuid.New(), UserID: alice.ID}))
	req.NoError(store.FriendRequests().Create(ctx, &friend.Request{
		ID: uuid.New(), FromUserID: bob.ID, ToUserID: alice.ID, CreatedAt: time.Now().UTC(),
	}))

	req.NoError(store.Users().Delete(ctx, alice.ID))

	_, err := store.Users().GetByID(ctx, alice.ID)
	req.ErrorIs(err, groupchat_errors.ErrNotFound)
	_, err = store.Profiles().GetByUserID(ctx, alice.ID)
	req.ErrorIs(err, groupchat_errors.ErrNotFound)
	_, err = store.Chats().GetByID(ctx, owned.ID)
	req.ErrorIs(err, groupchat_errors.ErrNotFound)
	_, err = store.Messages().GetByID(ctx, m.ID)
	req.ErrorIs(err, groupchat_errors.ErrNotFound)

	left, err := store.Chats().GetByID(ctx, shared.ID)
	req.NoError(err)
	req.Empty(left.Members)

	incoming, err := store.FriendRequests().ListPendingFrom(ctx, bob.ID)
	req.NoError(err)
	req.Empty(incoming)
}
