package services_test

import (
	"context"
	"strings"
	"testing"

	"groupchat/internal/domain/message"
	"groupchat/internal/domain/user"
	"groupchat/internal/proxy"
	"groupchat/internal/repository"
	"groupchat/internal/services"
	"groupchat/internal/testutil"
	groupchat_errors "groupchat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type messageFixture struct {
	store *repository.GormStore
	svc   *services.MessageService
	logs  *observer.ObservedLogs
}

func newMessageFixture(t *testing.T, mode services.DeleteDeniedMode) messageFixture {
	t.Helper()
	store := testutil.NewStore(t)
	log, logs := testutil.NewObservedLogger(zapcore.DebugLevel)
	return messageFixture{
		store: store,
		svc:   services.NewMessageService(store, proxy.NewAccessControl(log), log, mode),
		logs:  logs,
	}
}

func TestMessageService_Send(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t, services.DeleteDeniedRaise)
	alice := testutil.CreateUser(t, f.store, "alice", false)
	bob := testutil.CreateUser(t, f.store, "bob", false)
	eve := testutil.CreateUser(t, f.store, "eve", false)
	admin := testutil.CreateUser(t, f.store, "admin", true)
	c := testutil.CreateChat(t, f.store, "room", alice, bob)

	t.Run("member sends", func(t *testing.T) {
		req := require.New(t)
		m, err := f.svc.Send(ctx, bob, "  hello  ", c.ID)
		req.NoError(err)
		req.Equal("hello", m.Content)
		req.Equal(bob.ID, m.SenderID)
		req.Equal(c.ID, m.ChatID)
		req.Nil(m.EditedAt)

		stored, err := f.store.Messages().GetByID(ctx, m.ID)
		req.NoError(err)
		req.Equal("hello", stored.Content)
	})

	t.Run("creator who is not in the member set may send", func(t *testing.T) {
		_, err := f.svc.Send(ctx, alice, "from the creator", c.ID)
		require.NoError(t, err)
	})

	t.Run("outsider is forbidden and nothing is stored", func(t *testing.T) {
		req := require.New(t)
		before, err := f.svc.List(ctx, c.ID, services.ListOptions{})
		req.NoError(err)

		_, err = f.svc.Send(ctx, eve, "let me in", c.ID)
		req.ErrorIs(err, groupchat_errors.ErrForbidden)

		after, err := f.svc.List(ctx, c.ID, services.ListOptions{})
		req.NoError(err)
		req.Len(after, len(before))
		req.NotEmpty(f.logs.FilterMessage("permission denied").FilterFieldKey("actor_id").All())
	})

	t.Run("staff status does not grant sending", func(t *testing.T) {
		_, err := f.svc.Send(ctx, admin, "moderator here", c.ID)
		require.ErrorIs(t, err, groupchat_errors.ErrForbidden)
	})

	t.Run("blank content is invalid input", func(t *testing.T) {
		_, err := f.svc.Send(ctx, bob, " \n\t ", c.ID)
		require.ErrorIs(t, err, groupchat_errors.ErrInvalidInput)
	})

	t.Run("unknown chat is not found", func(t *testing.T) {
		_, err := f.svc.Send(ctx, bob, "hello?", uuid.New())
		require.ErrorIs(t, err, groupchat_errors.ErrNotFound)
	})

	t.Run("overlong content fails validation", func(t *testing.T) {
		req := require.New(t)
		_, err := f.svc.Send(ctx, bob, strings.Repeat("x", 4001), c.ID)
		req.ErrorIs(err, groupchat_errors.ErrValidation)
		var verr *groupchat_errors.ValidationError
		req.ErrorAs(err, &verr)
		req.Contains(verr.Fields, "content")
	})
}

func TestMessageService_List(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t, services.DeleteDeniedRaise)
	alice := testutil.CreateUser(t, f.store, "alice", false)
	bob := testutil.CreateUser(t, f.store, "bob", false)
	eve := testutil.CreateUser(t, f.store, "eve", false)
	c := testutil.CreateChat(t, f.store, "room", alice, bob)

	for _, content := range []string{"a", "b", "c"} {
		_, err := f.svc.Send(ctx, bob, content, c.ID)
		require.NoError(t, err)
	}
	contents := func(ms []message.Message) []string {
		out := make([]string, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.Content)
		}
		return out
	}

	t.Run("oldest first by default", func(t *testing.T) {
		ms, err := f.svc.List(ctx, c.ID, services.ListOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, contents(ms))
	})

	t.Run("newest first with paging", func(t *testing.T) {
		ms, err := f.svc.List(ctx, c.ID, services.ListOptions{Limit: 2, NewestFirst: true})
		require.NoError(t, err)
		require.Equal(t, []string{"c", "b"}, contents(ms))
	})

	t.Run("negative paging is invalid", func(t *testing.T) {
		_, err := f.svc.List(ctx, c.ID, services.ListOptions{Offset: -1})
		require.ErrorIs(t, err, groupchat_errors.ErrInvalidInput)
	})

	t.Run("viewer must be a member", func(t *testing.T) {
		_, err := f.svc.List(ctx, c.ID, services.ListOptions{Viewer: &eve})
		require.ErrorIs(t, err, groupchat_errors.ErrForbidden)

		ms, err := f.svc.List(ctx, c.ID, services.ListOptions{Viewer: &alice})
		require.NoError(t, err)
		require.Len(t, ms, 3)
	})

	t.Run("unknown chat", func(t *testing.T) {
		_, err := f.svc.List(ctx, uuid.New(), services.ListOptions{})
		require.ErrorIs(t, err, groupchat_errors.ErrNotFound)
	})
}

func TestMessageService_Edit(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t, services.DeleteDeniedRaise)
	alice := testutil.CreateUser(t, f.store, "alice", false)
	bob := testutil.CreateUser(t, f.store, "bob", false)
	admin := testutil.CreateUser(t, f.store, "admin", true)
	c := testutil.CreateChat(t, f.store, "room", alice, bob)
	m, err := f.svc.Send(ctx, bob, "first draft", c.ID)
	require.NoError(t, err)

	t.Run("sender edits", func(t *testing.T) {
		req := require.New(t)
		edited, err := f.svc.Edit(ctx, message.ByID(m.ID), bob, "second draft")
		req.NoError(err)
		req.Equal("second draft", edited.Content)
		req.NotNil(edited.EditedAt)
		req.True(edited.CreatedAt.Equal(m.CreatedAt))

		stored, err := f.store.Messages().GetByID(ctx, m.ID)
		req.NoError(err)
		req.Equal("second draft", stored.Content)
		req.NotNil(stored.EditedAt)
		req.Equal(m.SenderID, stored.SenderID)
		req.Equal(m.ChatID, stored.ChatID)
		req.True(stored.CreatedAt.Equal(m.CreatedAt))
	})

	t.Run("staff edits anyone's message", func(t *testing.T) {
		edited, err := f.svc.Edit(ctx, message.ByValue(m), admin, "moderated")
		require.NoError(t, err)
		require.Equal(t, "moderated", edited.Content)
	})

	t.Run("chat creator is not the sender", func(t *testing.T) {
		_, err := f.svc.Edit(ctx, message.ByID(m.ID), alice, "hijack")
		require.ErrorIs(t, err, groupchat_errors.ErrForbidden)
	})

	t.Run("empty content is invalid for every actor", func(t *testing.T) {
		for _, actor := range []user.User{bob, admin, alice} {
			t.Run(actor.Username, func(t *testing.T) {
				_, err := f.svc.Edit(ctx, message.ByID(m.ID), actor, "")
				require.ErrorIs(t, err, groupchat_errors.ErrInvalidInput)
			})
		}
	})

	t.Run("empty content wins over a missing message", func(t *testing.T) {
		_, err := f.svc.Edit(ctx, message.ByID(uuid.New()), bob, "   ")
		require.ErrorIs(t, err, groupchat_errors.ErrInvalidInput)
	})

	t.Run("missing message", func(t *testing.T) {
		_, err := f.svc.Edit(ctx, message.ByID(uuid.New()), bob, "text")
		require.ErrorIs(t, err, groupchat_errors.ErrNotFound)
	})
}

func TestMessageService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("sender deletes", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t, services.DeleteDeniedRaise)
		alice := testutil.CreateUser(t, f.store, "alice", false)
		c := testutil.CreateChat(t, f.store, "room", alice)
		m, err := f.svc.Send(ctx, alice, "oops", c.ID)
		req.NoError(err)

		deleted, err := f.svc.Delete(ctx, message.ByValue(m), alice)
		req.NoError(err)
		req.True(deleted)

		_, err = f.svc.Find(ctx, message.ByID(m.ID))
		req.ErrorIs(err, groupchat_errors.ErrNotFound)
		req.Equal(1, f.logs.FilterMessage("message deleted").Len())
	})

	t.Run("other non-staff user is forbidden", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t, services.DeleteDeniedRaise)
		alice := testutil.CreateUser(t, f.store, "alice", false)
		bob := testutil.CreateUser(t, f.store, "bob", false)
		c := testutil.CreateChat(t, f.store, "room", alice, bob)
		m, err := f.svc.Send(ctx, bob, "mine", c.ID)
		req.NoError(err)

		deleted, err := f.svc.Delete(ctx, message.ByID(m.ID), alice)
		req.ErrorIs(err, groupchat_errors.ErrForbidden)
		req.False(deleted)

		_, err = f.svc.Find(ctx, message.ByID(m.ID))
		req.NoError(err)

		denied := f.logs.FilterMessage("permission denied").All()
		req.Len(denied, 1)
		req.Equal(zapcore.WarnLevel, denied[0].Level)
		req.Equal("message.delete", denied[0].ContextMap()["action"])
	})

	t.Run("silent mode reports false without error", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t, services.DeleteDeniedSilent)
		alice := testutil.CreateUser(t, f.store, "alice", false)
		bob := testutil.CreateUser(t, f.store, "bob", false)
		c := testutil.CreateChat(t, f.store, "room", alice, bob)
		m, err := f.svc.Send(ctx, bob, "mine", c.ID)
		req.NoError(err)

		deleted, err := f.svc.Delete(ctx, message.ByID(m.ID), alice)
		req.NoError(err)
		req.False(deleted)

		_, err = f.svc.Find(ctx, message.ByID(m.ID))
		req.NoError(err)
	})

	t.Run("staff deletes without membership", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t, services.DeleteDeniedRaise)
		alice := testutil.CreateUser(t, f.store, "alice", false)
		admin := testutil.CreateUser(t, f.store, "admin", true)
		c := testutil.CreateChat(t, f.store, "room", alice)
		m, err := f.svc.Send(ctx, alice, "spam", c.ID)
		req.NoError(err)

		deleted, err := f.svc.Delete(ctx, message.ByID(m.ID), admin)
		req.NoError(err)
		req.True(deleted)
	})

	t.Run("missing message reports false", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t, services.DeleteDeniedRaise)
		alice := testutil.CreateUser(t, f.store, "alice", false)

		deleted, err := f.svc.Delete(ctx, message.ByID(uuid.New()), alice)
		req.NoError(err)
		req.False(deleted)
	})

	t.Run("second delete reports false", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t, services.DeleteDeniedRaise)
		alice := testutil.CreateUser(t, f.store, "alice", false)
		c := testutil.CreateChat(t, f.store, "room", alice)
		m, err := f.svc.Send(ctx, alice, "twice", c.ID)
		req.NoError(err)

		deleted, err := f.svc.Delete(ctx, message.ByID(m.ID), alice)
		req.NoError(err)
		req.True(deleted)
		deleted, err = f.svc.Delete(ctx, message.ByID(m.ID), alice)
		req.NoError(err)
		req.False(deleted)
	})

	t.Run("system delete skips authorization", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t, services.DeleteDeniedRaise)
		alice := testutil.CreateUser(t, f.store, "alice", false)
		c := testutil.CreateChat(t, f.store, "room", alice)
		m, err := f.svc.Send(ctx, alice, "cleanup", c.ID)
		req.NoError(err)

		deleted, err := f.svc.DeleteAsSystem(ctx, message.ByID(m.ID))
		req.NoError(err)
		req.True(deleted)

		entries := f.logs.FilterMessage("message deleted").All()
		req.Len(entries, 1)
		req.Equal(true, entries[0].ContextMap()["system"])
	})
}

func TestMessageService_GetAndMarkAsRead(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t, services.DeleteDeniedRaise)
	alice := testutil.CreateUser(t, f.store, "alice", false)
	bob := testutil.CreateUser(t, f.store, "bob", false)
	eve := testutil.CreateUser(t, f.store, "eve", false)
	c := testutil.CreateChat(t, f.store, "room", alice, bob)
	m, err := f.svc.Send(ctx, alice, "read me", c.ID)
	require.NoError(t, err)

	t.Run("member gets the message", func(t *testing.T) {
		got, err := f.svc.Get(ctx, message.ByID(m.ID), bob)
		require.NoError(t, err)
		require.Equal(t, m.ID, got.ID)
	})

	t.Run("outsider cannot get it", func(t *testing.T) {
		_, err := f.svc.Get(ctx, message.ByID(m.ID), eve)
		require.ErrorIs(t, err, groupchat_errors.ErrForbidden)
	})

	t.Run("mark as read is idempotent", func(t *testing.T) {
		req := require.New(t)
		for i := 0; i < 2; i++ {
			got, found, err := f.svc.MarkAsRead(ctx, message.ByID(m.ID), bob)
			req.NoError(err)
			req.True(found)
			req.Equal(m.ID, got.ID)
		}
	})

	t.Run("mark as read of a missing message", func(t *testing.T) {
		_, found, err := f.svc.MarkAsRead(ctx, message.ByID(uuid.New()), bob)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("mark as read by an outsider", func(t *testing.T) {
		_, _, err := f.svc.MarkAsRead(ctx, message.ByID(m.ID), eve)
		require.ErrorIs(t, err, groupchat_errors.ErrForbidden)
	})
}
