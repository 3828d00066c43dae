// Package testutil builds real sqlite-backed stores and fixtures for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"groupchat/internal/domain/chat"
	"groupchat/internal/domain/user"
	"groupchat/internal/repository"
	"groupchat/pkg/database"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database in a temporary directory.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, repository.InitSchema(db))
	return db
}

func NewStore(t testing.TB) *repository.GormStore {
	t.Helper()
	return repository.NewStore(NewDB(t))
}

// NewObservedLogger returns a logger whose entries at level or above are captured.
func NewObservedLogger(level zapcore.Level) (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logger.NewWithCore(core), logs
}

func CreateUser(t testing.TB, store repository.Store, username string, staff bool) user.User {
	t.Helper()
	u := user.User{
		ID:        uuid.New(),
		Username:  username,
		IsStaff:   staff,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Users().Create(context.Background(), &u))
	return u
}

// CreateChat stores a chat owned by creator with exactly the given members.
// The creator is not added to the member set unless listed.
func CreateChat(t testing.TB, store repository.Store, name string, creator user.User, members ...user.User) chat.Chat {
	t.Helper()
	c := chat.Chat{
		ID:        uuid.New(),
		Name:      name,
		CreatorID: creator.ID,
		Members:   members,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Chats().Create(context.Background(), &c))
	got, err := store.Chats().GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	return got
}
