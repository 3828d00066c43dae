package chat

import (
	"testing"

	"groupchat/internal/domain/user"
	groupchat_errors "groupchat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestChatMembership(t *testing.T) {
	creator, member, outsider := uuid.New(), uuid.New(), uuid.New()
	c := Chat{ID: uuid.New(), Name: "room", CreatorID: creator, Members: []user.User{{ID: member}, {ID: creator}}}

	t.Run("creator and members are members", func(t *testing.T) {
		require.True(t, c.IsMember(creator))
		require.True(t, c.IsMember(member))
		require.False(t, c.IsMember(outsider))
	})

	t.Run("creator counts even outside the member set", func(t *testing.T) {
		alone := Chat{CreatorID: creator}
		require.True(t, alone.IsMember(creator))
		require.Equal(t, []uuid.UUID{creator}, alone.AudienceIDs())
	})

	t.Run("audience has no duplicates", func(t *testing.T) {
		require.Equal(t, []uuid.UUID{creator, member}, c.AudienceIDs())
	})
}

func TestChatValidate(t *testing.T) {
	require.NoError(t, Chat{Name: "ok"}.Validate())

	err := Chat{}.Validate()
	require.ErrorIs(t, err, groupchat_errors.ErrValidation)
	var verr *groupchat_errors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "required", verr.Fields["name"])
}
