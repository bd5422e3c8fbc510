package event

import (
	"encoding/json"
	"testing"
	"time"

	"notify-lab/domain"
	"notify-lab/errors"

	"github.com/stretchr/testify/require"
)

func chat(id int64, members ...domain.UserID) domain.Chat {
	return domain.Chat{
		ID:          id,
		WorkspaceID: 1,
		Name:        "general",
		Type:        "group",
		Members:     members,
		CreatedAt:   time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
}

func mutationPayload(t *testing.T, op string, old, new *domain.Chat) string {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"op": op, "old": old, "new": new})
	require.NoError(t, err)
	return string(payload)
}

func TestDecode_ChatUpdated_Insert(t *testing.T) {
	req := require.New(t)
	newChat := chat(7, 1, 2, 3)

	// When an INSERT mutation arrives
	n, err := Decode(ChannelChatUpdated, mutationPayload(t, "INSERT", nil, &newChat))

	// Then the event is NewChat(new) and every new member is affected
	req.NoError(err)
	req.NotNil(n)
	req.Equal(NewChat{Chat: newChat}, n.Event)
	req.Equal(domain.NewUserSet(1, 2, 3), n.Users)
}

func TestDecode_ChatUpdated_Update_MembershipChanged(t *testing.T) {
	req := require.New(t)
	oldChat := chat(7, 1, 2, 3)
	newChat := chat(7, 1, 2, 4)

	// When an UPDATE mutation changes the member set
	n, err := Decode(ChannelChatUpdated, mutationPayload(t, "UPDATE", &oldChat, &newChat))

	// Then the union of both member sets is affected
	// And the event carries the old snapshot
	req.NoError(err)
	req.NotNil(n)
	req.Equal(AddToChat{Chat: oldChat}, n.Event)
	req.Equal(domain.NewUserSet(1, 2, 3, 4), n.Users)
}

func TestDecode_ChatUpdated_Update_IdenticalMembers(t *testing.T) {
	req := require.New(t)
	oldChat := chat(7, 1, 2, 3)
	newChat := chat(7, 3, 2, 1)
	newChat.Name = "renamed"

	// When an UPDATE mutation leaves the member set unchanged (order is irrelevant)
	n, err := Decode(ChannelChatUpdated, mutationPayload(t, "UPDATE", &oldChat, &newChat))

	// Then nothing is dispatched and no error is raised
	req.NoError(err)
	req.Nil(n)
}

func TestDecode_ChatUpdated_Delete(t *testing.T) {
	req := require.New(t)
	oldChat := chat(7, 1, 2)

	// When a DELETE mutation arrives
	n, err := Decode(ChannelChatUpdated, mutationPayload(t, "DELETE", &oldChat, nil))

	// Then the event is RemoveFromChat(old) and every old member is affected
	req.NoError(err)
	req.NotNil(n)
	req.Equal(RemoveFromChat{Chat: oldChat}, n.Event)
	req.Equal(domain.NewUserSet(1, 2), n.Users)
}

func TestDecode_ChatUpdated_UnknownOperation(t *testing.T) {
	req := require.New(t)
	oldChat := chat(7, 1)

	n, err := Decode(ChannelChatUpdated, mutationPayload(t, "TRUNCATE", &oldChat, nil))

	req.ErrorIs(err, errors.ErrUnknownOperation)
	req.Nil(n)
}

func TestDecode_ChatUpdated_MissingBothRows(t *testing.T) {
	req := require.New(t)

	n, err := Decode(ChannelChatUpdated, mutationPayload(t, "UPDATE", nil, nil))

	req.ErrorIs(err, errors.ErrMalformedPayload)
	req.Nil(n)
}

func TestDecode_ChatUpdated_MalformedJSON(t *testing.T) {
	req := require.New(t)

	n, err := Decode(ChannelChatUpdated, `{"op": "INSERT", "new": `)

	req.ErrorIs(err, errors.ErrMalformedPayload)
	req.Nil(n)
}

func TestDecode_MessageCreated(t *testing.T) {
	req := require.New(t)
	msg := domain.Message{
		ID:        10,
		ChatID:    5,
		SenderID:  1,
		Content:   "hello",
		CreatedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
	payload, err := json.Marshal(map[string]any{"message": msg, "members": []domain.UserID{1, 2, 2}})
	req.NoError(err)

	// When a message notification arrives with a duplicated member
	n, err := Decode(ChannelMessageCreated, string(payload))

	// Then duplicates collapse into the affected set
	req.NoError(err)
	req.NotNil(n)
	req.Equal(NewMessage{Message: msg}, n.Event)
	req.Equal(domain.NewUserSet(1, 2), n.Users)
	req.False(n.Users.Contains(3))
}

func TestDecode_MessageCreated_MalformedJSON(t *testing.T) {
	req := require.New(t)

	n, err := Decode(ChannelMessageCreated, `not json at all`)

	req.ErrorIs(err, errors.ErrMalformedPayload)
	req.Nil(n)
}

func TestDecode_UnknownChannel(t *testing.T) {
	req := require.New(t)

	n, err := Decode("presence_changed", `{}`)

	req.ErrorIs(err, errors.ErrUnknownChannel)
	req.Nil(n)
}
