package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabdesk/internal/domain"
	collab_errors "collabdesk/pkg/errors"
)

func TestListOrdersByLastMessageTimeDesc(t *testing.T) {
	s := NewConversationStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Upsert(domain.Conversation{ID: "old", LastMessageTime: base}))
	require.NoError(t, s.Upsert(domain.Conversation{ID: "new", LastMessageTime: base.Add(time.Hour)}))
	require.NoError(t, s.Upsert(domain.Conversation{ID: "mid", LastMessageTime: base.Add(time.Minute)}))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)
}

func TestListTieBreaksByID(t *testing.T) {
	s := NewConversationStore()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Upsert(domain.Conversation{ID: "b", LastMessageTime: at}))
	require.NoError(t, s.Upsert(domain.Conversation{ID: "a", LastMessageTime: at}))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}

func TestUpsertRejectsEmptyID(t *testing.T) {
	s := NewConversationStore()
	err := s.Upsert(domain.Conversation{})
	assert.ErrorIs(t, err, collab_errors.ErrInvalidInput)
}

func TestApplyMessageMovesPreviewForwardOnly(t *testing.T) {
	s := NewConversationStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Upsert(domain.Conversation{ID: "c1", LastMessage: "current", LastMessageTime: base}))

	older := domain.Message{
		ID:             domain.ConfirmedID("m1"),
		ConversationID: "c1",
		Content:        "from history",
		Timestamp:      base.Add(-time.Hour),
		Status:         domain.StatusRead,
	}
	require.NoError(t, s.ApplyMessage(older, false))

	c, _ := s.Get("c1")
	assert.Equal(t, "current", c.LastMessage, "an older message must not rewind the preview")

	newer := older
	newer.ID = domain.ConfirmedID("m2")
	newer.Content = "fresh"
	newer.Timestamp = base.Add(time.Hour)
	require.NoError(t, s.ApplyMessage(newer, true))

	c, _ = s.Get("c1")
	assert.Equal(t, "fresh", c.LastMessage)
	assert.Equal(t, 1, c.UnreadCount)
}

func TestMarkReadZeroesUnread(t *testing.T) {
	s := NewConversationStore()
	require.NoError(t, s.Upsert(domain.Conversation{ID: "c1", UnreadCount: 5}))

	require.NoError(t, s.MarkRead("c1"))
	c, _ := s.Get("c1")
	assert.Zero(t, c.UnreadCount)

	assert.ErrorIs(t, s.MarkRead("missing"), collab_errors.ErrNotFound)
}

func TestSetTyping(t *testing.T) {
	s := NewConversationStore()
	require.NoError(t, s.Upsert(domain.Conversation{ID: "c1"}))

	require.NoError(t, s.SetTyping("c1", true))
	c, _ := s.Get("c1")
	assert.True(t, c.IsTyping)

	require.NoError(t, s.SetTyping("c1", false))
	c, _ = s.Get("c1")
	assert.False(t, c.IsTyping)

	assert.ErrorIs(t, s.SetTyping("missing", true), collab_errors.ErrNotFound)
}

func TestSetLastMessageOverwrites(t *testing.T) {
	s := NewConversationStore()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Upsert(domain.Conversation{ID: "c1", LastMessage: "rolled back", LastMessageTime: at}))

	require.NoError(t, s.SetLastMessage("c1", "previous", at.Add(-time.Hour)))
	c, _ := s.Get("c1")
	assert.Equal(t, "previous", c.LastMessage)
	assert.Equal(t, at.Add(-time.Hour), c.LastMessageTime)
}
