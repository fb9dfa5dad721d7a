package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabdesk/internal/domain"
	collab_errors "collabdesk/pkg/errors"
)

func newMessage(id, convID, content string, at time.Time, status domain.Status) domain.Message {
	return domain.Message{
		ID:             domain.ConfirmedID(id),
		ConversationID: convID,
		SenderID:       "other",
		SenderName:     "Other",
		Content:        content,
		Timestamp:      at,
		Status:         status,
	}
}

func TestInsertOrdersByTimestamp(t *testing.T) {
	s := NewMessageStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(newMessage("m2", "c1", "second", base.Add(time.Minute), domain.StatusDelivered)))
	require.NoError(t, s.Insert(newMessage("m1", "c1", "first", base, domain.StatusDelivered)))
	require.NoError(t, s.Insert(newMessage("m3", "c1", "third", base.Add(2*time.Minute), domain.StatusDelivered)))

	list := s.List("c1")
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
	assert.Equal(t, "third", list[2].Content)
}

func TestInsertionOrderBreaksTimestampTies(t *testing.T) {
	s := NewMessageStore()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(newMessage("a", "c1", "sent first", at, domain.StatusSending)))
	require.NoError(t, s.Insert(newMessage("b", "c1", "sent second", at, domain.StatusSending)))

	list := s.List("c1")
	require.Len(t, list, 2)
	assert.Equal(t, "sent first", list[0].Content)
	assert.Equal(t, "sent second", list[1].Content)
}

func TestInsertRejectsDuplicates(t *testing.T) {
	s := NewMessageStore()
	msg := newMessage("m1", "c1", "hello", time.Now(), domain.StatusDelivered)

	require.NoError(t, s.Insert(msg))
	err := s.Insert(msg)
	assert.ErrorIs(t, err, collab_errors.ErrAlreadyExists)
	assert.Len(t, s.List("c1"), 1)
}

func TestConfirmKeepsPositionAndTimestamp(t *testing.T) {
	s := NewMessageStore()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	pendingID := domain.NewPendingID()
	pending := domain.Message{
		ID:             pendingID,
		ConversationID: "c1",
		Content:        "mine",
		Timestamp:      at,
		IsOwn:          true,
		Status:         domain.StatusSending,
	}
	require.NoError(t, s.Insert(newMessage("m0", "c1", "earlier", at.Add(-time.Minute), domain.StatusRead)))
	require.NoError(t, s.Insert(pending))

	require.NoError(t, s.Confirm(pendingID.String(), "srv-1"))

	_, ok := s.Get(pendingID.String())
	assert.False(t, ok, "temporary id should no longer resolve")

	got, ok := s.Get("srv-1")
	require.True(t, ok)
	assert.True(t, got.ID.Confirmed())
	assert.Equal(t, at, got.Timestamp)

	list := s.List("c1")
	require.Len(t, list, 2)
	assert.Equal(t, "srv-1", list[1].ID.String())
}

func TestConfirmConflicts(t *testing.T) {
	s := NewMessageStore()
	pendingID := domain.NewPendingID()
	require.NoError(t, s.Insert(domain.Message{
		ID:             pendingID,
		ConversationID: "c1",
		Content:        "mine",
		Timestamp:      time.Now(),
		Status:         domain.StatusSending,
	}))
	require.NoError(t, s.Insert(newMessage("srv-1", "c1", "theirs", time.Now(), domain.StatusRead)))

	err := s.Confirm(pendingID.String(), "srv-1")
	assert.ErrorIs(t, err, collab_errors.ErrConflict)

	err = s.Confirm("unknown", "srv-2")
	assert.ErrorIs(t, err, collab_errors.ErrNotFound)

	err = s.Confirm("srv-1", "srv-3")
	assert.ErrorIs(t, err, collab_errors.ErrConflict, "re-confirming a confirmed message must conflict")
}

func TestAdvanceStatusIsMonotonic(t *testing.T) {
	s := NewMessageStore()
	require.NoError(t, s.Insert(newMessage("m1", "c1", "hello", time.Now(), domain.StatusSent)))

	changed, err := s.AdvanceStatus("m1", domain.StatusRead)
	require.NoError(t, err)
	assert.True(t, changed)

	// A late delivered receipt must not regress read.
	changed, err = s.AdvanceStatus("m1", domain.StatusDelivered)
	require.NoError(t, err)
	assert.False(t, changed)

	got, _ := s.Get("m1")
	assert.Equal(t, domain.StatusRead, got.Status)
}

func TestAdvanceStatusErrors(t *testing.T) {
	s := NewMessageStore()

	_, err := s.AdvanceStatus("missing", domain.StatusRead)
	assert.ErrorIs(t, err, collab_errors.ErrNotFound)

	require.NoError(t, s.Insert(newMessage("m1", "c1", "hello", time.Now(), domain.StatusSent)))
	_, err = s.AdvanceStatus("m1", domain.Status("bogus"))
	assert.ErrorIs(t, err, collab_errors.ErrInvalidInput)
}

func TestMarkConversationReadSkipsOwnMessages(t *testing.T) {
	s := NewMessageStore()
	at := time.Now()

	own := newMessage("mine", "c1", "mine", at, domain.StatusSent)
	own.IsOwn = true
	require.NoError(t, s.Insert(own))
	require.NoError(t, s.Insert(newMessage("m1", "c1", "one", at.Add(time.Second), domain.StatusDelivered)))
	require.NoError(t, s.Insert(newMessage("m2", "c1", "two", at.Add(2*time.Second), domain.StatusRead)))

	changed := s.MarkConversationRead("c1")
	assert.Equal(t, 1, changed, "only the unread non-own message should change")

	got, _ := s.Get("mine")
	assert.Equal(t, domain.StatusSent, got.Status, "own message status is driven by receipts, not local reads")
}

func TestRemoveReturnsMessage(t *testing.T) {
	s := NewMessageStore()
	require.NoError(t, s.Insert(newMessage("m1", "c1", "hello", time.Now(), domain.StatusSending)))

	removed, ok := s.Remove("m1")
	require.True(t, ok)
	assert.Equal(t, "hello", removed.Content)
	assert.Empty(t, s.List("c1"))

	_, ok = s.Remove("m1")
	assert.False(t, ok)
}

func TestMergeOlderIsIdempotent(t *testing.T) {
	s := NewMessageStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Insert(newMessage("m3", "c1", "newest", base.Add(2*time.Hour), domain.StatusRead)))

	page := []domain.Message{
		newMessage("m1", "c1", "oldest", base, domain.StatusRead),
		newMessage("m2", "c1", "middle", base.Add(time.Hour), domain.StatusRead),
	}

	added := s.MergeOlder("c1", page)
	assert.Equal(t, 2, added)

	// Re-merging the same page adds nothing and changes nothing.
	added = s.MergeOlder("c1", page)
	assert.Equal(t, 0, added)

	list := s.List("c1")
	require.Len(t, list, 3)
	assert.Equal(t, "oldest", list[0].Content)
	assert.Equal(t, "middle", list[1].Content)
	assert.Equal(t, "newest", list[2].Content)
}

func TestLatest(t *testing.T) {
	s := NewMessageStore()

	_, ok := s.Latest("c1")
	assert.False(t, ok)

	base := time.Now()
	require.NoError(t, s.Insert(newMessage("m1", "c1", "first", base, domain.StatusRead)))
	require.NoError(t, s.Insert(newMessage("m2", "c1", "last", base.Add(time.Minute), domain.StatusRead)))

	latest, ok := s.Latest("c1")
	require.True(t, ok)
	assert.Equal(t, "last", latest.Content)
}
