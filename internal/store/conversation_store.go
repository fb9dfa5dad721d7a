package store

import (
	"sort"
	"sync"
	"time"

	"collabdesk/internal/domain"
	collab_errors "collabdesk/pkg/errors"
)

// ConversationStore keeps one record per conversation. Mutations are
// synchronous and immediately visible to subsequent reads; asynchronous
// behavior lives in the managers that call it.
type ConversationStore struct {
	mu    sync.Mutex
	items map[string]domain.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{items: make(map[string]domain.Conversation)}
}

// List returns all conversations ordered by last message time descending.
func (s *ConversationStore) List() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Conversation, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageTime.Equal(out[j].LastMessageTime) {
			return out[i].LastMessageTime.After(out[j].LastMessageTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *ConversationStore) Get(id string) (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	return c, ok
}

func (s *ConversationStore) Upsert(conv domain.Conversation) error {
	if conv.ID == "" {
		return collab_errors.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[conv.ID] = conv
	return nil
}

// MarkRead zeroes the unread counter.
func (s *ConversationStore) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return collab_errors.ErrNotFound
	}
	c.UnreadCount = 0
	s.items[id] = c
	return nil
}

func (s *ConversationStore) SetTyping(id string, typing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return collab_errors.ErrNotFound
	}
	c.IsTyping = typing
	s.items[id] = c
	return nil
}

// ApplyMessage re-derives the conversation record from a newly stored
// message: preview and last-message time move forward, and the unread
// counter increments when asked (remote message in a conversation the
// user is not viewing).
func (s *ConversationStore) ApplyMessage(msg domain.Message, incrementUnread bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[msg.ConversationID]
	if !ok {
		return collab_errors.ErrNotFound
	}
	if !msg.Timestamp.Before(c.LastMessageTime) {
		c.LastMessage = msg.Preview()
		c.LastMessageTime = msg.Timestamp
	}
	if incrementUnread {
		c.UnreadCount++
	}
	s.items[msg.ConversationID] = c
	return nil
}

// SetLastMessage overwrites the preview fields, used after a rollback
// removed the message the preview was derived from.
func (s *ConversationStore) SetLastMessage(id, preview string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return collab_errors.ErrNotFound
	}
	c.LastMessage = preview
	c.LastMessageTime = at
	s.items[id] = c
	return nil
}
