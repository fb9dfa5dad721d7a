package store

import (
	"sort"
	"sync"

	"collabdesk/internal/domain"
	collab_errors "collabdesk/pkg/errors"
)

type messageEntry struct {
	msg domain.Message
	seq uint64
}

// MessageStore holds the ordered message history per conversation. It is
// the single source of truth for message content, status and attachments.
// Within a conversation messages are ordered by timestamp; insertion order
// breaks ties so two optimistic sends issued back to back keep their call
// order regardless of which acknowledgment lands first.
type MessageStore struct {
	mu      sync.Mutex
	byConv  map[string][]messageEntry
	convOf  map[string]string
	nextSeq uint64
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		byConv: make(map[string][]messageEntry),
		convOf: make(map[string]string),
	}
}

// Insert adds a message in timestamp order. Duplicate ids are rejected.
func (s *MessageStore) Insert(msg domain.Message) error {
	if msg.ID.IsZero() || msg.ConversationID == "" {
		return collab_errors.ErrInvalidInput
	}
	if !msg.Status.Valid() {
		return collab_errors.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.convOf[msg.ID.String()]; exists {
		return collab_errors.ErrAlreadyExists
	}
	s.insertLocked(msg)
	return nil
}

func (s *MessageStore) insertLocked(msg domain.Message) {
	entry := messageEntry{msg: msg, seq: s.nextSeq}
	s.nextSeq++
	list := s.byConv[msg.ConversationID]
	pos := sort.Search(len(list), func(i int) bool {
		if !list[i].msg.Timestamp.Equal(entry.msg.Timestamp) {
			return list[i].msg.Timestamp.After(entry.msg.Timestamp)
		}
		return list[i].seq > entry.seq
	})
	list = append(list, messageEntry{})
	copy(list[pos+1:], list[pos:])
	list[pos] = entry
	s.byConv[msg.ConversationID] = list
	s.convOf[msg.ID.String()] = msg.ConversationID
}

// Get returns a message by its current id.
func (s *MessageStore) Get(id string) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, _, ok := s.findLocked(id)
	if !ok {
		return domain.Message{}, false
	}
	return entry.msg, true
}

// Remove deletes a message outright and returns it. Used for rollback of
// a failed optimistic send.
func (s *MessageStore) Remove(id string) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	convID, ok := s.convOf[id]
	if !ok {
		return domain.Message{}, false
	}
	list := s.byConv[convID]
	for i := range list {
		if list[i].msg.ID.String() == id {
			removed := list[i].msg
			s.byConv[convID] = append(list[:i], list[i+1:]...)
			delete(s.convOf, id)
			return removed, true
		}
	}
	return domain.Message{}, false
}

// Confirm reconciles a pending message to its server-assigned id. The
// message keeps its position, timestamp and attachments; only the identity
// changes. Confirming onto an id that already exists is a conflict.
func (s *MessageStore) Confirm(tempID, serverID string) error {
	if serverID == "" {
		return collab_errors.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.convOf[serverID]; taken {
		return collab_errors.ErrConflict
	}
	entry, idx, ok := s.findLocked(tempID)
	if !ok {
		return collab_errors.ErrNotFound
	}
	if entry.msg.ID.Confirmed() {
		return collab_errors.ErrConflict
	}
	convID := entry.msg.ConversationID
	s.byConv[convID][idx].msg.ID = domain.ConfirmedID(serverID)
	delete(s.convOf, tempID)
	s.convOf[serverID] = convID
	return nil
}

// AdvanceStatus moves a message's status forward. Attempts to regress are
// no-ops; the status machine is monotonic. Returns whether anything changed.
func (s *MessageStore) AdvanceStatus(id string, status domain.Status) (bool, error) {
	if !status.Valid() {
		return false, collab_errors.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, idx, ok := s.findLocked(id)
	if !ok {
		return false, collab_errors.ErrNotFound
	}
	if !entry.msg.Status.Before(status) {
		return false, nil
	}
	s.byConv[entry.msg.ConversationID][idx].msg.Status = status
	return true, nil
}

// MarkConversationRead advances every non-own message below read to read.
// Returns how many messages changed.
func (s *MessageStore) MarkConversationRead(convID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	list := s.byConv[convID]
	for i := range list {
		if list[i].msg.IsOwn {
			continue
		}
		if list[i].msg.Status.Before(domain.StatusRead) {
			list[i].msg.Status = domain.StatusRead
			changed++
		}
	}
	return changed
}

// List returns the conversation's messages oldest to newest.
func (s *MessageStore) List(convID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byConv[convID]
	out := make([]domain.Message, len(list))
	for i := range list {
		out[i] = list[i].msg
	}
	return out
}

// Latest returns the most recent message of a conversation, if any.
func (s *MessageStore) Latest(convID string) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byConv[convID]
	if len(list) == 0 {
		return domain.Message{}, false
	}
	return list[len(list)-1].msg, true
}

// MergeOlder folds a history page into the conversation window, skipping
// ids already present. Merging the same page twice is a no-op. Returns
// the number of messages actually added.
func (s *MessageStore) MergeOlder(convID string, msgs []domain.Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, msg := range msgs {
		if msg.ID.IsZero() || msg.ConversationID != convID {
			continue
		}
		if _, exists := s.convOf[msg.ID.String()]; exists {
			continue
		}
		s.insertLocked(msg)
		added++
	}
	return added
}

func (s *MessageStore) findLocked(id string) (messageEntry, int, bool) {
	convID, ok := s.convOf[id]
	if !ok {
		return messageEntry{}, 0, false
	}
	list := s.byConv[convID]
	for i := range list {
		if list[i].msg.ID.String() == id {
			return list[i], i, true
		}
	}
	return messageEntry{}, 0, false
}
