package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"collabdesk/internal/api"
	"collabdesk/internal/domain"
	"collabdesk/internal/events"
	"collabdesk/internal/store"
	collab_errors "collabdesk/pkg/errors"
	pkgevents "collabdesk/pkg/events"
	"collabdesk/pkg/logger"
)

const sendTimeout = 30 * time.Second

// RemoteAPI is the slice of the platform API the lifecycle manager needs.
type RemoteAPI interface {
	SendMessage(ctx context.Context, conversationID string, req api.SendMessageRequest) (api.SendMessageResponse, error)
	MarkConversationRead(ctx context.Context, conversationID string) (api.MarkReadResponse, error)
}

// SendOutcome resolves an optimistic send. On failure the original content
// and attachments come back so the caller can restore the compose box.
type SendOutcome struct {
	Message     domain.Message
	Content     string
	Attachments []domain.Attachment
	Err         error
}

// Manager owns the send pipeline and the message status state machine.
// A send inserts optimistically under a temporary id, then either
// reconciles to the server id and moves to sent, or rolls back entirely.
// Later delivered/read progression arrives as external status-advance
// events; the manager never times messages forward on its own.
type Manager struct {
	messages      *store.MessageStore
	conversations *store.ConversationStore
	remote        RemoteAPI
	bus           *pkgevents.Bus
	logger        *logger.Logger
	self          domain.Identity

	mu     sync.Mutex
	active string

	now func() time.Time
}

func NewManager(messages *store.MessageStore, conversations *store.ConversationStore, remote RemoteAPI, bus *pkgevents.Bus, l *logger.Logger, self domain.Identity) *Manager {
	return &Manager{
		messages:      messages,
		conversations: conversations,
		remote:        remote,
		bus:           bus,
		logger:        l,
		self:          self,
		now:           time.Now,
	}
}

// SetActive records which conversation the user is viewing and marks it
// read. An empty id means no conversation is open.
func (m *Manager) SetActive(conversationID string) {
	m.mu.Lock()
	m.active = conversationID
	m.mu.Unlock()
	if conversationID != "" {
		if err := m.MarkConversationRead(conversationID); err != nil && err != collab_errors.ErrNotFound {
			m.logger.Warnf("mark read on activate %s: %s", conversationID, err)
		}
	}
}

// Active returns the conversation currently being viewed, if any.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Send inserts an optimistic message and issues the remote call. The
// returned message is the immediately visible sending-state entry; the
// channel resolves exactly once with the final outcome.
func (m *Manager) Send(ctx context.Context, conversationID, content string, attachments []domain.Attachment) (domain.Message, <-chan SendOutcome, error) {
	msg := domain.Message{
		ID:             domain.NewPendingID(),
		ConversationID: conversationID,
		SenderID:       m.self.ID,
		SenderName:     m.self.Name,
		SenderAvatar:   m.self.Avatar,
		Content:        content,
		Timestamp:      m.now(),
		IsOwn:          true,
		Status:         domain.StatusSending,
		Attachments:    attachments,
	}
	if !msg.HasContent() {
		return domain.Message{}, nil, collab_errors.ErrEmptyMessage
	}
	if conversationID == "" {
		return domain.Message{}, nil, collab_errors.ErrInvalidInput
	}
	if _, ok := m.conversations.Get(conversationID); !ok {
		// Create-on-demand: the conversation store owns the record even
		// before the platform has told us anything about the other side.
		_ = m.conversations.Upsert(domain.Conversation{ID: conversationID})
	}

	if err := m.messages.Insert(msg); err != nil {
		return domain.Message{}, nil, err
	}
	_ = m.conversations.ApplyMessage(msg, false)
	m.publish(events.EventMessageCreated, msg)

	outcome := make(chan SendOutcome, 1)
	// The send must survive navigation: detach from the caller's
	// cancellation but keep its values.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	go func() {
		defer cancel()
		m.resolveSend(sendCtx, msg, outcome)
	}()
	return msg, outcome, nil
}

func (m *Manager) resolveSend(ctx context.Context, msg domain.Message, outcome chan<- SendOutcome) {
	resp, err := m.remote.SendMessage(ctx, msg.ConversationID, api.SendMessageRequest{
		Content:     msg.Content,
		Attachments: msg.Attachments,
	})
	if err != nil {
		m.rollback(msg, err, outcome)
		return
	}

	tempID := msg.ID.String()
	if err := m.messages.Confirm(tempID, resp.ID); err != nil {
		// The event stream may echo our own message under its server id
		// before the send reply resolves. The confirmed copy wins; drop
		// the optimistic entry so the send does not leave a duplicate
		// stuck in sending.
		if _, exists := m.messages.Get(resp.ID); exists {
			m.messages.Remove(tempID)
		}
		m.logger.Warnf("reconcile %s -> %s: %s", tempID, resp.ID, err)
	}
	status := domain.StatusSent
	if s := domain.Status(resp.Status); s.Valid() && domain.StatusSent.Before(s) {
		status = s
	}
	if _, err := m.messages.AdvanceStatus(resp.ID, status); err != nil && err != collab_errors.ErrNotFound {
		m.logger.Warnf("advance %s to %s: %s", resp.ID, status, err)
	}

	final, _ := m.messages.Get(resp.ID)
	m.publish(events.EventMessageSent, final)
	outcome <- SendOutcome{Message: final}
}

// rollback removes the optimistic message and restores the conversation
// preview from whatever message remains. There is no failed status; the
// caller gets the content back and decides what to re-offer.
func (m *Manager) rollback(msg domain.Message, cause error, outcome chan<- SendOutcome) {
	m.messages.Remove(msg.ID.String())
	if latest, ok := m.messages.Latest(msg.ConversationID); ok {
		_ = m.conversations.SetLastMessage(msg.ConversationID, latest.Preview(), latest.Timestamp)
	} else {
		_ = m.conversations.SetLastMessage(msg.ConversationID, "", time.Time{})
	}
	m.logger.Errorf("send to %s failed, rolled back: %s", msg.ConversationID, cause)
	m.publish(events.EventMessageSendFailed, msg)
	outcome <- SendOutcome{
		Content:     msg.Content,
		Attachments: msg.Attachments,
		Err:         fmt.Errorf("%w: %w", collab_errors.ErrSendFailed, cause),
	}
}

// MarkConversationRead transitions every non-own message below read to
// read and zeroes the unread counter. The platform is informed
// asynchronously; local state does not wait on it.
func (m *Manager) MarkConversationRead(conversationID string) error {
	if _, ok := m.conversations.Get(conversationID); !ok {
		return collab_errors.ErrNotFound
	}
	changed := m.messages.MarkConversationRead(conversationID)
	_ = m.conversations.MarkRead(conversationID)
	m.publish(events.EventConversationRead, conversationID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if _, err := m.remote.MarkConversationRead(ctx, conversationID); err != nil {
			m.logger.Warnf("mark read remote call for %s: %s", conversationID, err)
		}
	}()

	if changed > 0 {
		m.logger.Debugf("marked %d messages read in %s", changed, conversationID)
	}
	return nil
}

// ApplyStatusAdvance applies an external acknowledgment (delivered/read)
// to a message. Regressions are ignored by the store.
func (m *Manager) ApplyStatusAdvance(adv events.StatusAdvance) {
	changed, err := m.messages.AdvanceStatus(adv.MessageID, adv.Status)
	if err != nil {
		if err != collab_errors.ErrNotFound {
			m.logger.Warnf("status advance %s: %s", adv.MessageID, err)
		}
		return
	}
	if !changed {
		return
	}
	msg, _ := m.messages.Get(adv.MessageID)
	switch adv.Status {
	case domain.StatusRead:
		m.publish(events.EventMessageRead, msg)
	case domain.StatusDelivered:
		m.publish(events.EventMessageDelivered, msg)
	}
}

// ApplyRemoteMessage folds a message from the event source (or a poll)
// into the stores. Duplicates are dropped by id; the unread counter only
// moves for conversations the user is not viewing.
func (m *Manager) ApplyRemoteMessage(conversationID string, rm events.RemoteMessage) {
	status := domain.Status(rm.Status)
	if !status.Valid() {
		status = domain.StatusDelivered
	}
	msg := domain.Message{
		ID:             domain.ConfirmedID(rm.ID),
		ConversationID: conversationID,
		SenderID:       rm.SenderID,
		SenderName:     rm.SenderName,
		SenderAvatar:   rm.SenderAvatar,
		Content:        rm.Content,
		Timestamp:      rm.Timestamp,
		IsOwn:          rm.SenderID == m.self.ID,
		Status:         status,
		Attachments:    rm.Attachments,
	}
	if !msg.HasContent() {
		return
	}
	if _, ok := m.conversations.Get(conversationID); !ok {
		_ = m.conversations.Upsert(domain.Conversation{
			ID:                conversationID,
			ParticipantID:     rm.SenderID,
			ParticipantName:   rm.SenderName,
			ParticipantAvatar: rm.SenderAvatar,
		})
	}
	if err := m.messages.Insert(msg); err != nil {
		if err != collab_errors.ErrAlreadyExists {
			m.logger.Warnf("apply remote message %s: %s", rm.ID, err)
		}
		return
	}
	increment := !msg.IsOwn && m.Active() != conversationID
	_ = m.conversations.ApplyMessage(msg, increment)
	m.publish(events.EventMessageCreated, msg)
}

func (m *Manager) publish(kind string, payload interface{}) {
	m.bus.Publish(pkgevents.Event{Kind: kind, Timestamp: m.now(), Payload: payload})
}
