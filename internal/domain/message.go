package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the delivery status of a message. Transitions are strictly
// forward: sending -> sent -> delivered -> read.
type Status string

const (
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

var statusRank = map[Status]int{
	StatusSending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

func (s Status) Rank() int {
	return statusRank[s]
}

// Before reports whether s precedes other in the delivery lifecycle.
func (s Status) Before(other Status) bool {
	return statusRank[s] < statusRank[other]
}

// MessageID identifies a message. A message created by an optimistic local
// send carries a client-generated temporary id until the server acknowledges
// the send, at which point it is reconciled to the server-assigned id.
type MessageID struct {
	value     string
	confirmed bool
}

// NewPendingID returns a fresh temporary id for an unacknowledged send.
func NewPendingID() MessageID {
	return MessageID{value: "tmp-" + uuid.NewString()}
}

// ConfirmedID wraps a server-assigned message id.
func ConfirmedID(id string) MessageID {
	return MessageID{value: id, confirmed: true}
}

func (m MessageID) String() string {
	return m.value
}

// Confirmed reports whether the id is server-assigned.
func (m MessageID) Confirmed() bool {
	return m.confirmed
}

func (m MessageID) IsZero() bool {
	return m.value == ""
}

type Message struct {
	ID             MessageID    `json:"-"`
	ConversationID string       `json:"conversation_id"`
	SenderID       string       `json:"sender_id"`
	SenderName     string       `json:"sender_name"`
	SenderAvatar   string       `json:"sender_avatar,omitempty"`
	Content        string       `json:"content"`
	Timestamp      time.Time    `json:"timestamp"`
	IsOwn          bool         `json:"is_own"`
	Status         Status       `json:"status"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

// HasContent reports whether the message carries non-blank text or at
// least one attachment. Messages failing this check must never enter
// the store.
func (m Message) HasContent() bool {
	return strings.TrimSpace(m.Content) != "" || len(m.Attachments) > 0
}

// Preview is the text shown as a conversation's last-message line.
func (m Message) Preview() string {
	if trimmed := strings.TrimSpace(m.Content); trimmed != "" {
		return trimmed
	}
	if len(m.Attachments) > 0 {
		return m.Attachments[0].Name
	}
	return ""
}
