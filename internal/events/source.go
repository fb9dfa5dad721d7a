package events

import (
	"context"
	"encoding/json"
	"time"

	"collabdesk/internal/domain"
)

// RemoteKind discriminates events arriving from the platform's stream.
type RemoteKind string

const (
	RemoteMessageNew    RemoteKind = "message.new"
	RemoteStatusAdvance RemoteKind = "message.status"
	RemoteTyping        RemoteKind = "typing"
)

// RemoteMessage is a message authored by the remote participant.
type RemoteMessage struct {
	ID           string              `json:"id"`
	SenderID     string              `json:"sender_id"`
	SenderName   string              `json:"sender_name"`
	SenderAvatar string              `json:"sender_avatar,omitempty"`
	Content      string              `json:"content"`
	Timestamp    time.Time           `json:"timestamp"`
	Status       string              `json:"status"`
	Attachments  []domain.Attachment `json:"attachments,omitempty"`
}

// StatusAdvance acknowledges progress of a previously sent message.
type StatusAdvance struct {
	MessageID string        `json:"message_id"`
	Status    domain.Status `json:"status"`
}

// TypingSignal reports the remote participant's typing state. A started
// signal without a matching stop is time-boxed by the typing coordinator.
type TypingSignal struct {
	Started bool `json:"started"`
}

// RemoteEvent is the union of everything an event source can deliver.
// Exactly one of Message, Status, Typing is set, per Kind.
type RemoteEvent struct {
	Kind           RemoteKind     `json:"kind"`
	ConversationID string         `json:"conversation_id"`
	OccurredAt     time.Time      `json:"occurred_at"`
	Message        *RemoteMessage `json:"message,omitempty"`
	Status         *StatusAdvance `json:"status,omitempty"`
	Typing         *TypingSignal  `json:"typing,omitempty"`
}

// Envelope is the wire frame of the platform event stream.
type Envelope struct {
	EventType      string          `json:"event_type"`
	ConversationID string          `json:"conversation_id"`
	OccurredAt     time.Time       `json:"occurred_at"`
	Payload        json.RawMessage `json:"payload"`
}

// Source delivers remote activity (peer messages, status acknowledgments,
// typing signals) asynchronously. The engine consumes any Source the same
// way, whether it is push-based or poll-based.
type Source interface {
	// Start begins delivery. The source owns its goroutines and stops
	// when ctx is cancelled.
	Start(ctx context.Context) error
	// Events is the delivery channel. It is closed when the source stops.
	Events() <-chan RemoteEvent
}

// DecodeEnvelope maps a wire frame onto a RemoteEvent. Unknown event
// types yield ok=false and are skipped by the consumer.
func DecodeEnvelope(env Envelope) (RemoteEvent, bool) {
	evt := RemoteEvent{
		ConversationID: env.ConversationID,
		OccurredAt:     env.OccurredAt,
	}
	switch env.EventType {
	case "message.created":
		var msg RemoteMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return RemoteEvent{}, false
		}
		evt.Kind = RemoteMessageNew
		evt.Message = &msg
	case "receipt.delivered", "receipt.read":
		var adv StatusAdvance
		if err := json.Unmarshal(env.Payload, &adv); err != nil {
			return RemoteEvent{}, false
		}
		if adv.Status == "" {
			if env.EventType == "receipt.read" {
				adv.Status = domain.StatusRead
			} else {
				adv.Status = domain.StatusDelivered
			}
		}
		evt.Kind = RemoteStatusAdvance
		evt.Status = &adv
	case "typing.started", "typing.stopped":
		evt.Kind = RemoteTyping
		evt.Typing = &TypingSignal{Started: env.EventType == "typing.started"}
	default:
		return RemoteEvent{}, false
	}
	return evt, true
}
