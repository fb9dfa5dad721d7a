package api

import (
	"time"

	"collabdesk/internal/domain"
)

// Wire shapes for the collaboration platform REST API. The platform owns
// all durable state; these mirror what it returns.

type ConversationPage struct {
	Conversations []Conversation `json:"conversations"`
	NextCursor    string         `json:"next_cursor,omitempty"`
	HasMore       bool           `json:"has_more"`
}

type Conversation struct {
	ID                string    `json:"id"`
	ParticipantID     string    `json:"participant_id"`
	ParticipantName   string    `json:"participant_name"`
	ParticipantAvatar string    `json:"participant_avatar,omitempty"`
	LastMessage       string    `json:"last_message"`
	LastMessageTime   time.Time `json:"last_message_time"`
	UnreadCount       int       `json:"unread_count"`
}

type CreateConversationRequest struct {
	ParticipantID  string `json:"participant_id"`
	InitialMessage string `json:"initial_message,omitempty"`
}

type MessagePage struct {
	Messages   []Message `json:"messages"`
	NextCursor string    `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
	// Order is "asc" or "desc"; the history loader normalizes to asc.
	Order string `json:"order,omitempty"`
}

type Message struct {
	ID           string              `json:"id"`
	SenderID     string              `json:"sender_id"`
	SenderName   string              `json:"sender_name"`
	SenderAvatar string              `json:"sender_avatar,omitempty"`
	Content      string              `json:"content"`
	Timestamp    time.Time           `json:"timestamp"`
	Status       string              `json:"status"`
	Attachments  []domain.Attachment `json:"attachments,omitempty"`
}

type SendMessageRequest struct {
	Content     string              `json:"content"`
	Attachments []domain.Attachment `json:"attachments,omitempty"`
}

// SendMessageResponse carries the authoritative identity of an accepted send.
type SendMessageResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type MarkReadResponse struct {
	MessagesRead int `json:"messages_read"`
}

type NotificationCount struct {
	Count int `json:"count"`
}

type NotificationList struct {
	Notifications []domain.Notification `json:"notifications"`
}

// ToDomain converts a wire message into the store entity. Identity is
// always server-confirmed on this path.
func (m Message) ToDomain(conversationID, localUserID string) domain.Message {
	status := domain.Status(m.Status)
	if !status.Valid() {
		status = domain.StatusDelivered
	}
	return domain.Message{
		ID:             domain.ConfirmedID(m.ID),
		ConversationID: conversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		SenderAvatar:   m.SenderAvatar,
		Content:        m.Content,
		Timestamp:      m.Timestamp,
		IsOwn:          m.SenderID == localUserID,
		Status:         status,
		Attachments:    m.Attachments,
	}
}

// ToDomain converts a wire conversation into the store entity.
func (c Conversation) ToDomain() domain.Conversation {
	return domain.Conversation{
		ID:                c.ID,
		ParticipantID:     c.ParticipantID,
		ParticipantName:   c.ParticipantName,
		ParticipantAvatar: c.ParticipantAvatar,
		LastMessage:       c.LastMessage,
		LastMessageTime:   c.LastMessageTime,
		UnreadCount:       c.UnreadCount,
	}
}
