package httpdto

import (
	"time"

	"collabdesk/internal/domain"
)

type MessageResponse struct {
	ID           string              `json:"id"`
	Pending      bool                `json:"pending"`
	SenderID     string              `json:"sender_id"`
	SenderName   string              `json:"sender_name"`
	SenderAvatar string              `json:"sender_avatar,omitempty"`
	Content      string              `json:"content"`
	Timestamp    time.Time           `json:"timestamp"`
	IsOwn        bool                `json:"is_own"`
	Status       domain.Status       `json:"status"`
	Attachments  []domain.Attachment `json:"attachments,omitempty"`
}

func FromMessage(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:           m.ID.String(),
		Pending:      !m.ID.Confirmed(),
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		SenderAvatar: m.SenderAvatar,
		Content:      m.Content,
		Timestamp:    m.Timestamp,
		IsOwn:        m.IsOwn,
		Status:       m.Status,
		Attachments:  m.Attachments,
	}
}

func FromMessageSlice(items []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, FromMessage(m))
	}
	return out
}

type SendMessageRequest struct {
	Content     string              `json:"content"`
	Attachments []domain.Attachment `json:"attachments,omitempty"`
}

// SendMessageResponse reports a resolved send. Failed carries the
// original content back so the UI can restore the compose box.
type SendMessageResponse struct {
	Message *MessageResponse `json:"message,omitempty"`
	Failed  bool             `json:"failed,omitempty"`
	Content string           `json:"content,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type ListMessagesResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}
