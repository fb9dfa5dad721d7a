package httpdto

import (
	"time"

	"collabdesk/internal/domain"
)

type ConversationResponse struct {
	ID                string    `json:"id"`
	ParticipantID     string    `json:"participant_id"`
	ParticipantName   string    `json:"participant_name"`
	ParticipantAvatar string    `json:"participant_avatar,omitempty"`
	LastMessage       string    `json:"last_message"`
	LastMessageTime   time.Time `json:"last_message_time"`
	UnreadCount       int       `json:"unread_count"`
	IsTyping          bool      `json:"is_typing"`
}

func FromConversation(c domain.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:                c.ID,
		ParticipantID:     c.ParticipantID,
		ParticipantName:   c.ParticipantName,
		ParticipantAvatar: c.ParticipantAvatar,
		LastMessage:       c.LastMessage,
		LastMessageTime:   c.LastMessageTime,
		UnreadCount:       c.UnreadCount,
		IsTyping:          c.IsTyping,
	}
}

func FromConversationSlice(items []domain.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(items))
	for _, c := range items {
		out = append(out, FromConversation(c))
	}
	return out
}

type CreateConversationRequest struct {
	ParticipantID  string `json:"participant_id" binding:"required"`
	InitialMessage string `json:"initial_message,omitempty"`
}

type ListConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}
