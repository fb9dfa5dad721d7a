package domain

import "time"

// Conversation is one thread between the local user and a single
// collaborator. Participant fields are denormalized from the other side.
type Conversation struct {
	ID                string    `json:"id"`
	ParticipantID     string    `json:"participant_id"`
	ParticipantName   string    `json:"participant_name"`
	ParticipantAvatar string    `json:"participant_avatar,omitempty"`
	LastMessage       string    `json:"last_message"`
	LastMessageTime   time.Time `json:"last_message_time"`
	UnreadCount       int       `json:"unread_count"`
	IsTyping          bool      `json:"is_typing"`
}
