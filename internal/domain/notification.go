package domain

import "time"

type NotificationType string

const (
	NotificationTypeMessage      NotificationType = "message"
	NotificationTypeStatusChange NotificationType = "status_change"
	NotificationTypeAssignment   NotificationType = "assignment"
	NotificationTypeSystem       NotificationType = "system"
)

type Notification struct {
	ID             string           `json:"id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	ConversationID string           `json:"conversation_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	Read           bool             `json:"read"`
}

type DigestFrequency string

const (
	DigestInstant DigestFrequency = "instant"
	DigestHourly  DigestFrequency = "hourly"
	DigestDaily   DigestFrequency = "daily"
	DigestWeekly  DigestFrequency = "weekly"
)

type DeliveryChannels struct {
	InApp   bool `json:"in_app"`
	Sound   bool `json:"sound"`
	Browser bool `json:"browser"`
	Email   bool `json:"email"`
}

type EmailDigest struct {
	Enabled   bool            `json:"enabled"`
	Frequency DigestFrequency `json:"frequency"`
	Email     string          `json:"email"`
}

// NotificationPreferences is the single user-scoped preference record.
// Loaded once at session start and mutated via partial updates.
type NotificationPreferences struct {
	Types       map[NotificationType]bool `json:"types"`
	Delivery    DeliveryChannels          `json:"delivery"`
	EmailDigest EmailDigest               `json:"email_digest"`
}

func DefaultPreferences() NotificationPreferences {
	return NotificationPreferences{
		Types: map[NotificationType]bool{
			NotificationTypeMessage:      true,
			NotificationTypeStatusChange: true,
			NotificationTypeAssignment:   true,
			NotificationTypeSystem:       true,
		},
		Delivery: DeliveryChannels{InApp: true, Sound: true},
		EmailDigest: EmailDigest{
			Enabled:   false,
			Frequency: DigestDaily,
		},
	}
}

// TypeEnabled reports whether a notification category is opted in.
// Categories absent from the map are treated as enabled; only an
// explicit false opts out.
func (p NotificationPreferences) TypeEnabled(t NotificationType) bool {
	if p.Types == nil {
		return true
	}
	enabled, ok := p.Types[t]
	return !ok || enabled
}

// Clone returns a deep copy, used to snapshot state before an
// optimistic preference update.
func (p NotificationPreferences) Clone() NotificationPreferences {
	out := p
	if p.Types != nil {
		out.Types = make(map[NotificationType]bool, len(p.Types))
		for k, v := range p.Types {
			out.Types[k] = v
		}
	}
	return out
}
