package events

// In-process event kinds published on the engine bus.
// These follow the format: domain.action

// Message events
const (
	EventMessageCreated    = "message.created"
	EventMessageSent       = "message.sent"
	EventMessageSendFailed = "message.send_failed"
	EventMessageDelivered  = "message.delivered"
	EventMessageRead       = "message.read"
)

// Typing events
const (
	EventTypingStarted = "typing.started"
	EventTypingStopped = "typing.stopped"
)

// Conversation events
const (
	EventConversationUpdated = "conversation.updated"
	EventConversationRead    = "conversation.read"
)

// Notification events
const (
	EventNotificationNew = "notification.new"
)

// Delivery channel events, consumed by the UI layer
const (
	EventToastShown    = "channel.toast"
	EventSoundPlayed   = "channel.sound"
	EventDesktopNotify = "channel.desktop"
)
