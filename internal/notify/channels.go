package notify

import (
	"time"

	"collabdesk/internal/domain"
	"collabdesk/internal/events"
	"collabdesk/internal/platform"
	pkgevents "collabdesk/pkg/events"
)

// Channel is one independent delivery path for a notification. Channels
// never consult preferences; the fan-out decides which of them fire.
type Channel interface {
	Name() string
	Deliver(n domain.Notification) error
}

// ToastChannel surfaces an in-app toast by publishing on the engine bus;
// the UI consumer renders it.
type ToastChannel struct {
	bus *pkgevents.Bus
}

func NewToastChannel(bus *pkgevents.Bus) *ToastChannel {
	return &ToastChannel{bus: bus}
}

func (c *ToastChannel) Name() string { return "toast" }

func (c *ToastChannel) Deliver(n domain.Notification) error {
	c.bus.Publish(pkgevents.Event{Kind: events.EventToastShown, Timestamp: time.Now(), Payload: n})
	return nil
}

// SoundChannel asks the UI consumer to play the notification sound.
type SoundChannel struct {
	bus *pkgevents.Bus
}

func NewSoundChannel(bus *pkgevents.Bus) *SoundChannel {
	return &SoundChannel{bus: bus}
}

func (c *SoundChannel) Name() string { return "sound" }

func (c *SoundChannel) Deliver(n domain.Notification) error {
	c.bus.Publish(pkgevents.Event{Kind: events.EventSoundPlayed, Timestamp: time.Now(), Payload: n})
	return nil
}

// DesktopChannel posts an OS-level notification through the platform
// notifier. The visibility/permission gate lives in the fan-out.
type DesktopChannel struct {
	notifier platform.Notifier
}

func NewDesktopChannel(notifier platform.Notifier) *DesktopChannel {
	return &DesktopChannel{notifier: notifier}
}

func (c *DesktopChannel) Name() string { return "desktop" }

func (c *DesktopChannel) Deliver(n domain.Notification) error {
	return c.notifier.Notify(n)
}

// BusNotifier is the default desktop bridge: it hands the notification to
// the UI consumer over the bus, which owns the actual platform call.
type BusNotifier struct {
	bus *pkgevents.Bus
}

func NewBusNotifier(bus *pkgevents.Bus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (b *BusNotifier) Notify(n domain.Notification) error {
	b.bus.Publish(pkgevents.Event{Kind: events.EventDesktopNotify, Timestamp: time.Now(), Payload: n})
	return nil
}
