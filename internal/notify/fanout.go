package notify

import (
	"context"
	"time"

	"collabdesk/internal/domain"
	"collabdesk/internal/events"
	"collabdesk/internal/platform"
	pkgevents "collabdesk/pkg/events"
	"collabdesk/pkg/logger"
)

// ActiveProvider reports which conversation the user is viewing; events
// for that conversation never fan out.
type ActiveProvider interface {
	Active() string
}

// Fanout dispatches a single logical notification to zero or more
// delivery channels. The category gate runs first: an opted-out type
// produces no dispatch at all. In-app and sound follow their preference
// flags; desktop additionally requires the tab to be hidden and
// permission granted. Channels fire independently.
type Fanout struct {
	prefs       *Preferences
	active      ActiveProvider
	visibility  platform.Visibility
	permissions platform.Permissions
	seen        SeenStore
	toast       Channel
	sound       Channel
	desktop     Channel
	bus         *pkgevents.Bus
	logger      *logger.Logger
}

func NewFanout(prefs *Preferences, active ActiveProvider, visibility platform.Visibility, permissions platform.Permissions, seen SeenStore, toast, sound, desktop Channel, bus *pkgevents.Bus, l *logger.Logger) *Fanout {
	return &Fanout{
		prefs:       prefs,
		active:      active,
		visibility:  visibility,
		permissions: permissions,
		seen:        seen,
		toast:       toast,
		sound:       sound,
		desktop:     desktop,
		bus:         bus,
		logger:      l,
	}
}

// Start subscribes to new-message events on the bus and dispatches for
// conversations the user is not viewing. Runs until ctx is cancelled.
func (f *Fanout) Start(ctx context.Context) {
	ch, unsub := f.bus.Subscribe(events.EventMessageCreated, 64)
	go func() {
		defer unsub()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-ch:
				msg, ok := evt.Payload.(domain.Message)
				if !ok {
					continue
				}
				f.HandleMessage(ctx, msg)
			}
		}
	}()
}

// HandleMessage evaluates a freshly stored message for notification.
// Own messages and messages in the active conversation are not events
// worth notifying about.
func (f *Fanout) HandleMessage(ctx context.Context, msg domain.Message) {
	if msg.IsOwn {
		return
	}
	if f.active != nil && f.active.Active() == msg.ConversationID {
		return
	}
	f.Dispatch(ctx, domain.Notification{
		ID:             "message:" + msg.ID.String(),
		Type:           domain.NotificationTypeMessage,
		Title:          msg.SenderName,
		Body:           msg.Preview(),
		ConversationID: msg.ConversationID,
		CreatedAt:      msg.Timestamp,
	})
}

// Dispatch runs the per-event rule. The category gate comes first: an
// opted-out event is skipped entirely, not consumed, so it can still
// fire if it resurfaces after the user re-enables the type. Dedupe by
// notification id follows, so a polled notification that duplicates a
// live message event is a no-op.
func (f *Fanout) Dispatch(ctx context.Context, n domain.Notification) {
	prefs := f.prefs.Get()
	if !prefs.TypeEnabled(n.Type) {
		return
	}

	fresh, err := f.seen.MarkIfNew(ctx, n.ID)
	if err != nil {
		f.logger.Warnf("seen store: %s", err)
		// Fall through: failing open risks a duplicate toast, failing
		// closed loses the notification entirely.
		fresh = true
	}
	if !fresh {
		return
	}

	f.bus.Publish(pkgevents.Event{Kind: events.EventNotificationNew, Timestamp: time.Now(), Payload: n})

	if prefs.Delivery.InApp {
		f.deliver(f.toast, n)
	}
	if prefs.Delivery.Sound {
		f.deliver(f.sound, n)
	}
	if prefs.Delivery.Browser && !f.visibility.Visible() && f.permissions.NotificationPermission() == platform.PermissionGranted {
		f.deliver(f.desktop, n)
	}
	// Email digest is preference-tracked only; delivery belongs to the
	// platform's digest pipeline.
}

func (f *Fanout) deliver(ch Channel, n domain.Notification) {
	if ch == nil {
		return
	}
	if err := ch.Deliver(n); err != nil {
		f.logger.Warnf("deliver %s via %s: %s", n.ID, ch.Name(), err)
	}
}
