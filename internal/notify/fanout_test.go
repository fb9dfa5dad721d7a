package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabdesk/internal/domain"
	"collabdesk/internal/platform"
	pkgevents "collabdesk/pkg/events"
	"collabdesk/pkg/logger"
)

type recordChannel struct {
	mu        sync.Mutex
	name      string
	delivered []domain.Notification
}

func (c *recordChannel) Name() string { return c.name }

func (c *recordChannel) Deliver(n domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered = append(c.delivered, n)
	return nil
}

func (c *recordChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.delivered)
}

type fakePrefStore struct {
	mu      sync.Mutex
	prefs   domain.NotificationPreferences
	getErr  error
	saveErr error
	saved   []domain.NotificationPreferences
}

func (f *fakePrefStore) GetPreferences(ctx context.Context) (domain.NotificationPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.NotificationPreferences{}, f.getErr
	}
	return f.prefs.Clone(), nil
}

func (f *fakePrefStore) UpdatePreferences(ctx context.Context, prefs domain.NotificationPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, prefs.Clone())
	return nil
}

type staticActive struct{ id string }

func (s staticActive) Active() string { return s.id }

type fanoutFixture struct {
	fanout  *Fanout
	prefs   *Preferences
	host    *platform.Host
	toast   *recordChannel
	sound   *recordChannel
	desktop *recordChannel
	bus     *pkgevents.Bus
}

func newFanoutFixture(active string) *fanoutFixture {
	prefs := NewPreferences(&fakePrefStore{prefs: domain.DefaultPreferences()}, logger.NewNop())
	host := platform.NewHost()
	bus := pkgevents.NewBus()
	toast := &recordChannel{name: "toast"}
	sound := &recordChannel{name: "sound"}
	desktop := &recordChannel{name: "desktop"}
	f := NewFanout(prefs, staticActive{id: active}, host, host, NewMemorySeenStore(),
		toast, sound, desktop, bus, logger.NewNop())
	return &fanoutFixture{fanout: f, prefs: prefs, host: host, toast: toast, sound: sound, desktop: desktop, bus: bus}
}

func testNotification(id string) domain.Notification {
	return domain.Notification{
		ID:        id,
		Type:      domain.NotificationTypeMessage,
		Title:     "Other",
		Body:      "hello",
		CreatedAt: time.Now(),
	}
}

func TestDispatchDefaultChannels(t *testing.T) {
	fx := newFanoutFixture("")

	fx.fanout.Dispatch(context.Background(), testNotification("n1"))

	assert.Equal(t, 1, fx.toast.count())
	assert.Equal(t, 1, fx.sound.count())
	assert.Equal(t, 0, fx.desktop.count(), "desktop is off by default")
}

func TestDispatchDedupesByID(t *testing.T) {
	fx := newFanoutFixture("")

	fx.fanout.Dispatch(context.Background(), testNotification("n1"))
	fx.fanout.Dispatch(context.Background(), testNotification("n1"))

	assert.Equal(t, 1, fx.toast.count())
	assert.Equal(t, 1, fx.sound.count())
}

func TestOptedOutTypeProducesNothing(t *testing.T) {
	fx := newFanoutFixture("")
	require.NoError(t, fx.prefs.Update(context.Background(), func(p *domain.NotificationPreferences) {
		p.Types[domain.NotificationTypeMessage] = false
	}))

	ch, unsub := fx.bus.Subscribe("notification.", 4)
	defer unsub()

	fx.fanout.Dispatch(context.Background(), testNotification("n1"))

	assert.Equal(t, 0, fx.toast.count())
	assert.Equal(t, 0, fx.sound.count())
	assert.Equal(t, 0, fx.desktop.count())
	select {
	case evt := <-ch:
		t.Fatalf("opted-out type must not surface at all, got %v", evt.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOptedOutEventIsNotConsumed(t *testing.T) {
	fx := newFanoutFixture("")
	require.NoError(t, fx.prefs.Update(context.Background(), func(p *domain.NotificationPreferences) {
		p.Types[domain.NotificationTypeMessage] = false
	}))

	// Skipped while opted out; must not be marked seen.
	fx.fanout.Dispatch(context.Background(), testNotification("n1"))
	require.Equal(t, 0, fx.toast.count())

	// Re-enabling the type lets the same notification fire when the
	// poller surfaces it again.
	require.NoError(t, fx.prefs.Update(context.Background(), func(p *domain.NotificationPreferences) {
		p.Types[domain.NotificationTypeMessage] = true
	}))
	fx.fanout.Dispatch(context.Background(), testNotification("n1"))
	assert.Equal(t, 1, fx.toast.count())
}

func TestUnknownTypeIsTreatedAsEnabled(t *testing.T) {
	fx := newFanoutFixture("")

	n := testNotification("n1")
	n.Type = domain.NotificationType("maintenance")
	fx.fanout.Dispatch(context.Background(), n)

	assert.Equal(t, 1, fx.toast.count())
}

func TestChannelsAreIndependent(t *testing.T) {
	fx := newFanoutFixture("")
	require.NoError(t, fx.prefs.Update(context.Background(), func(p *domain.NotificationPreferences) {
		p.Delivery.Sound = false
	}))

	fx.fanout.Dispatch(context.Background(), testNotification("n1"))

	assert.Equal(t, 1, fx.toast.count())
	assert.Equal(t, 0, fx.sound.count())
}

func TestDesktopRequiresHiddenTabAndPermission(t *testing.T) {
	fx := newFanoutFixture("")
	require.NoError(t, fx.prefs.Update(context.Background(), func(p *domain.NotificationPreferences) {
		p.Delivery.Browser = true
	}))

	// Visible tab: suppressed even with permission granted.
	fx.host.SetNotificationPermission(platform.PermissionGranted)
	fx.host.SetVisible(true)
	fx.fanout.Dispatch(context.Background(), testNotification("n1"))
	assert.Equal(t, 0, fx.desktop.count())

	// Hidden but permission not granted: suppressed.
	fx.host.SetVisible(false)
	fx.host.SetNotificationPermission(platform.PermissionDefault)
	fx.fanout.Dispatch(context.Background(), testNotification("n2"))
	assert.Equal(t, 0, fx.desktop.count())

	// Hidden and granted: delivered.
	fx.host.SetNotificationPermission(platform.PermissionGranted)
	fx.fanout.Dispatch(context.Background(), testNotification("n3"))
	assert.Equal(t, 1, fx.desktop.count())
}

func TestHandleMessageSkipsOwnAndActive(t *testing.T) {
	fx := newFanoutFixture("c-active")

	own := domain.Message{
		ID:             domain.ConfirmedID("m1"),
		ConversationID: "c1",
		SenderID:       "me",
		IsOwn:          true,
		Content:        "mine",
		Timestamp:      time.Now(),
		Status:         domain.StatusSent,
	}
	fx.fanout.HandleMessage(context.Background(), own)
	assert.Equal(t, 0, fx.toast.count())

	inActive := own
	inActive.ID = domain.ConfirmedID("m2")
	inActive.IsOwn = false
	inActive.SenderID = "other"
	inActive.ConversationID = "c-active"
	fx.fanout.HandleMessage(context.Background(), inActive)
	assert.Equal(t, 0, fx.toast.count())

	elsewhere := inActive
	elsewhere.ID = domain.ConfirmedID("m3")
	elsewhere.ConversationID = "c-other"
	fx.fanout.HandleMessage(context.Background(), elsewhere)
	assert.Equal(t, 1, fx.toast.count())
}

func TestHandleMessageDedupesAgainstPolledNotification(t *testing.T) {
	fx := newFanoutFixture("")

	msg := domain.Message{
		ID:             domain.ConfirmedID("m1"),
		ConversationID: "c1",
		SenderID:       "other",
		SenderName:     "Other",
		Content:        "hello",
		Timestamp:      time.Now(),
		Status:         domain.StatusDelivered,
	}
	fx.fanout.HandleMessage(context.Background(), msg)
	require.Equal(t, 1, fx.toast.count())

	// The poller later surfaces the same logical event under the same id.
	fx.fanout.Dispatch(context.Background(), domain.Notification{
		ID:   "message:m1",
		Type: domain.NotificationTypeMessage,
	})
	assert.Equal(t, 1, fx.toast.count())
}

type failingSeen struct{}

func (failingSeen) MarkIfNew(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestSeenStoreFailureFailsOpen(t *testing.T) {
	fx := newFanoutFixture("")
	fx.fanout.seen = failingSeen{}

	fx.fanout.Dispatch(context.Background(), testNotification("n1"))
	assert.Equal(t, 1, fx.toast.count(), "a broken dedupe store must not swallow notifications")
}
