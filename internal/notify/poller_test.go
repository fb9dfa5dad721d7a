package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"collabdesk/internal/domain"
)

type fakeCountSource struct {
	mu       sync.Mutex
	count    int
	countErr error
	list     []domain.Notification
	listErr  error
	fetches  int
}

func (f *fakeCountSource) NotificationCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, f.countErr
}

func (f *fakeCountSource) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.list, f.listErr
}

func (f *fakeCountSource) set(count int, list []domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count = count
	f.list = list
}

func TestFirstTickIsBaselineOnly(t *testing.T) {
	fx := newFanoutFixture("")
	src := &fakeCountSource{}
	src.set(3, []domain.Notification{testNotification("n1"), testNotification("n2"), testNotification("n3")})
	p := NewPoller(src, fx.fanout, time.Hour, fx.fanout.logger)

	// A backlog that predates the session is not a new event.
	p.Tick(context.Background())
	assert.Equal(t, 0, fx.toast.count())
	assert.Equal(t, 0, src.fetches, "baseline tick must not fetch the list")
}

func TestGrowthDispatchesUnread(t *testing.T) {
	fx := newFanoutFixture("")
	src := &fakeCountSource{}
	p := NewPoller(src, fx.fanout, time.Hour, fx.fanout.logger)

	src.set(1, nil)
	p.Tick(context.Background())

	read := testNotification("n-read")
	read.Read = true
	src.set(3, []domain.Notification{testNotification("n1"), testNotification("n2"), read})
	p.Tick(context.Background())

	assert.Equal(t, 2, fx.toast.count(), "only unread entries dispatch")
}

func TestUnchangedOrShrinkingCountDoesNothing(t *testing.T) {
	fx := newFanoutFixture("")
	src := &fakeCountSource{}
	p := NewPoller(src, fx.fanout, time.Hour, fx.fanout.logger)

	src.set(5, []domain.Notification{testNotification("n1")})
	p.Tick(context.Background())
	p.Tick(context.Background())
	src.set(2, nil)
	p.Tick(context.Background())

	assert.Equal(t, 0, fx.toast.count())
	assert.Equal(t, 0, src.fetches)
}

func TestRepeatedGrowthDedupesByID(t *testing.T) {
	fx := newFanoutFixture("")
	src := &fakeCountSource{}
	p := NewPoller(src, fx.fanout, time.Hour, fx.fanout.logger)

	src.set(0, nil)
	p.Tick(context.Background())

	src.set(1, []domain.Notification{testNotification("n1")})
	p.Tick(context.Background())
	assert.Equal(t, 1, fx.toast.count())

	// Next growth still lists n1; only the new entry dispatches.
	src.set(2, []domain.Notification{testNotification("n1"), testNotification("n2")})
	p.Tick(context.Background())
	assert.Equal(t, 2, fx.toast.count())
}

func TestCountErrorLeavesBaselineUntouched(t *testing.T) {
	fx := newFanoutFixture("")
	src := &fakeCountSource{}
	p := NewPoller(src, fx.fanout, time.Hour, fx.fanout.logger)

	src.set(1, nil)
	p.Tick(context.Background())

	src.mu.Lock()
	src.countErr = errors.New("unreachable")
	src.mu.Unlock()
	p.Tick(context.Background())

	// Recovery with a higher count dispatches against the old baseline.
	src.mu.Lock()
	src.countErr = nil
	src.count = 2
	src.list = []domain.Notification{testNotification("n1")}
	src.mu.Unlock()
	p.Tick(context.Background())

	assert.Equal(t, 1, fx.toast.count())
}

func TestStartStop(t *testing.T) {
	fx := newFanoutFixture("")
	src := &fakeCountSource{}
	p := NewPoller(src, fx.fanout, 10*time.Millisecond, fx.fanout.logger)

	p.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	// After Stop no further ticks run.
	src.mu.Lock()
	src.count = 100
	src.mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, fx.toast.count())
}
