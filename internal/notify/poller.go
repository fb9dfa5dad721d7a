package notify

import (
	"context"
	"sync"
	"time"

	"collabdesk/internal/domain"
	"collabdesk/pkg/logger"
)

// DefaultPollInterval is how often the count endpoint is polled when no
// push channel is available for non-message notifications.
const DefaultPollInterval = 30 * time.Second

// CountSource is the slice of the platform API the poller needs.
type CountSource interface {
	NotificationCount(ctx context.Context) (int, error)
	ListNotifications(ctx context.Context) ([]domain.Notification, error)
}

// Poller periodically compares the remote notification count against the
// previous observation and, when it grows, fetches the list and feeds
// unread entries into the fan-out. Notifications the fan-out has already
// seen (e.g. from a live message event) dedupe by id. Start and Stop are
// explicit so polling is deterministic in tests.
type Poller struct {
	remote   CountSource
	fanout   *Fanout
	interval time.Duration
	logger   *logger.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	lastCount int
	hasCount  bool
}

func NewPoller(remote CountSource, fanout *Fanout, interval time.Duration, l *logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		remote:   remote,
		fanout:   fanout,
		interval: interval,
		logger:   l,
	}
}

// Start launches the polling loop. Calling Start on a running poller
// restarts it.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()
	go p.loop(ctx)
}

// Stop ends the polling loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs a single poll cycle. Exported so tests (and an eager first
// poll) can drive the loop without waiting on the ticker.
func (p *Poller) Tick(ctx context.Context) {
	count, err := p.remote.NotificationCount(ctx)
	if err != nil {
		// Transient failure: stale-but-consistent state until next tick.
		p.logger.Debugf("notification count poll: %s", err)
		return
	}

	p.mu.Lock()
	grew := p.hasCount && count > p.lastCount
	p.lastCount = count
	p.hasCount = true
	p.mu.Unlock()

	// The first observation is only a baseline; a backlog that predates
	// this session is not a new event.
	if !grew {
		return
	}

	list, err := p.remote.ListNotifications(ctx)
	if err != nil {
		p.logger.Debugf("notification list fetch: %s", err)
		return
	}
	for _, n := range list {
		if n.Read {
			continue
		}
		p.fanout.Dispatch(ctx, n)
	}
}
