package notify

import (
	"context"
	"sync"

	"collabdesk/internal/domain"
	"collabdesk/pkg/logger"
)

// PreferenceStore is the external system of record for preferences.
type PreferenceStore interface {
	GetPreferences(ctx context.Context) (domain.NotificationPreferences, error)
	UpdatePreferences(ctx context.Context, prefs domain.NotificationPreferences) error
}

// Preferences holds the single user-scoped preference record. It is
// loaded once at session start; updates apply optimistically and revert
// if the remote persist fails.
type Preferences struct {
	remote PreferenceStore
	logger *logger.Logger

	mu      sync.RWMutex
	current domain.NotificationPreferences
}

func NewPreferences(remote PreferenceStore, l *logger.Logger) *Preferences {
	return &Preferences{
		remote:  remote,
		logger:  l,
		current: domain.DefaultPreferences(),
	}
}

// Load hydrates from the preference store. On failure the defaults stay
// in place and the session continues in a degraded but functional mode.
func (p *Preferences) Load(ctx context.Context) error {
	prefs, err := p.remote.GetPreferences(ctx)
	if err != nil {
		p.logger.Warnf("loading notification preferences: %s, using defaults", err)
		return err
	}
	p.mu.Lock()
	p.current = prefs
	p.mu.Unlock()
	return nil
}

// Get returns a copy of the current preferences.
func (p *Preferences) Get() domain.NotificationPreferences {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.Clone()
}

// Update applies a partial mutation optimistically and persists the
// result. If the persist fails the previous state is restored and the
// error returned.
func (p *Preferences) Update(ctx context.Context, apply func(*domain.NotificationPreferences)) error {
	p.mu.Lock()
	previous := p.current.Clone()
	next := p.current.Clone()
	apply(&next)
	p.current = next
	p.mu.Unlock()

	if err := p.remote.UpdatePreferences(ctx, next); err != nil {
		p.mu.Lock()
		p.current = previous
		p.mu.Unlock()
		p.logger.Warnf("preference update failed, reverted: %s", err)
		return err
	}
	return nil
}
