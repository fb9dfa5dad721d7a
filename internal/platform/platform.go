package platform

import (
	"sync"

	"collabdesk/internal/domain"
)

// PermissionState mirrors the host notification permission states.
type PermissionState string

const (
	PermissionDefault PermissionState = "default"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

func (s PermissionState) Valid() bool {
	switch s {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return true
	}
	return false
}

// Visibility reports whether the host surface (browser tab, window) is in
// the foreground. Desktop notifications only fire when it is not.
type Visibility interface {
	Visible() bool
}

// Permissions reports the host-level notification permission. Denial is
// not an error, just a degraded-capability state.
type Permissions interface {
	NotificationPermission() PermissionState
}

// Host is the mutable platform state, fed by the UI consumer through the
// engine facade whenever the tab visibility or permission changes.
type Host struct {
	mu         sync.RWMutex
	visible    bool
	permission PermissionState
}

func NewHost() *Host {
	return &Host{visible: true, permission: PermissionDefault}
}

func (h *Host) Visible() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.visible
}

func (h *Host) SetVisible(visible bool) {
	h.mu.Lock()
	h.visible = visible
	h.mu.Unlock()
}

func (h *Host) NotificationPermission() PermissionState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.permission
}

func (h *Host) SetNotificationPermission(state PermissionState) {
	h.mu.Lock()
	h.permission = state
	h.mu.Unlock()
}

// Notifier posts an OS-level notification through whatever bridge the
// host provides.
type Notifier interface {
	Notify(n domain.Notification) error
}
