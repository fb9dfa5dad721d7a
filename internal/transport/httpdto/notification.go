package httpdto

import (
	"collabdesk/internal/domain"
	"collabdesk/internal/platform"
)

type NotificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

// PreferencesPatch carries partial preference updates; only non-nil
// fields change.
type PreferencesPatch struct {
	Types       map[domain.NotificationType]*bool `json:"types,omitempty"`
	Delivery    *DeliveryPatch                    `json:"delivery,omitempty"`
	EmailDigest *EmailDigestPatch                 `json:"email_digest,omitempty"`
}

type DeliveryPatch struct {
	InApp   *bool `json:"in_app,omitempty"`
	Sound   *bool `json:"sound,omitempty"`
	Browser *bool `json:"browser,omitempty"`
	Email   *bool `json:"email,omitempty"`
}

type EmailDigestPatch struct {
	Enabled   *bool                   `json:"enabled,omitempty"`
	Frequency *domain.DigestFrequency `json:"frequency,omitempty"`
	Email     *string                 `json:"email,omitempty"`
}

// Apply folds the patch into a preference record.
func (p PreferencesPatch) Apply(prefs *domain.NotificationPreferences) {
	for t, v := range p.Types {
		if v == nil {
			continue
		}
		if prefs.Types == nil {
			prefs.Types = make(map[domain.NotificationType]bool)
		}
		prefs.Types[t] = *v
	}
	if d := p.Delivery; d != nil {
		if d.InApp != nil {
			prefs.Delivery.InApp = *d.InApp
		}
		if d.Sound != nil {
			prefs.Delivery.Sound = *d.Sound
		}
		if d.Browser != nil {
			prefs.Delivery.Browser = *d.Browser
		}
		if d.Email != nil {
			prefs.Delivery.Email = *d.Email
		}
	}
	if e := p.EmailDigest; e != nil {
		if e.Enabled != nil {
			prefs.EmailDigest.Enabled = *e.Enabled
		}
		if e.Frequency != nil {
			prefs.EmailDigest.Frequency = *e.Frequency
		}
		if e.Email != nil {
			prefs.EmailDigest.Email = *e.Email
		}
	}
}

type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

type PermissionRequest struct {
	State platform.PermissionState `json:"state" binding:"required"`
}
