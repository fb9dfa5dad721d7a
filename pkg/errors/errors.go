package collab_errors

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyMessage      = errors.New("message has no content or attachments")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrSendFailed        = errors.New("send failed")
	ErrRequestCancelled  = errors.New("request cancelled")
	ErrUnavailable       = errors.New("service unavailable")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotUploaded       = errors.New("file not uploaded")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
