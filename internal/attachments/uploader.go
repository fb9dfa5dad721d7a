package attachments

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"collabdesk/internal/domain"
	"collabdesk/internal/storage"
	collab_errors "collabdesk/pkg/errors"
	"collabdesk/pkg/logger"
)

// MaxAttachmentSize caps uploads at 25 MiB, matching the platform limit.
const MaxAttachmentSize = 25 << 20

// Uploader pushes a file to object storage before the attachment is
// referenced in a send call, producing the stable URL/size/mimeType the
// message will carry.
type Uploader struct {
	store  *storage.Client
	self   domain.Identity
	logger *logger.Logger
}

func NewUploader(store *storage.Client, self domain.Identity, l *logger.Logger) *Uploader {
	return &Uploader{store: store, self: self, logger: l}
}

// Upload stores the content and returns the immutable attachment record.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, size int64, body io.Reader) (domain.Attachment, error) {
	if u.store == nil {
		return domain.Attachment{}, collab_errors.ErrUnavailable
	}
	if filename == "" || size <= 0 {
		return domain.Attachment{}, collab_errors.ErrInvalidInput
	}
	if size > MaxAttachmentSize {
		return domain.Attachment{}, fmt.Errorf("%w: %d bytes", collab_errors.ErrInvalidInput, size)
	}
	if err := u.store.ValidateContentType(contentType); err != nil {
		return domain.Attachment{}, collab_errors.ErrInvalidInput
	}

	id := uuid.NewString()
	key := buildObjectKey(u.self.ID, id, filename)
	url, err := u.store.Put(ctx, key, contentType, size, body)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("upload %s: %w", filename, err)
	}

	u.logger.Debugf("uploaded attachment %s (%d bytes) to %s", filename, size, key)
	return domain.Attachment{
		ID:       id,
		Name:     filename,
		Type:     domain.ClassifyAttachmentType(contentType),
		URL:      url,
		Size:     size,
		MimeType: contentType,
	}, nil
}

func buildObjectKey(userID, attachmentID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := fmt.Sprintf("attachments/%s/%s", userID, attachmentID)
	if ext == "" {
		return base
	}
	return base + ext
}
