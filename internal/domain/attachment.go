package domain

import "strings"

type AttachmentType string

const (
	AttachmentTypeImage    AttachmentType = "image"
	AttachmentTypeDocument AttachmentType = "document"
	AttachmentTypeFile     AttachmentType = "file"
)

// Attachment is immutable once referenced by a sent message.
type Attachment struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     AttachmentType `json:"type"`
	URL      string         `json:"url"`
	Size     int64          `json:"size"`
	MimeType string         `json:"mime_type"`
}

var documentMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"text/csv":   true,
}

// ClassifyAttachmentType maps a mime type onto the coarse attachment
// categories the dashboard renders.
func ClassifyAttachmentType(mimeType string) AttachmentType {
	if strings.HasPrefix(mimeType, "image/") {
		return AttachmentTypeImage
	}
	if documentMimeTypes[mimeType] {
		return AttachmentTypeDocument
	}
	return AttachmentTypeFile
}
