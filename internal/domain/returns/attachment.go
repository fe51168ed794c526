package returns

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attachment is a photo or document collected as inspection evidence.
// The file itself lives in object storage under StorageKey.
type Attachment struct {
	ID          uuid.UUID
	ReturnID    uuid.UUID
	StorageKey  string
	FileName    string
	ContentType string
	UploadedBy  uuid.UUID
	CreatedAt   time.Time
}

var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// NewAttachment registers evidence for a return that is still open
func (r *ReturnRecord) NewAttachment(fileName, contentType string, uploadedBy uuid.UUID) (*Attachment, error) {
	if r.Status.IsTerminal() {
		return nil, NewIllegalTransitionError("attach evidence to", r.Status)
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, NewValidationError("file_name", "File name is required")
	}
	if !allowedAttachmentTypes[contentType] {
		return nil, NewValidationError("content_type", "Unsupported content type: "+contentType)
	}
	if uploadedBy == uuid.Nil {
		return nil, NewValidationError("uploaded_by", "Uploader is required")
	}

	id := uuid.New()
	return &Attachment{
		ID:          id,
		ReturnID:    r.ID,
		StorageKey:  fmt.Sprintf("returns/%s/%s%s", r.ID, id, strings.ToLower(path.Ext(fileName))),
		FileName:    fileName,
		ContentType: contentType,
		UploadedBy:  uploadedBy,
		CreatedAt:   nowFunc(),
	}, nil
}
