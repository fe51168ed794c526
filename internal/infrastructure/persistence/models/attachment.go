package models

import (
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/google/uuid"
)

// ReturnAttachmentModel stores evidence metadata; the bytes live in object storage
type ReturnAttachmentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ReturnID    uuid.UUID `gorm:"type:uuid;not null;index"`
	StorageKey  string    `gorm:"column:storage_key;type:varchar(500);not null"`
	FileName    string    `gorm:"column:file_name;type:varchar(255);not null"`
	ContentType string    `gorm:"column:content_type;type:varchar(100);not null"`
	UploadedBy  uuid.UUID `gorm:"column:uploaded_by;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnAttachmentModel) TableName() string {
	return "return_attachments"
}

// ToDomain converts the persistence model to a domain Attachment
func (m *ReturnAttachmentModel) ToDomain() *returns.Attachment {
	return &returns.Attachment{
		ID:          m.ID,
		ReturnID:    m.ReturnID,
		StorageKey:  m.StorageKey,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		UploadedBy:  m.UploadedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// ReturnAttachmentModelFromDomain creates a new persistence model from a domain Attachment
func ReturnAttachmentModelFromDomain(a *returns.Attachment) *ReturnAttachmentModel {
	return &ReturnAttachmentModel{
		ID:          a.ID,
		ReturnID:    a.ReturnID,
		StorageKey:  a.StorageKey,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt,
	}
}
