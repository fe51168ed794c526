package persistence

import (
	"context"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReturnAttachmentRepository implements AttachmentRepository using GORM
type GormReturnAttachmentRepository struct {
	db *gorm.DB
}

// NewGormReturnAttachmentRepository creates a new GormReturnAttachmentRepository
func NewGormReturnAttachmentRepository(db *gorm.DB) *GormReturnAttachmentRepository {
	return &GormReturnAttachmentRepository{db: db}
}

// Create stores attachment metadata
func (r *GormReturnAttachmentRepository) Create(ctx context.Context, a *returns.Attachment) error {
	return r.db.WithContext(ctx).Create(models.ReturnAttachmentModelFromDomain(a)).Error
}

// FindByReturnID lists a return's attachments, oldest first
func (r *GormReturnAttachmentRepository) FindByReturnID(ctx context.Context, returnID uuid.UUID) ([]returns.Attachment, error) {
	var rows []models.ReturnAttachmentModel
	if err := r.db.WithContext(ctx).
		Where("return_id = ?", returnID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]returns.Attachment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var _ returns.AttachmentRepository = (*GormReturnAttachmentRepository)(nil)
