package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EvidenceStorage issues presigned URLs for inspection evidence files
type EvidenceStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// RequestAttachmentRequest asks for an upload slot for one evidence file
type RequestAttachmentRequest struct {
	FileName    string    `json:"file_name" binding:"required,max=255"`
	ContentType string    `json:"content_type" binding:"required"`
	ActorID     uuid.UUID `json:"-"`
}

// AttachmentUploadResponse tells the client where to PUT the file
type AttachmentUploadResponse struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	StorageKey   string    `json:"storage_key"`
	UploadURL    string    `json:"upload_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AttachmentResponse describes a stored evidence file
type AttachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AttachmentService manages inspection evidence for returns
type AttachmentService struct {
	returnRepo     returns.ReturnRecordRepository
	attachmentRepo returns.AttachmentRepository
	storage        EvidenceStorage
	urlTTL         time.Duration
	logger         *zap.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	returnRepo returns.ReturnRecordRepository,
	attachmentRepo returns.AttachmentRepository,
	storage EvidenceStorage,
	urlTTL time.Duration,
	logger *zap.Logger,
) *AttachmentService {
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{
		returnRepo:     returnRepo,
		attachmentRepo: attachmentRepo,
		storage:        storage,
		urlTTL:         urlTTL,
		logger:         logger,
	}
}

// RequestUpload registers an attachment and returns a presigned upload URL
func (s *AttachmentService) RequestUpload(ctx context.Context, returnID uuid.UUID, req RequestAttachmentRequest) (*AttachmentUploadResponse, error) {
	record, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	attachment, err := record.NewAttachment(req.FileName, req.ContentType, req.ActorID)
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, attachment.StorageKey, attachment.ContentType, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("generate upload url: %w", err)
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, err
	}

	s.logger.Info("evidence upload requested",
		zap.String("return_id", returnID.String()),
		zap.String("attachment_id", attachment.ID.String()),
		zap.String("content_type", attachment.ContentType),
	)

	return &AttachmentUploadResponse{
		AttachmentID: attachment.ID,
		StorageKey:   attachment.StorageKey,
		UploadURL:    url,
		ExpiresAt:    expiresAt,
	}, nil
}

// List returns the attachments of a return with fresh download URLs
func (s *AttachmentService) List(ctx context.Context, returnID uuid.UUID) ([]AttachmentResponse, error) {
	if _, err := s.returnRepo.FindByID(ctx, returnID); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.FindByReturnID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	responses := make([]AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, a.StorageKey, s.urlTTL)
		if err != nil {
			return nil, fmt.Errorf("generate download url for %s: %w", a.ID, err)
		}
		responses = append(responses, AttachmentResponse{
			ID:          a.ID,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			UploadedBy:  a.UploadedBy,
			CreatedAt:   a.CreatedAt,
			DownloadURL: url,
			ExpiresAt:   expiresAt,
		})
	}
	return responses, nil
}
