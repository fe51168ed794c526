package returns

import (
	"context"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
)

// SlipRenderer turns a return record into a printable PDF
type SlipRenderer interface {
	RenderReturnSlip(ctx context.Context, r *returns.ReturnRecord) ([]byte, error)
}

// ErrSlipUnavailable is returned when no renderer is configured
var ErrSlipUnavailable = shared.NewDomainError("SERVICE_UNAVAILABLE", "Return slip printing is not enabled")

// SlipService renders return slips
type SlipService struct {
	repo     returns.ReturnRecordRepository
	renderer SlipRenderer
}

// NewSlipService creates a new SlipService. renderer may be nil when printing is disabled.
func NewSlipService(repo returns.ReturnRecordRepository, renderer SlipRenderer) *SlipService {
	return &SlipService{repo: repo, renderer: renderer}
}

// Render returns the slip PDF and the return number for the file name
func (s *SlipService) Render(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", ErrSlipUnavailable
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.renderer.RenderReturnSlip(ctx, record)
	if err != nil {
		return nil, "", err
	}
	return pdf, record.ReturnNumber, nil
}
