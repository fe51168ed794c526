package returns

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/infrastructure/cache"
	"github.com/erp/returns/internal/infrastructure/logger"
	"github.com/erp/returns/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReturnService handles the return lifecycle operations
type ReturnService struct {
	repo           returns.ReturnRecordRepository
	statsReader    returns.StatsReader
	customers      returns.CustomerDirectory
	locker         shared.RecordLocker
	dispatcher     *ResolutionDispatcher
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ReturnMetrics
	logger         *zap.Logger
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	repo returns.ReturnRecordRepository,
	statsReader returns.StatsReader,
	customers returns.CustomerDirectory,
	locker shared.RecordLocker,
	dispatcher *ResolutionDispatcher,
	log *zap.Logger,
) *ReturnService {
	if locker == nil {
		locker = cache.NewInMemoryRecordLocker()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReturnService{
		repo:        repo,
		statsReader: statsReader,
		customers:   customers,
		locker:      locker,
		dispatcher:  dispatcher,
		logger:      log,
	}
}

// SetEventPublisher sets the event publisher for lifecycle events
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder for transitions and dispatches
func (s *ReturnService) SetMetrics(m *telemetry.ReturnMetrics) {
	s.metrics = m
	if s.dispatcher != nil {
		s.dispatcher.SetMetrics(m)
	}
}

// Create takes in a returned item and assigns it a return number
func (s *ReturnService) Create(ctx context.Context, req CreateReturnRequest) (*ReturnResponse, error) {
	returnNumber, err := s.repo.GenerateReturnNumber(ctx)
	if err != nil {
		return nil, err
	}

	record, err := returns.NewReturnRecord(returns.CreateInput{
		ReturnNumber:   returnNumber,
		SourceType:     returns.SourceType(req.SourceType),
		SourceID:       req.SourceID,
		ReturnCategory: returns.ReturnCategory(req.ReturnCategory),
		ReturnReason:   req.ReturnReason,
		LocationID:     req.LocationID,
		ProductID:      req.ProductID,
		ProductName:    req.ProductName,
		Quantity:       req.Quantity,
		ProductValue:   req.ProductValue,
		RefundAmount:   req.RefundAmount,
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		Notes:          req.Notes,
		CreatedBy:      req.ActorID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	logger.L(ctx).With(logger.ReturnField(record.ID)).Info("return created",
		zap.String("return_number", record.ReturnNumber),
		zap.String("source_type", string(record.SourceType)),
		zap.String("return_category", string(record.ReturnCategory)),
	)
	s.afterSave(ctx, record, returns.AuditActionCreate)

	response := ToReturnResponse(record)
	return &response, nil
}

// Inspect records an inspection pass
func (s *ReturnService) Inspect(ctx context.Context, id uuid.UUID, req InspectReturnRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, returns.AuditActionInspect, func(r *returns.ReturnRecord) error {
		return r.Inspect(returns.InspectInput{
			Condition:         returns.ProductCondition(req.ProductCondition),
			Notes:             req.InspectionNotes,
			RecommendedAction: returns.RecommendedAction(req.RecommendedAction),
			Complete:          req.InspectionComplete,
			InspectorID:       req.ActorID,
		})
	})
}

// Approve approves a return and records the intended resolution
func (s *ReturnService) Approve(ctx context.Context, id uuid.UUID, req ApproveReturnRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, returns.AuditActionApprove, func(r *returns.ReturnRecord) error {
		return r.Approve(returns.ResolutionType(req.ResolutionType), req.ApprovalNotes, req.ActorID)
	})
}

// Reject rejects a return
func (s *ReturnService) Reject(ctx context.Context, id uuid.UUID, req RejectReturnRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, returns.AuditActionReject, func(r *returns.ReturnRecord) error {
		return r.Reject(req.RejectionReason, req.RejectionNotes, req.ActorID)
	})
}

// Cancel withdraws a return
func (s *ReturnService) Cancel(ctx context.Context, id uuid.UUID, req CancelReturnRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, returns.AuditActionCancel, func(r *returns.ReturnRecord) error {
		return r.Cancel(req.CancellationReason, req.ActorID)
	})
}

// Process executes the resolution of an approved return.
// The collaborator call happens before the status write; if it fails nothing is
// persisted and the return stays APPROVED.
func (s *ReturnService) Process(ctx context.Context, id uuid.UUID, req ProcessReturnRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, returns.AuditActionComplete, func(r *returns.ReturnRecord) error {
		// Status comes before payload shape so a decided return reports the illegal edge.
		if !r.Status.CanTransitionTo(returns.StatusProcessing) {
			return returns.NewIllegalTransitionError("process", r.Status)
		}
		payload, err := req.payload()
		if err != nil {
			return err
		}
		if err := r.BeginProcessing(returns.ProcessInput{
			Resolution:  returns.ResolutionType(req.ResolutionType),
			Details:     req.ResolutionDetails,
			Payload:     payload,
			ProcessorID: req.ActorID,
		}); err != nil {
			return err
		}
		if s.dispatcher == nil {
			return returns.NewDispatchError(r.ResolutionType, fmt.Errorf("no resolution dispatcher configured"))
		}
		result, err := s.dispatcher.Dispatch(ctx, r)
		if err != nil {
			return err
		}
		return r.CompleteProcessing(result.ExternalReference)
	})
}

// mutate runs one transition under the per-record lock and persists it
func (s *ReturnService) mutate(
	ctx context.Context,
	id uuid.UUID,
	action returns.AuditAction,
	apply func(r *returns.ReturnRecord) error,
) (*ReturnResponse, error) {
	log := logger.L(ctx).With(logger.ReturnField(id), zap.String("action", string(action)))

	release, ok, err := s.locker.TryLock(ctx, id)
	if err != nil {
		log.Error("failed to acquire return lock", zap.Error(err))
		return nil, shared.WrapDomainError("LOCK_UNAVAILABLE", "Return lock service is unavailable", err)
	}
	if !ok {
		log.Info("return is locked by a concurrent request")
		return nil, returns.NewConflictingStateError("Return is being modified by another request")
	}
	defer release()

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := record.Status
	if err := apply(record); err != nil {
		log.Info("return transition refused",
			zap.String("from_status", string(from)),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, record); err != nil {
		log.Warn("failed to persist return transition", zap.Error(err))
		return nil, err
	}

	log.Info("return transitioned",
		zap.String("from_status", string(from)),
		zap.String("to_status", string(record.Status)),
		zap.Int("version", record.Version),
	)
	s.afterSave(ctx, record, action)

	response := ToReturnResponse(record)
	return &response, nil
}

// afterSave records metrics and publishes pending events. Publish failures are
// logged; the transition is already durable.
func (s *ReturnService) afterSave(ctx context.Context, r *returns.ReturnRecord, action returns.AuditAction) {
	s.metrics.RecordTransition(ctx, string(action), string(r.Status))
	if r.Status == returns.StatusCompleted && r.RefundAmount != nil {
		s.metrics.RecordRefund(ctx, *r.RefundAmount)
	}

	events := r.GetDomainEvents()
	r.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish return events",
			logger.ReturnField(r.ID),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}

// GetByID retrieves a return by ID
func (s *ReturnService) GetByID(ctx context.Context, id uuid.UUID) (*ReturnResponse, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToReturnResponse(record)
	return &response, nil
}

// GetByNumber retrieves a return by its return number
func (s *ReturnService) GetByNumber(ctx context.Context, returnNumber string) (*ReturnResponse, error) {
	returnNumber = strings.TrimSpace(returnNumber)
	if returnNumber == "" {
		return nil, returns.NewValidationError("return_number", "Return number is required")
	}
	record, err := s.repo.FindByReturnNumber(ctx, returnNumber)
	if err != nil {
		return nil, err
	}
	response := ToReturnResponse(record)
	return &response, nil
}

// GetHistory returns the audit trail and inspection history of a return
func (s *ReturnService) GetHistory(ctx context.Context, id uuid.UUID) (*ReturnHistoryResponse, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToReturnHistoryResponse(record)
	return &response, nil
}

// GetSuggestion returns the advisory resolution for a return
func (s *ReturnService) GetSuggestion(ctx context.Context, id uuid.UUID) (*SuggestionResponse, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SuggestionResponse{
		ReturnID:            record.ID,
		SuggestedResolution: string(record.SuggestedResolution()),
		RequiresCustomer:    record.RequiresCustomerInfo(),
	}, nil
}

// List retrieves a page of returns matching the filter
func (s *ReturnService) List(ctx context.Context, f ReturnListFilter) ([]ReturnListItemResponse, int64, error) {
	filter, err := f.toDomain()
	if err != nil {
		return nil, 0, err
	}

	records, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToReturnListItemResponses(records), total, nil
}

// Stats summarizes returns in a scope
func (s *ReturnService) Stats(ctx context.Context, q StatsQuery) (*returns.Stats, error) {
	rows, err := s.loadStatsRows(ctx, q)
	if err != nil {
		return nil, err
	}
	stats := returns.AggregateStats(rows)
	return &stats, nil
}

// Analytics breaks down returns in a scope
func (s *ReturnService) Analytics(ctx context.Context, q StatsQuery) (*returns.Analytics, error) {
	rows, err := s.loadStatsRows(ctx, q)
	if err != nil {
		return nil, err
	}
	analytics := returns.AggregateAnalytics(rows)
	return &analytics, nil
}

func (s *ReturnService) loadStatsRows(ctx context.Context, q StatsQuery) ([]returns.StatsRow, error) {
	scope, err := q.toScope()
	if err != nil {
		return nil, err
	}
	rows, err := s.statsReader.LoadStatsRows(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load return stats: %w", err)
	}
	return rows, nil
}

// SearchCustomers looks up customers by phone for the intake form
func (s *ReturnService) SearchCustomers(ctx context.Context, phone string) ([]returns.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, returns.NewValidationError("phone", "Phone is required")
	}
	if s.customers == nil {
		return []returns.Customer{}, nil
	}
	customers, err := s.customers.Search(ctx, phone)
	if err != nil {
		return nil, shared.WrapDomainError(returns.CodeDispatchFailed, "Customer directory lookup failed", err)
	}
	return customers, nil
}
