package returns

import (
	"context"
	"errors"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatch outcomes reported to metrics
const (
	DispatchOutcomeSuccess  = "success"
	DispatchOutcomeReplayed = "replayed"
	DispatchOutcomeFailed   = "failed"
	DispatchOutcomeTimeout  = "timeout"
)

// Collaborators groups the external services a resolution can touch
type Collaborators struct {
	Inventory   returns.InventoryService
	Refunds     returns.RefundService
	Suppliers   returns.SupplierReturnService
	Fulfillment returns.FulfillmentService
}

// DispatcherConfig bounds each collaborator call
type DispatcherConfig struct {
	// Timeout applies to a single collaborator call. Default: 10 seconds
	Timeout time.Duration
	// IdempotencyTTL is how long a successful dispatch is remembered. Default: 24 hours
	IdempotencyTTL time.Duration
}

// DispatchResult describes a completed dispatch
type DispatchResult struct {
	ExternalReference string
	// Replayed is true when an earlier attempt already performed the side effect
	Replayed bool
}

// ResolutionDispatcher performs the single side effect behind a processing resolution
type ResolutionDispatcher struct {
	collab      Collaborators
	idempotency shared.IdempotencyStore
	cfg         DispatcherConfig
	metrics     *telemetry.ReturnMetrics
	logger      *zap.Logger
}

// NewResolutionDispatcher creates a dispatcher. idempotency may be nil, in which
// case deduplication is left to the collaborators' own idempotency keys.
func NewResolutionDispatcher(
	collab Collaborators,
	idempotency shared.IdempotencyStore,
	cfg DispatcherConfig,
	logger *zap.Logger,
) *ResolutionDispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolutionDispatcher{
		collab:      collab,
		idempotency: idempotency,
		cfg:         cfg,
		logger:      logger,
	}
}

// SetMetrics sets the business metrics recorder
func (d *ResolutionDispatcher) SetMetrics(m *telemetry.ReturnMetrics) {
	d.metrics = m
}

// Dispatch runs the collaborator call for a record that is in PROCESSING.
// The call is detached from client cancellation so a half-finished side effect
// is not abandoned, but it is still bounded by the configured timeout.
func (d *ResolutionDispatcher) Dispatch(ctx context.Context, r *returns.ReturnRecord) (DispatchResult, error) {
	resolution := r.ResolutionType
	key := r.IdempotencyKey(resolution)
	log := d.logger.With(
		zap.String("return_id", r.ID.String()),
		zap.String("return_number", r.ReturnNumber),
		zap.String("resolution_type", string(resolution)),
		zap.String("idempotency_key", key),
	)

	if err := d.checkPreconditions(r); err != nil {
		return DispatchResult{}, err
	}

	if d.idempotency != nil {
		done, err := d.idempotency.IsProcessed(ctx, key)
		if err != nil {
			log.Warn("idempotency lookup failed, relying on collaborator key", zap.Error(err))
		} else if done {
			log.Info("resolution already dispatched, skipping side effect")
			d.metrics.RecordDispatch(ctx, string(resolution), DispatchOutcomeReplayed, 0)
			return DispatchResult{Replayed: true}, nil
		}
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.Timeout)
	defer cancel()

	start := time.Now()
	ref, err := d.call(callCtx, r, key)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			log.Error("resolution dispatch timed out", zap.Duration("timeout", d.cfg.Timeout), zap.Error(err))
			d.metrics.RecordDispatch(ctx, string(resolution), DispatchOutcomeTimeout, elapsed)
			return DispatchResult{}, returns.NewDispatchTimeoutError(resolution, err)
		}
		log.Error("resolution dispatch failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		d.metrics.RecordDispatch(ctx, string(resolution), DispatchOutcomeFailed, elapsed)
		return DispatchResult{}, returns.NewDispatchError(resolution, err)
	}

	if d.idempotency != nil {
		if _, markErr := d.idempotency.MarkProcessed(ctx, key, d.cfg.IdempotencyTTL); markErr != nil {
			log.Warn("failed to remember dispatched resolution", zap.Error(markErr))
		}
	}

	log.Info("resolution dispatched",
		zap.Duration("elapsed", elapsed),
		zap.String("external_reference", ref),
	)
	d.metrics.RecordDispatch(ctx, string(resolution), DispatchOutcomeSuccess, elapsed)
	return DispatchResult{ExternalReference: ref}, nil
}

// checkPreconditions repeats the payload guards that protect collaborators
// from a record that was mutated outside BeginProcessing.
func (d *ResolutionDispatcher) checkPreconditions(r *returns.ReturnRecord) error {
	if r.Status != returns.StatusProcessing {
		return returns.NewIllegalTransitionError("dispatch", r.Status)
	}
	switch r.ResolutionType {
	case returns.ResolutionRefundProcessed:
		if r.SourceType != returns.SourceTypeSale || r.SourceID == nil {
			return returns.NewValidationError("resolution_type", "Refunds are only available for sale returns")
		}
		if r.RefundAmount == nil || !r.RefundAmount.IsPositive() || r.RefundMethod == "" {
			return returns.NewValidationError("refund_amount", "Refund amount and method are required")
		}
	case returns.ResolutionReturnedSupplier:
		if r.SupplierID == nil || *r.SupplierID == uuid.Nil || r.SupplierReturnReason == "" {
			return returns.NewValidationError("supplier_id", "Supplier and reason are required")
		}
	case returns.ResolutionTransferredWarehouse:
		if r.TransferToLocationID == nil || *r.TransferToLocationID == r.LocationID {
			return returns.NewValidationError("transfer_to_location_id", "Destination must differ from the current location")
		}
	case returns.ResolutionRestockedBranch, returns.ResolutionScrapped, returns.ResolutionWarrantyReplacement:
	default:
		return returns.NewValidationError("resolution_type", "Resolution "+string(r.ResolutionType)+" cannot be processed")
	}
	return nil
}

func (d *ResolutionDispatcher) call(ctx context.Context, r *returns.ReturnRecord, key string) (string, error) {
	stock := returns.StockCommand{
		ReturnID:       r.ID,
		ReturnNumber:   r.ReturnNumber,
		ProductID:      r.ProductID,
		LocationID:     r.LocationID,
		Quantity:       r.Quantity,
		IdempotencyKey: key,
	}

	switch r.ResolutionType {
	case returns.ResolutionRestockedBranch:
		return "", d.collab.Inventory.Increment(ctx, stock)
	case returns.ResolutionScrapped:
		return "", d.collab.Inventory.WriteOff(ctx, stock)
	case returns.ResolutionTransferredWarehouse:
		return "", d.collab.Inventory.Transfer(ctx, returns.TransferCommand{
			ReturnID:       r.ID,
			ReturnNumber:   r.ReturnNumber,
			ProductID:      r.ProductID,
			FromLocationID: r.LocationID,
			ToLocationID:   *r.TransferToLocationID,
			Quantity:       r.Quantity,
			IdempotencyKey: key,
		})
	case returns.ResolutionRefundProcessed:
		return "", d.collab.Refunds.Refund(ctx, returns.RefundCommand{
			ReturnID:       r.ID,
			ReturnNumber:   r.ReturnNumber,
			SourceID:       *r.SourceID,
			Amount:         *r.RefundAmount,
			Method:         r.RefundMethod,
			IdempotencyKey: key,
		})
	case returns.ResolutionReturnedSupplier:
		return d.collab.Suppliers.Create(ctx, returns.SupplierReturnCommand{
			ReturnID:          r.ID,
			ReturnNumber:      r.ReturnNumber,
			SupplierID:        *r.SupplierID,
			ProductID:         r.ProductID,
			LocationID:        r.LocationID,
			Quantity:          r.Quantity,
			Reason:            r.SupplierReturnReason,
			ReasonDescription: r.SupplierReasonDescription,
			IdempotencyKey:    key,
		})
	case returns.ResolutionWarrantyReplacement:
		return d.collab.Fulfillment.IssueReplacement(ctx, returns.ReplacementCommand{
			ReturnID:       r.ID,
			ReturnNumber:   r.ReturnNumber,
			ProductID:      r.ProductID,
			LocationID:     r.LocationID,
			Quantity:       r.Quantity,
			CustomerID:     r.CustomerID,
			CustomerName:   r.CustomerName,
			CustomerPhone:  r.CustomerPhone,
			IdempotencyKey: key,
		})
	}
	return "", returns.NewValidationError("resolution_type", "Resolution "+string(r.ResolutionType)+" cannot be processed")
}
