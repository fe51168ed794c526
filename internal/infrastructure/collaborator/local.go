package collaborator

import (
	"context"
	"strings"

	"github.com/erp/returns/internal/domain/returns"
	"go.uber.org/zap"
)

// LocalCollaborators accepts every call and only logs it. It stands in for
// collaborators whose base URL is not configured, for development setups.
type LocalCollaborators struct {
	logger *zap.Logger
}

func NewLocalCollaborators(logger *zap.Logger) *LocalCollaborators {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalCollaborators{logger: logger.With(zap.String("collaborator", "local"))}
}

func (l *LocalCollaborators) Increment(_ context.Context, cmd returns.StockCommand) error {
	l.logStock("inventory increment", cmd)
	return nil
}

func (l *LocalCollaborators) WriteOff(_ context.Context, cmd returns.StockCommand) error {
	l.logStock("inventory write-off", cmd)
	return nil
}

func (l *LocalCollaborators) Transfer(_ context.Context, cmd returns.TransferCommand) error {
	l.logger.Info("inventory transfer",
		zap.String("return_number", cmd.ReturnNumber),
		zap.String("from_location_id", cmd.FromLocationID.String()),
		zap.String("to_location_id", cmd.ToLocationID.String()),
		zap.Int("quantity", cmd.Quantity),
		zap.String("idempotency_key", cmd.IdempotencyKey),
	)
	return nil
}

func (l *LocalCollaborators) Refund(_ context.Context, cmd returns.RefundCommand) error {
	l.logger.Info("refund",
		zap.String("return_number", cmd.ReturnNumber),
		zap.String("sale_id", cmd.SourceID.String()),
		zap.String("amount", cmd.Amount.StringFixed(2)),
		zap.String("method", string(cmd.Method)),
		zap.String("idempotency_key", cmd.IdempotencyKey),
	)
	return nil
}

func (l *LocalCollaborators) Create(_ context.Context, cmd returns.SupplierReturnCommand) (string, error) {
	ref := localReference("SRET", cmd.ReturnNumber)
	l.logger.Info("supplier return",
		zap.String("return_number", cmd.ReturnNumber),
		zap.String("supplier_id", cmd.SupplierID.String()),
		zap.String("reason", string(cmd.Reason)),
		zap.String("external_reference", ref),
	)
	return ref, nil
}

func (l *LocalCollaborators) IssueReplacement(_ context.Context, cmd returns.ReplacementCommand) (string, error) {
	ref := localReference("REPL", cmd.ReturnNumber)
	l.logger.Info("warranty replacement",
		zap.String("return_number", cmd.ReturnNumber),
		zap.String("product_id", cmd.ProductID.String()),
		zap.Int("quantity", cmd.Quantity),
		zap.String("external_reference", ref),
	)
	return ref, nil
}

// Search knows no customers
func (l *LocalCollaborators) Search(_ context.Context, phone string) ([]returns.Customer, error) {
	l.logger.Debug("customer search", zap.String("phone", phone))
	return []returns.Customer{}, nil
}

func (l *LocalCollaborators) logStock(op string, cmd returns.StockCommand) {
	l.logger.Info(op,
		zap.String("return_number", cmd.ReturnNumber),
		zap.String("product_id", cmd.ProductID.String()),
		zap.String("location_id", cmd.LocationID.String()),
		zap.Int("quantity", cmd.Quantity),
		zap.String("idempotency_key", cmd.IdempotencyKey),
	)
}

// localReference is stable per return so replays log the same reference
func localReference(prefix, returnNumber string) string {
	return "LOCAL-" + prefix + "-" + strings.TrimPrefix(returnNumber, "RTN-")
}

var (
	_ returns.InventoryService      = (*LocalCollaborators)(nil)
	_ returns.RefundService         = (*LocalCollaborators)(nil)
	_ returns.SupplierReturnService = (*LocalCollaborators)(nil)
	_ returns.FulfillmentService    = (*LocalCollaborators)(nil)
	_ returns.CustomerDirectory     = (*LocalCollaborators)(nil)
)
