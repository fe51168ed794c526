package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockCommand moves or removes stock for a single product at a location
type StockCommand struct {
	ReturnID       uuid.UUID
	ReturnNumber   string
	ProductID      uuid.UUID
	LocationID     uuid.UUID
	Quantity       int
	IdempotencyKey string
}

// TransferCommand moves returned stock between locations
type TransferCommand struct {
	ReturnID       uuid.UUID
	ReturnNumber   string
	ProductID      uuid.UUID
	FromLocationID uuid.UUID
	ToLocationID   uuid.UUID
	Quantity       int
	IdempotencyKey string
}

// RefundCommand asks the sales ledger to pay money back against a sale
type RefundCommand struct {
	ReturnID       uuid.UUID
	ReturnNumber   string
	SourceID       uuid.UUID
	Amount         decimal.Decimal
	Method         RefundMethod
	IdempotencyKey string
}

// SupplierReturnCommand opens a return-to-vendor with the purchasing side
type SupplierReturnCommand struct {
	ReturnID          uuid.UUID
	ReturnNumber      string
	SupplierID        uuid.UUID
	ProductID         uuid.UUID
	LocationID        uuid.UUID
	Quantity          int
	Reason            SupplierReturnReason
	ReasonDescription string
	IdempotencyKey    string
}

// ReplacementCommand ships a replacement unit for a warranty return
type ReplacementCommand struct {
	ReturnID       uuid.UUID
	ReturnNumber   string
	ProductID      uuid.UUID
	LocationID     uuid.UUID
	Quantity       int
	CustomerID     *uuid.UUID
	CustomerName   string
	CustomerPhone  string
	IdempotencyKey string
}

// InventoryService is the stock ledger collaborator
type InventoryService interface {
	Increment(ctx context.Context, cmd StockCommand) error
	WriteOff(ctx context.Context, cmd StockCommand) error
	Transfer(ctx context.Context, cmd TransferCommand) error
}

// RefundService is the sales ledger collaborator
type RefundService interface {
	Refund(ctx context.Context, cmd RefundCommand) error
}

// SupplierReturnService is the purchasing collaborator. It returns the id of the
// supplier return it created.
type SupplierReturnService interface {
	Create(ctx context.Context, cmd SupplierReturnCommand) (string, error)
}

// FulfillmentService issues warranty replacements and returns the shipment id
type FulfillmentService interface {
	IssueReplacement(ctx context.Context, cmd ReplacementCommand) (string, error)
}

// Customer is a directory entry used to prefill intake
type Customer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Email string    `json:"email,omitempty"`
}

// CustomerDirectory looks up customers by phone number
type CustomerDirectory interface {
	Search(ctx context.Context, phone string) ([]Customer, error)
}
