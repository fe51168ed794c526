package collaborator

import (
	"context"
	"net/url"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

type stockRequest struct {
	ReturnID     uuid.UUID `json:"return_id"`
	ReturnNumber string    `json:"return_number"`
	ProductID    uuid.UUID `json:"product_id"`
	LocationID   uuid.UUID `json:"location_id"`
	Quantity     int       `json:"quantity"`
	Reference    string    `json:"reference"`
}

func newStockRequest(cmd returns.StockCommand) stockRequest {
	return stockRequest{
		ReturnID:     cmd.ReturnID,
		ReturnNumber: cmd.ReturnNumber,
		ProductID:    cmd.ProductID,
		LocationID:   cmd.LocationID,
		Quantity:     cmd.Quantity,
		Reference:    "RETURN:" + cmd.ReturnNumber,
	}
}

// InventoryClient talks to the stock ledger
type InventoryClient struct{ c *Client }

func NewInventoryClient(c *Client) *InventoryClient { return &InventoryClient{c: c} }

func (i *InventoryClient) Increment(ctx context.Context, cmd returns.StockCommand) error {
	return i.c.Post(ctx, "/inventory/increments", cmd.IdempotencyKey, newStockRequest(cmd), nil)
}

func (i *InventoryClient) WriteOff(ctx context.Context, cmd returns.StockCommand) error {
	return i.c.Post(ctx, "/inventory/write-offs", cmd.IdempotencyKey, newStockRequest(cmd), nil)
}

func (i *InventoryClient) Transfer(ctx context.Context, cmd returns.TransferCommand) error {
	return i.c.Post(ctx, "/inventory/transfers", cmd.IdempotencyKey, struct {
		ReturnID       uuid.UUID `json:"return_id"`
		ReturnNumber   string    `json:"return_number"`
		ProductID      uuid.UUID `json:"product_id"`
		FromLocationID uuid.UUID `json:"from_location_id"`
		ToLocationID   uuid.UUID `json:"to_location_id"`
		Quantity       int       `json:"quantity"`
	}{cmd.ReturnID, cmd.ReturnNumber, cmd.ProductID, cmd.FromLocationID, cmd.ToLocationID, cmd.Quantity}, nil)
}

// RefundClient talks to the sales ledger
type RefundClient struct{ c *Client }

func NewRefundClient(c *Client) *RefundClient { return &RefundClient{c: c} }

func (r *RefundClient) Refund(ctx context.Context, cmd returns.RefundCommand) error {
	return r.c.Post(ctx, "/refunds", cmd.IdempotencyKey, struct {
		ReturnID     uuid.UUID            `json:"return_id"`
		ReturnNumber string               `json:"return_number"`
		SaleID       uuid.UUID            `json:"sale_id"`
		Amount       decimal.Decimal      `json:"amount"`
		Method       returns.RefundMethod `json:"method"`
	}{cmd.ReturnID, cmd.ReturnNumber, cmd.SourceID, cmd.Amount, cmd.Method}, nil)
}

type createdResponse struct {
	ID string `json:"id"`
}

// SupplierReturnClient talks to purchasing
type SupplierReturnClient struct{ c *Client }

func NewSupplierReturnClient(c *Client) *SupplierReturnClient { return &SupplierReturnClient{c: c} }

func (s *SupplierReturnClient) Create(ctx context.Context, cmd returns.SupplierReturnCommand) (string, error) {
	var out createdResponse
	err := s.c.Post(ctx, "/supplier-returns", cmd.IdempotencyKey, struct {
		ReturnID          uuid.UUID                    `json:"return_id"`
		ReturnNumber      string                       `json:"return_number"`
		SupplierID        uuid.UUID                    `json:"supplier_id"`
		ProductID         uuid.UUID                    `json:"product_id"`
		LocationID        uuid.UUID                    `json:"location_id"`
		Quantity          int                          `json:"quantity"`
		Reason            returns.SupplierReturnReason `json:"reason"`
		ReasonDescription string                       `json:"reason_description,omitempty"`
	}{cmd.ReturnID, cmd.ReturnNumber, cmd.SupplierID, cmd.ProductID, cmd.LocationID, cmd.Quantity, cmd.Reason, cmd.ReasonDescription}, &out)
	return out.ID, err
}

// FulfillmentClient ships warranty replacements
type FulfillmentClient struct{ c *Client }

func NewFulfillmentClient(c *Client) *FulfillmentClient { return &FulfillmentClient{c: c} }

func (f *FulfillmentClient) IssueReplacement(ctx context.Context, cmd returns.ReplacementCommand) (string, error) {
	var out createdResponse
	err := f.c.Post(ctx, "/replacements", cmd.IdempotencyKey, struct {
		ReturnID      uuid.UUID  `json:"return_id"`
		ReturnNumber  string     `json:"return_number"`
		ProductID     uuid.UUID  `json:"product_id"`
		LocationID    uuid.UUID  `json:"location_id"`
		Quantity      int        `json:"quantity"`
		CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
		CustomerName  string     `json:"customer_name,omitempty"`
		CustomerPhone string     `json:"customer_phone,omitempty"`
	}{cmd.ReturnID, cmd.ReturnNumber, cmd.ProductID, cmd.LocationID, cmd.Quantity, cmd.CustomerID, cmd.CustomerName, cmd.CustomerPhone}, &out)
	return out.ID, err
}

// CustomerDirectoryClient looks customers up by phone
type CustomerDirectoryClient struct{ c *Client }

func NewCustomerDirectoryClient(c *Client) *CustomerDirectoryClient {
	return &CustomerDirectoryClient{c: c}
}

// Search accepts either a bare array or a {"data": [...]} envelope
func (d *CustomerDirectoryClient) Search(ctx context.Context, phone string) ([]returns.Customer, error) {
	var raw jsoniter.RawMessage
	if err := d.c.Get(ctx, "/customers", url.Values{"phone": {phone}}, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []returns.Customer{}, nil
	}
	var customers []returns.Customer
	if err := json.Unmarshal(raw, &customers); err == nil {
		return customers, nil
	}
	var wrapped struct {
		Data []returns.Customer `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}

var (
	_ returns.InventoryService      = (*InventoryClient)(nil)
	_ returns.RefundService         = (*RefundClient)(nil)
	_ returns.SupplierReturnService = (*SupplierReturnClient)(nil)
	_ returns.FulfillmentService    = (*FulfillmentClient)(nil)
	_ returns.CustomerDirectory     = (*CustomerDirectoryClient)(nil)
)
