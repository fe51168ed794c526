package collaborator

import (
	"fmt"

	appreturns "github.com/erp/returns/internal/application/returns"
	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Set is every outbound port the return engine needs
type Set struct {
	appreturns.Collaborators
	Customers returns.CustomerDirectory
}

// NewFromConfig builds an HTTP client for each configured base URL and falls
// back to LocalCollaborators for the rest.
func NewFromConfig(cfg config.CollaboratorsConfig, logger *zap.Logger) (Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	local := NewLocalCollaborators(logger)
	set := Set{
		Collaborators: appreturns.Collaborators{
			Inventory:   local,
			Refunds:     local,
			Suppliers:   local,
			Fulfillment: local,
		},
		Customers: local,
	}

	client := func(service, baseURL string) (*Client, error) {
		c, err := NewClient(ClientConfig{
			Service:   service,
			BaseURL:   baseURL,
			Timeout:   cfg.Timeout,
			AuthToken: cfg.AuthToken,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("collaborator %s: %w", service, err)
		}
		return c, nil
	}

	if cfg.InventoryURL != "" {
		c, err := client("inventory", cfg.InventoryURL)
		if err != nil {
			return Set{}, err
		}
		set.Inventory = NewInventoryClient(c)
	}
	if cfg.RefundURL != "" {
		c, err := client("refund", cfg.RefundURL)
		if err != nil {
			return Set{}, err
		}
		set.Refunds = NewRefundClient(c)
	}
	if cfg.SupplierURL != "" {
		c, err := client("supplier", cfg.SupplierURL)
		if err != nil {
			return Set{}, err
		}
		set.Suppliers = NewSupplierReturnClient(c)
	}
	if cfg.FulfillmentURL != "" {
		c, err := client("fulfillment", cfg.FulfillmentURL)
		if err != nil {
			return Set{}, err
		}
		set.Fulfillment = NewFulfillmentClient(c)
	}
	if cfg.CustomersURL != "" {
		c, err := client("customers", cfg.CustomersURL)
		if err != nil {
			return Set{}, err
		}
		set.Customers = NewCustomerDirectoryClient(c)
	}

	logger.Info("collaborators configured",
		zap.Bool("inventory_remote", cfg.InventoryURL != ""),
		zap.Bool("refund_remote", cfg.RefundURL != ""),
		zap.Bool("supplier_remote", cfg.SupplierURL != ""),
		zap.Bool("fulfillment_remote", cfg.FulfillmentURL != ""),
		zap.Bool("customers_remote", cfg.CustomersURL != ""),
	)
	return set, nil
}
